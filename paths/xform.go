package paths

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/scanner"
)

// An Xform is a 2d affine transform in homogeneous coordinates.
type Xform struct {
	M [3][3]float64
}

// Identity is the transform that leaves points unchanged.
var Identity = &Xform{
	M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
}

func xformTranslate(x, y float64) *Xform {
	return &Xform{
		M: [3][3]float64{
			{1, 0, x},
			{0, 1, y},
			{0, 0, 1},
		},
	}
}

func xformScale(x, y float64) *Xform {
	return &Xform{
		M: [3][3]float64{
			{x, 0, 0},
			{0, y, 0},
			{0, 0, 1},
		},
	}
}

func xformRotate(deg float64) *Xform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return &Xform{
		M: [3][3]float64{
			{c, -s, 0},
			{s, c, 0},
			{0, 0, 1},
		},
	}
}

// Compose returns the transform that applies xf2 and then xf.
func (xf *Xform) Compose(xf2 *Xform) *Xform {
	var a Xform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				a.M[i][k] += xf.M[i][j] * xf2.M[j][k]
			}
		}
	}
	return &a
}

// Apply transforms v.
func (xf *Xform) Apply(v Point) Point {
	x := [3]float64{v.X, v.Y, 1.0}
	var r [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i] += xf.M[i][j] * x[j]
		}
	}
	return Point{r[0] / r[2], r[1] / r[2]}
}

func (xf *Xform) det() float64 {
	return xf.M[0][0]*xf.M[1][1] - xf.M[0][1]*xf.M[1][0]
}

func (xf *Xform) rotation() float64 {
	return math.Atan2(xf.M[1][0], xf.M[0][0])
}

type xformScannerState int

const (
	xfsName xformScannerState = 1 + iota
	xfsBra
	xfsMaybeComma
	xfsArg
)

func parseFloats(a []string) ([]float64, error) {
	var r []float64
	for _, x := range a {
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, f)
	}
	return r, nil
}

func parseSingleXform(name string, args []string) (*Xform, error) {
	fa, err := parseFloats(args)
	if err != nil {
		return nil, err
	}
	switch name {
	case "translate":
		if len(fa) != 1 && len(fa) != 2 {
			return nil, fmt.Errorf("translate should have one or two parameters: got %s", args)
		}
		if len(fa) == 1 {
			fa = append(fa, 0)
		}
		return xformTranslate(fa[0], fa[1]), nil
	case "scale":
		if len(fa) != 1 && len(fa) != 2 {
			return nil, fmt.Errorf("scale should have one or two parameters: got %s", args)
		}
		if len(fa) == 1 {
			fa = append(fa, fa[0])
		}
		return xformScale(fa[0], fa[1]), nil
	case "rotate":
		switch len(fa) {
		case 1:
			return xformRotate(fa[0]), nil
		case 3:
			// rotate about (cx, cy)
			return xformTranslate(fa[1], fa[2]).Compose(xformRotate(fa[0])).Compose(xformTranslate(-fa[1], -fa[2])), nil
		}
		return nil, fmt.Errorf("rotate should have one or three parameters: got %s", args)
	case "matrix":
		if len(fa) != 6 {
			return nil, fmt.Errorf("matrix should have six parameters: got %s", args)
		}
		return &Xform{
			M: [3][3]float64{
				{fa[0], fa[2], fa[4]},
				{fa[1], fa[3], fa[5]},
				{0, 0, 1},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown transform function %q", name)
	}
}

// ParseTransform parses the value of an SVG transform attribute.
func ParseTransform(x string) (*Xform, error) {
	var s scanner.Scanner
	xf := Identity
	s.Init(strings.NewReader(x))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanInts
	state := xfsName
	fname := ""
	var args []string
	neg := false
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		switch state {
		case xfsName:
			if tok != scanner.Ident {
				return nil, fmt.Errorf("failed to parse transform: expected transform name, but got %q", s.TokenText())
			}
			fname = s.TokenText()
			state = xfsBra
		case xfsBra:
			if tok != '(' {
				return nil, fmt.Errorf("failed to parse transform: expected (, but got %q", s.TokenText())
			}
			state = xfsArg
		case xfsMaybeComma:
			if tok == ',' {
				state = xfsArg
				continue
			}
			fallthrough
		case xfsArg:
			if tok == ')' && !neg {
				newxform, err := parseSingleXform(fname, args)
				if err != nil {
					return nil, err
				}
				xf = xf.Compose(newxform)
				state = xfsName
				args = nil
			} else if tok == '-' && !neg {
				neg = true
			} else if tok == scanner.Float || tok == scanner.Int {
				t := s.TokenText()
				if neg {
					t = "-" + t
					neg = false
				}
				args = append(args, t)
				state = xfsMaybeComma
			} else {
				return nil, fmt.Errorf("unexpected token %q parsing transform %q", s.TokenText(), x)
			}
		}
	}
	if state != xfsName {
		return nil, fmt.Errorf("failed to parse transform: %q", x)
	}
	return xf, nil
}
