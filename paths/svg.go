package paths

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"golang.org/x/net/html/charset"
)

// A SourcePath is one subpath of an input document, as absolute
// commands in document coordinates.
type SourcePath struct {
	ID       string
	Commands []Command
}

// A Document is the drawable content of an SVG file.
type Document struct {
	Bounds Bounds
	Paths  []SourcePath
	// Skipped lists the names of elements that were ignored.
	Skipped []string
}

// lengthUnits are the user units in one of each absolute length unit,
// at 96 user units to the inch.
var lengthUnits = []struct {
	suffix string
	scale  float64
}{
	{"px", 1},
	{"in", 96},
	{"cm", 96 / 2.54},
	{"mm", 96 / 25.4},
	{"pt", 96.0 / 72},
	{"pc", 16},
}

// parseLength reads a length in user units. Absolute units are
// converted; relative ones such as % and em are an error.
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	for _, u := range lengthUnits {
		if strings.HasSuffix(s, u.suffix) {
			s, scale = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.scale
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	return f * scale, err
}

func splitNumbers(s string) ([]float64, error) {
	fs := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\r' || r == '\t'
	})
	var r []float64
	for _, f := range fs {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, x)
	}
	return r, nil
}

func parseBounds(e *svgparser.Element) (Bounds, error) {
	if vb, ok := e.Attributes["viewBox"]; ok {
		f, err := splitNumbers(vb)
		if err != nil {
			return Bounds{}, fmt.Errorf("bad viewBox %q: %w", vb, err)
		}
		if len(f) != 4 {
			return Bounds{}, fmt.Errorf("bad viewBox %q: need 4 numbers", vb)
		}
		return Bounds{Min: Point{f[0], f[1]}, Max: Point{f[0] + f[2], f[1] + f[3]}}, nil
	}
	ws, hs := e.Attributes["width"], e.Attributes["height"]
	if ws == "" || hs == "" {
		return Bounds{}, nil
	}
	// A size we can't resolve, such as width="100%", leaves the bounds
	// unknown.
	width, err := parseLength(ws)
	if err != nil {
		return Bounds{}, nil
	}
	height, err := parseLength(hs)
	if err != nil {
		return Bounds{}, nil
	}
	return Bounds{Max: Point{width, height}}, nil
}

// attrs reads the named numeric attributes of e. Missing attributes
// are zero.
func attrs(e *svgparser.Element, names ...string) ([]float64, error) {
	r := make([]float64, len(names))
	for i, n := range names {
		s, ok := e.Attributes[n]
		if !ok {
			continue
		}
		f, err := parseLength(s)
		if err != nil {
			return nil, fmt.Errorf("<%s> attribute %s: %w", e.Name, n, err)
		}
		r[i] = f
	}
	return r, nil
}

func moveTo(p Point) Command { return Command{Op: 'M', Args: []float64{p.X, p.Y}} }
func lineTo(p Point) Command { return Command{Op: 'L', Args: []float64{p.X, p.Y}} }

// elementCommands returns the absolute path commands drawn by a
// single shape element.
func elementCommands(e *svgparser.Element) ([]Command, error) {
	switch e.Name {
	case "path":
		cmds, err := ParsePathData(e.Attributes["d"])
		if err != nil {
			return nil, err
		}
		return Absolute(cmds), nil
	case "line":
		f, err := attrs(e, "x1", "y1", "x2", "y2")
		if err != nil {
			return nil, err
		}
		return []Command{moveTo(Point{f[0], f[1]}), lineTo(Point{f[2], f[3]})}, nil
	case "polyline", "polygon":
		f, err := splitNumbers(e.Attributes["points"])
		if err != nil {
			return nil, fmt.Errorf("<%s> points: %w", e.Name, err)
		}
		if len(f)%2 != 0 {
			return nil, fmt.Errorf("<%s> points: odd number of coordinates", e.Name)
		}
		var cmds []Command
		for i := 0; i < len(f); i += 2 {
			p := Point{f[i], f[i+1]}
			if i == 0 {
				cmds = append(cmds, moveTo(p))
			} else {
				cmds = append(cmds, lineTo(p))
			}
		}
		if e.Name == "polygon" && len(cmds) > 0 {
			cmds = append(cmds, Command{Op: 'Z'})
		}
		return cmds, nil
	case "rect":
		f, err := attrs(e, "x", "y", "width", "height")
		if err != nil {
			return nil, err
		}
		x, y, w, h := f[0], f[1], f[2], f[3]
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		return []Command{
			moveTo(Point{x, y}),
			lineTo(Point{x + w, y}),
			lineTo(Point{x + w, y + h}),
			lineTo(Point{x, y + h}),
			{Op: 'Z'},
		}, nil
	}
	return nil, nil
}

func (d *Document) parseChildren(xf *Xform, e *svgparser.Element) error {
	for _, c := range e.Children {
		cxf := xf
		if t, ok := c.Attributes["transform"]; ok {
			t2, err := ParseTransform(t)
			if err != nil {
				return err
			}
			cxf = xf.Compose(t2)
		}
		switch c.Name {
		case "g", "svg":
			if err := d.parseChildren(cxf, c); err != nil {
				return err
			}
		case "path", "line", "polyline", "polygon", "rect":
			cmds, err := elementCommands(c)
			if err != nil {
				return err
			}
			for _, sub := range SplitSubpaths(TransformCommands(cmds, cxf)) {
				d.Paths = append(d.Paths, SourcePath{
					ID:       fmt.Sprintf("path_%d", len(d.Paths)),
					Commands: sub,
				})
			}
		case "defs":
			continue
		default:
			d.Skipped = append(d.Skipped, c.Name)
		}
	}
	return nil
}

// FromSVG parses an SVG file, extracting its paths and basic shapes.
// Compound paths are split at every move, and each subpath gets its
// own id, path_0, path_1, and so on, in document order.
// This provides only limited SVG parsing support: styles, clipping and
// use references are ignored.
func FromSVG(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	elt, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, err
	}
	if err := elt.Decode(decoder); err != nil && err != io.EOF {
		return nil, err
	}
	bs, err := parseBounds(elt)
	if err != nil {
		return nil, err
	}
	d := &Document{Bounds: bs}
	return d, d.parseChildren(Identity, elt)
}

// Segments flattens every path of the document with f. Problems with
// individual segments are joined into the returned error; the segments
// are returned regardless.
func (d *Document) Segments(f *Flattener) ([]Segment, error) {
	var segs []Segment
	var errs []error
	for _, p := range d.Paths {
		s, err := f.Segments(p.ID, p.Commands)
		if err != nil {
			errs = append(errs, err)
		}
		segs = append(segs, s...)
	}
	return segs, errors.Join(errs...)
}

// SVGOptions control WriteSVG.
type SVGOptions struct {
	// Highlight colors adjustable segments by multiplier.
	Highlight bool
	// StrokeWidth defaults to 1.
	StrokeWidth float64
}

// Stroke colors used by WriteSVG.
const (
	ColorNormal = "#000000"
	ColorOneX   = "#FF6B00"
	ColorTwoX   = "#9C27B0"
	ColorCurve  = "#888888"
)

func strokeColor(s *Segment, highlight bool) string {
	switch {
	case s.IsCurve():
		return ColorCurve
	case highlight && s.Adjustable && s.Multiplier == 2:
		return ColorTwoX
	case highlight && s.Adjustable:
		return ColorOneX
	}
	return ColorNormal
}

var svgh = `<svg width="%g" height="%g" viewBox="%g %g %g %g" version="1.1" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`

// WriteSVG writes an SVG file with one path per segment. Curve
// references are written with their original control data.
// Zero-length segments are omitted.
func WriteSVG(w io.Writer, b Bounds, segs []Segment, opts *SVGOptions) error {
	if opts == nil {
		opts = &SVGOptions{}
	}
	sw := opts.StrokeWidth
	if sw <= 0 {
		sw = 1
	}
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}
	wr(svgh, b.Width(), b.Height(), b.Min.X, b.Min.Y, b.Width(), b.Height())
	wr("\n")
	wr("<g fill=\"none\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\">\n", sw)
	for i := range segs {
		s := &segs[i]
		if s.Degenerate() {
			continue
		}
		wr(`<path id="%s" stroke="%s" d="M %.4f %.4f`, s.ID, strokeColor(s, opts.Highlight), s.Start.X, s.Start.Y)
		switch {
		case s.Curve == nil:
			wr(" L %.4f %.4f", s.End.X, s.End.Y)
		case s.Curve.Op == 'A' && s.Curve.Arc != nil:
			a := s.Curve.Arc
			wr(" A %.4f %.4f %g %d %d %.4f %.4f", a.RX, a.RY, a.Rotation, b2i(a.Large), b2i(a.Sweep), s.End.X, s.End.Y)
		default:
			wr(" %c", s.Curve.Op)
			for _, c := range s.Curve.Ctrl {
				wr(" %.4f %.4f", c.X, c.Y)
			}
			wr(" %.4f %.4f", s.End.X, s.End.Y)
		}
		wr("\"/>\n")
	}
	wr("</g>\n")
	wr("</svg>\n")
	if werr == nil {
		werr = bi.Flush()
	}
	return werr
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SVG writes an SVG file that contains black strokes along the paths.
func (ps *Paths) SVG(w io.Writer) error {
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}
	b := ps.Bounds
	wr(svgh, b.Width(), b.Height(), b.Min.X, b.Min.Y, b.Width(), b.Height())
	wr("\n")
	wr("<g fill=\"none\" stroke=\"black\" stroke-width=\"0.1\">\n")
	for _, p := range ps.P {
		if len(p.V) == 0 {
			continue
		}
		wr(`<path d="`)
		for i, v := range p.V {
			if i == 0 {
				wr("M %.4f, %.4f", v.X, v.Y)
			} else {
				wr(" %.4f, %.4f", v.X, v.Y)
			}
		}
		wr("\"/>\n")
	}
	wr("</g>")
	wr("</svg>")
	if werr == nil {
		werr = bi.Flush()
	}
	return werr
}
