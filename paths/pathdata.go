package paths

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

// A Command is a single path-data command. Op is the upper-case
// command letter; Rel is set for the lower-case (relative) form.
type Command struct {
	Op   byte
	Rel  bool
	Args []float64
}

func (c Command) String() string {
	op := c.Op
	if c.Rel {
		op += 'a' - 'A'
	}
	return fmt.Sprintf("%c%v", op, c.Args)
}

// argCount is the number of operands taken by each command.
var argCount = map[byte]int{
	'M': 2,
	'L': 2,
	'H': 1,
	'V': 1,
	'C': 6,
	'S': 4,
	'Q': 4,
	'T': 2,
	'A': 7,
	'Z': 0,
}

func isPathSpace(c byte) bool {
	return c == ' ' || c == ',' || c == '\n' || c == '\r' || c == '\t'
}

func skipSpace(d []byte, i int) int {
	for i < len(d) && isPathSpace(d[i]) {
		i++
	}
	return i
}

func startsNumber(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

// ParsePathData parses the value of an SVG path "d" attribute. Operands
// following a command without a new letter repeat the command, except
// that extra pairs after a move are lines.
func ParsePathData(s string) ([]Command, error) {
	d := []byte(s)
	i := skipSpace(d, 0)
	if i == len(d) {
		return nil, nil
	}
	if startsNumber(d[i]) {
		return nil, fmt.Errorf("bad path: path should start with a command, at position %d", i+1)
	}

	var cmds []Command
	var prev byte
	var prevRel bool
	for {
		i = skipSpace(d, i)
		if i >= len(d) {
			break
		}
		op, rel := prev, prevRel
		if prev == 0 || prev == 'Z' || !startsNumber(d[i]) {
			c := d[i]
			rel = 'a' <= c && c <= 'z'
			if rel {
				c -= 'a' - 'A'
			}
			if _, ok := argCount[c]; !ok {
				return nil, fmt.Errorf("bad path: unknown command %q at position %d", d[i], i+1)
			}
			op = c
			i = skipSpace(d, i+1)
		}

		n := argCount[op]
		args := make([]float64, n)
		for j := 0; j < n; j++ {
			if op == 'A' && (j == 3 || j == 4) {
				if i < len(d) && (d[i] == '0' || d[i] == '1') {
					args[j] = float64(d[i] - '0')
					i = skipSpace(d, i+1)
					continue
				}
				return nil, fmt.Errorf("bad path: arc flags should be 0 or 1 in command %q at position %d", op, i+1)
			}
			if i >= len(d) {
				return nil, fmt.Errorf("bad path: command %q needs %d numbers, got %d", op, n, j)
			}
			f, w := strconv.ParseFloat(d[i:])
			if w == 0 {
				return nil, fmt.Errorf("bad path: expected number for command %q at position %d", op, i+1)
			}
			args[j] = f
			i = skipSpace(d, i+w)
		}
		cmds = append(cmds, Command{Op: op, Rel: rel, Args: args})

		prev, prevRel = op, rel
		if op == 'M' {
			prev = 'L'
		}
	}
	return cmds, nil
}

// pathState tracks the current point and curve control points while
// walking a command sequence.
type pathState struct {
	cur, start Point
	started    bool
	lastOp     byte
	lastCtrl   Point // second control point of the previous C/S or control point of Q/T
}

// pt returns the absolute point for the operand pair at args[i:].
func (st *pathState) pt(c Command, i int) Point {
	p := Point{c.Args[i], c.Args[i+1]}
	if c.Rel {
		p = p.Translate(Vec2(st.cur))
	}
	return p
}

// reflect returns the implicit first control point of a smooth curve.
func (st *pathState) reflect(cubic bool) Point {
	if cubic && (st.lastOp == 'C' || st.lastOp == 'S') ||
		!cubic && (st.lastOp == 'Q' || st.lastOp == 'T') {
		return st.cur.Translate(st.cur.Sub(st.lastCtrl))
	}
	return st.cur
}

// Absolute rewrites cmds with absolute coordinates. H and V become
// L. Commands before the first move are dropped, since they have no
// current point to act on; a leading relative move is absolute.
func Absolute(cmds []Command) []Command {
	var st pathState
	var out []Command
	for _, c := range cmds {
		if !st.started && c.Op != 'M' {
			continue
		}
		var a Command
		switch c.Op {
		case 'M':
			p := Point{c.Args[0], c.Args[1]}
			if c.Rel && st.started {
				p = p.Translate(Vec2(st.cur))
			}
			st.cur, st.start, st.started = p, p, true
			a = Command{Op: 'M', Args: []float64{p.X, p.Y}}
		case 'L':
			p := st.pt(c, 0)
			st.cur = p
			a = Command{Op: 'L', Args: []float64{p.X, p.Y}}
		case 'H':
			x := c.Args[0]
			if c.Rel {
				x += st.cur.X
			}
			st.cur.X = x
			a = Command{Op: 'L', Args: []float64{st.cur.X, st.cur.Y}}
		case 'V':
			y := c.Args[0]
			if c.Rel {
				y += st.cur.Y
			}
			st.cur.Y = y
			a = Command{Op: 'L', Args: []float64{st.cur.X, st.cur.Y}}
		case 'C':
			c1, c2, p := st.pt(c, 0), st.pt(c, 2), st.pt(c, 4)
			st.cur, st.lastCtrl = p, c2
			a = Command{Op: 'C', Args: []float64{c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y}}
		case 'S':
			c2, p := st.pt(c, 0), st.pt(c, 2)
			st.cur, st.lastCtrl = p, c2
			a = Command{Op: 'S', Args: []float64{c2.X, c2.Y, p.X, p.Y}}
		case 'Q':
			c1, p := st.pt(c, 0), st.pt(c, 2)
			st.cur, st.lastCtrl = p, c1
			a = Command{Op: 'Q', Args: []float64{c1.X, c1.Y, p.X, p.Y}}
		case 'T':
			c1 := st.reflect(false)
			p := st.pt(c, 0)
			st.cur, st.lastCtrl = p, c1
			a = Command{Op: 'T', Args: []float64{p.X, p.Y}}
		case 'A':
			p := st.pt(c, 5)
			st.cur = p
			args := append([]float64{}, c.Args[:5]...)
			a = Command{Op: 'A', Args: append(args, p.X, p.Y)}
		case 'Z':
			st.cur = st.start
			a = Command{Op: 'Z'}
		}
		st.lastOp = c.Op
		out = append(out, a)
	}
	return out
}

// SplitSubpaths splits absolute commands into one command list per
// move.
func SplitSubpaths(cmds []Command) [][]Command {
	var res [][]Command
	var cur []Command
	for _, c := range cmds {
		if c.Op == 'M' && len(cur) > 0 {
			res = append(res, cur)
			cur = nil
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		res = append(res, cur)
	}
	return res
}

// TransformCommands applies xf to absolute commands. Arc radii are
// scaled by the mean scale factor of xf, which is exact only for
// similarity transforms.
func TransformCommands(cmds []Command, xf *Xform) []Command {
	out := make([]Command, len(cmds))
	for i, c := range cmds {
		args := append([]float64{}, c.Args...)
		if c.Op == 'A' {
			s := math.Sqrt(math.Abs(xf.det()))
			args[0] *= s
			args[1] *= s
			args[2] += xf.rotation() * 180 / math.Pi
			if xf.det() < 0 {
				args[4] = 1 - args[4]
			}
			p := xf.Apply(Point{args[5], args[6]})
			args[5], args[6] = p.X, p.Y
		} else {
			for j := 0; j+1 < len(args); j += 2 {
				p := xf.Apply(Point{args[j], args[j+1]})
				args[j], args[j+1] = p.X, p.Y
			}
		}
		out[i] = Command{Op: c.Op, Rel: c.Rel, Args: args}
	}
	return out
}
