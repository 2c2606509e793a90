package paths

import (
	"errors"
	"math"
)

// A Flattener turns path commands into straight segments.
type Flattener struct {
	// Tolerance is the largest distance a control point may lie from
	// its chord for a curve to count as straight. Zero means 0.5.
	Tolerance float64
	// Epsilon is the coincidence tolerance used when closing a path.
	// Zero means Epsilon.
	Epsilon float64
	// Subdivisions is the number of pieces each curve is split into
	// by Polyline. Zero means 10.
	Subdivisions int
}

func (f *Flattener) tolerance() float64 {
	if f == nil || f.Tolerance <= 0 {
		return 0.5
	}
	return f.Tolerance
}

func (f *Flattener) epsilon() float64 {
	if f == nil || f.Epsilon <= 0 {
		return Epsilon
	}
	return f.Epsilon
}

func (f *Flattener) subdivisions() int {
	if f == nil || f.Subdivisions <= 0 {
		return 10
	}
	return f.Subdivisions
}

// Segments flattens the commands of one source path. Straight lines
// and curves within tolerance of their chord become plain segments;
// other curves become curve references. Arcs are always curves unless
// a radius is zero. Closing a subpath whose current point is away from
// its start emits a closing segment.
//
// Segment ids are pathID_seg_i, counting every emitted element of the
// path. Zero-length segments are kept, and reported in the returned
// error as *SegmentError values wrapping ErrZeroLengthSegment.
func (f *Flattener) Segments(pathID string, cmds []Command) ([]Segment, error) {
	tol := f.tolerance()
	eps := f.epsilon()
	var segs []Segment
	var errs []error
	emit := func(start, end Point, curve *CurveRef) {
		s := NewSegment(segmentID(pathID, len(segs)), start, end)
		s.PathID = pathID
		s.Curve = curve
		if s.Degenerate() {
			errs = append(errs, &SegmentError{ID: s.ID, Err: ErrZeroLengthSegment})
		}
		segs = append(segs, s)
	}

	var st pathState
	for _, c := range cmds {
		if !st.started && c.Op != 'M' {
			continue
		}
		switch c.Op {
		case 'M':
			p := Point{c.Args[0], c.Args[1]}
			if c.Rel && st.started {
				p = p.Translate(Vec2(st.cur))
			}
			st.cur, st.start, st.started = p, p, true
		case 'L':
			p := st.pt(c, 0)
			emit(st.cur, p, nil)
			st.cur = p
		case 'H':
			p := Point{c.Args[0], st.cur.Y}
			if c.Rel {
				p.X += st.cur.X
			}
			emit(st.cur, p, nil)
			st.cur = p
		case 'V':
			p := Point{st.cur.X, c.Args[0]}
			if c.Rel {
				p.Y += st.cur.Y
			}
			emit(st.cur, p, nil)
			st.cur = p
		case 'C', 'S':
			var c1, c2, p Point
			if c.Op == 'C' {
				c1, c2, p = st.pt(c, 0), st.pt(c, 2), st.pt(c, 4)
			} else {
				c1, c2, p = st.reflect(true), st.pt(c, 0), st.pt(c, 2)
			}
			var ref *CurveRef
			if !IsStraight(st.cur, []Point{c1, c2}, p, tol) {
				ref = &CurveRef{Op: 'C', Ctrl: []Point{c1, c2}}
			}
			emit(st.cur, p, ref)
			st.cur, st.lastCtrl = p, c2
		case 'Q', 'T':
			var c1, p Point
			if c.Op == 'Q' {
				c1, p = st.pt(c, 0), st.pt(c, 2)
			} else {
				c1, p = st.reflect(false), st.pt(c, 0)
			}
			var ref *CurveRef
			if !IsStraight(st.cur, []Point{c1}, p, tol) {
				ref = &CurveRef{Op: 'Q', Ctrl: []Point{c1}}
			}
			emit(st.cur, p, ref)
			st.cur, st.lastCtrl = p, c1
		case 'A':
			p := st.pt(c, 5)
			var ref *CurveRef
			if c.Args[0] != 0 && c.Args[1] != 0 {
				ref = &CurveRef{Op: 'A', Arc: &Arc{
					RX:       math.Abs(c.Args[0]),
					RY:       math.Abs(c.Args[1]),
					Rotation: c.Args[2],
					Large:    c.Args[3] != 0,
					Sweep:    c.Args[4] != 0,
				}}
			}
			emit(st.cur, p, ref)
			st.cur = p
		case 'Z':
			if !st.cur.Eq(st.start, eps) {
				emit(st.cur, st.start, nil)
			}
			st.cur = st.start
		}
		st.lastOp = c.Op
	}
	return segs, errors.Join(errs...)
}

// Polyline flattens the commands into polylines for preview. Each
// curve is split into a fixed number of pieces; arcs are approximated
// through their center parameterization.
func (f *Flattener) Polyline(cmds []Command) *Paths {
	n := f.subdivisions()
	ps := &Paths{}
	var st pathState
	curve := func(at func(t float64) Point) {
		for i := 1; i <= n; i++ {
			ps.line(at(float64(i) / float64(n)))
		}
	}
	for _, c := range Absolute(cmds) {
		switch c.Op {
		case 'M':
			p := st.pt(c, 0)
			ps.move(p)
			st.cur, st.start = p, p
		case 'L':
			p := st.pt(c, 0)
			ps.line(p)
			st.cur = p
		case 'C', 'S':
			var c1, c2, p Point
			if c.Op == 'C' {
				c1, c2, p = st.pt(c, 0), st.pt(c, 2), st.pt(c, 4)
			} else {
				c1, c2, p = st.reflect(true), st.pt(c, 0), st.pt(c, 2)
			}
			p0 := st.cur
			curve(func(t float64) Point { return CubicAt(t, p0, c1, c2, p) })
			st.cur, st.lastCtrl = p, c2
		case 'Q', 'T':
			var c1, p Point
			if c.Op == 'Q' {
				c1, p = st.pt(c, 0), st.pt(c, 2)
			} else {
				c1, p = st.reflect(false), st.pt(c, 0)
			}
			p0 := st.cur
			curve(func(t float64) Point { return QuadAt(t, p0, c1, p) })
			st.cur, st.lastCtrl = p, c1
		case 'A':
			p := st.pt(c, 5)
			a := Arc{RX: c.Args[0], RY: c.Args[1], Rotation: c.Args[2], Large: c.Args[3] != 0, Sweep: c.Args[4] != 0}
			if e, ok := arcCenter(st.cur, p, a); ok {
				curve(e.at)
			} else {
				ps.line(p)
			}
			st.cur = p
		case 'Z':
			if st.cur != st.start {
				ps.line(st.start)
			}
			st.cur = st.start
			ps.move(st.start)
		}
		st.lastOp = c.Op
	}
	ps.TightenBounds()
	return ps
}

// ellipse is the center parameterization of an arc.
type ellipse struct {
	c          Point
	rx, ry     float64
	phi        float64 // x axis rotation, radians
	theta, dth float64 // start angle and sweep, radians
}

func (e ellipse) at(t float64) Point {
	sp, cp := math.Sincos(e.phi)
	s, c := math.Sincos(e.theta + t*e.dth)
	x, y := e.rx*c, e.ry*s
	return Point{X: e.c.X + x*cp - y*sp, Y: e.c.Y + x*sp + y*cp}
}

// arcCenter converts an endpoint-parameterized arc from p0 to p1 to
// its center form. Out of range radii are scaled up. It reports false
// when the arc is a straight line.
func arcCenter(p0, p1 Point, a Arc) (ellipse, bool) {
	rx, ry := math.Abs(a.RX), math.Abs(a.RY)
	if rx == 0 || ry == 0 || p0 == p1 {
		return ellipse{}, false
	}
	phi := a.Rotation * math.Pi / 180
	sp, cp := math.Sincos(phi)
	dx, dy := (p0.X-p1.X)/2, (p0.Y-p1.Y)/2
	x1 := cp*dx + sp*dy
	y1 := -sp*dx + cp*dy

	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	k := math.Sqrt(math.Max(0, num/den))
	if a.Large == a.Sweep {
		k = -k
	}
	cx1 := k * rx * y1 / ry
	cy1 := -k * ry * x1 / rx

	c := Point{
		X: cp*cx1 - sp*cy1 + (p0.X+p1.X)/2,
		Y: sp*cx1 + cp*cy1 + (p0.Y+p1.Y)/2,
	}
	theta := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	theta2 := math.Atan2((-y1-cy1)/ry, (-x1-cx1)/rx)
	dth := theta2 - theta
	if a.Sweep && dth < 0 {
		dth += 2 * math.Pi
	} else if !a.Sweep && dth > 0 {
		dth -= 2 * math.Pi
	}
	return ellipse{c: c, rx: rx, ry: ry, phi: phi, theta: theta, dth: dth}, true
}
