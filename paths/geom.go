package paths

import "math"

// MMToUnits converts a length in millimeters to drawing units at
// the given resolution.
func MMToUnits(mm, dpi float64) (float64, error) {
	if dpi <= 0 {
		return 0, ErrInvalidDPI
	}
	if mm < 0 {
		return 0, ErrNegativeLength
	}
	return mm * dpi / 25.4, nil
}

// CubicAt evaluates the cubic Bézier curve p0..p3 at t.
func CubicAt(t float64, p0, p1, p2, p3 Point) Point {
	u := 1 - t
	uu := u * u
	tt := t * t
	a, b, c, d := uu*u, 3*uu*t, 3*u*tt, tt*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// QuadAt evaluates the quadratic Bézier curve p0..p2 at t.
func QuadAt(t float64, p0, p1, p2 Point) Point {
	u := 1 - t
	a, b, c := u*u, 2*u*t, t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y,
	}
}

// ChordDistance returns the perpendicular distance from p to the
// infinite line through a and b. If a and b coincide, it's the
// distance from p to a.
func ChordDistance(p, a, b Point) float64 {
	n := Vec2{X: b.Y - a.Y, Y: a.X - b.X}
	l := n.Hypot()
	if l == 0 {
		return p.Distance(a)
	}
	return math.Abs(p.Sub(a).Dot(n)) / l
}

// minChord is the chord length below which a curve counts as straight
// no matter where its control points are.
const minChord = 0.1

// IsStraight reports whether the curve from start to end with the given
// control points lies within tol of its chord.
func IsStraight(start Point, ctrl []Point, end Point, tol float64) bool {
	if start.Distance(end) < minChord {
		return true
	}
	for _, c := range ctrl {
		if ChordDistance(c, start, end) > tol {
			return false
		}
	}
	return true
}

// ProjectOnto returns the point of the segment a-b closest to p,
// and the parameter t of that point, clamped to [0, 1].
func ProjectOnto(p, a, b Point) (Point, float64) {
	d := b.Sub(a)
	dd := d.Dot(d)
	if dd == 0 {
		return a, 0
	}
	t := p.Sub(a).Dot(d) / dd
	t = math.Max(0, math.Min(1, t))
	return a.Lerp(b, t), t
}

// SignedArea returns the shoelace sum Σ(x2−x1)(y2+y1) over the
// segments. A positive sum is a clockwise loop with the y axis
// pointing up. The sign is not flipped for SVG's downward y axis.
func SignedArea(segs []Segment) float64 {
	area := 0.0
	for _, s := range segs {
		area += (s.End.X - s.Start.X) * (s.End.Y + s.Start.Y)
	}
	return area
}
