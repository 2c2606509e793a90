// Package paths provides tools for turning 2d vector paths into
// straight line segments, and the geometry those segments need.
package paths

import (
	"fmt"
	"math"
)

// Epsilon is the default tolerance for point equality.
const Epsilon = 0.001

// A Point is a position in drawing units.
type Point struct {
	X, Y float64
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Eq reports whether p and o differ by less than eps on both axes.
func (p Point) Eq(o Point, eps float64) bool {
	return math.Abs(p.X-o.X) < eps && math.Abs(p.Y-o.Y) < eps
}

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Vec2 {
	return Vec2{X: p.X - o.X, Y: p.Y - o.Y}
}

// Translate moves p by v.
func (p Point) Translate(v Vec2) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Lerp linearly interpolates between p and o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point{X: p.X*(1-t) + o.X*t, Y: p.Y*(1-t) + o.Y*t}
}

// Midpoint returns the point halfway between p and o.
func (p Point) Midpoint(o Point) Point {
	return Point{X: 0.5 * (p.X + o.X), Y: 0.5 * (p.Y + o.Y)}
}

// Distance returns the euclidean distance between p and o.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Vec2 is a 2-dimensional vector.
type Vec2 struct {
	X, Y float64
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Mul scales v by s.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Hypot returns the length of v.
func (v Vec2) Hypot() float64 {
	return math.Hypot(v.X, v.Y)
}

// Angle returns atan2(y, x).
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Normalize returns the unit vector in the direction of v.
// It fails with ErrZeroLengthSegment for the zero vector.
func (v Vec2) Normalize() (Vec2, error) {
	l := v.Hypot()
	if l == 0 {
		return Vec2{}, ErrZeroLengthSegment
	}
	return Vec2{X: v.X / l, Y: v.Y / l}, nil
}

// Bounds describes an axis-aligned bounding box.
type Bounds struct {
	Min, Max Point
}

// Width returns the horizontal extent of b.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent of b.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// A Path is a contiguous series of line segments, from the
// first point in the V slice to the last.
type Path struct {
	V []Point
}

// Paths is a set of polylines, along with a view bounds.
type Paths struct {
	Bounds Bounds
	P      []Path
}

// TightenBounds adjusts the bounds to exactly contain the paths.
// If there are no paths, the bounds are set to zero.
func (ps *Paths) TightenBounds() {
	var pts []Point
	for _, p := range ps.P {
		pts = append(pts, p.V...)
	}
	ps.Bounds = boundsOf(pts)
}

// SegmentBounds returns the tight bounds of the segment endpoints.
func SegmentBounds(segs []Segment) Bounds {
	pts := make([]Point, 0, 2*len(segs))
	for _, s := range segs {
		pts = append(pts, s.Start, s.End)
	}
	return boundsOf(pts)
}

func boundsOf(pts []Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	inf := math.Inf(1)
	min := Point{inf, inf}
	max := Point{-inf, -inf}
	for _, v := range pts {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return Bounds{Min: min, Max: max}
}

// move adds a new (initially empty) path starting at x,
// unless the last path already ends at x.
func (ps *Paths) move(x Point) {
	if len(ps.P) == 0 {
		ps.P = append(ps.P, Path{V: []Point{x}})
		return
	}
	p := &ps.P[len(ps.P)-1]
	if len(p.V) > 0 && p.V[len(p.V)-1] == x {
		return
	}
	ps.P = append(ps.P, Path{V: []Point{x}})
}

// line extends the last path with an edge that goes to x.
func (ps *Paths) line(x Point) {
	p := &ps.P[len(ps.P)-1]
	p.V = append(p.V, x)
}
