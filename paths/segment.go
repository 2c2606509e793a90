package paths

import "fmt"

// A SegmentID identifies a segment for the lifetime of a drawing.
// The empty id means "no segment".
type SegmentID string

func segmentID(pathID string, i int) SegmentID {
	return SegmentID(fmt.Sprintf("%s_seg_%d", pathID, i))
}

// Adjacent holds the neighbor at each end of a segment.
type Adjacent struct {
	Start, End SegmentID
}

// A CurveRef keeps the absolute control data of a curve command that
// wasn't straight enough to become a plain segment. It's used for
// rendering only.
type CurveRef struct {
	Op   byte    // one of C Q A
	Ctrl []Point // control points, not including the endpoints
	Arc  *Arc    // set when Op is 'A'
}

// Arc holds the shape parameters of an elliptical arc command.
type Arc struct {
	RX, RY   float64
	Rotation float64 // degrees
	Large    bool
	Sweep    bool
}

// A Segment is a straight edge of a drawing.
type Segment struct {
	ID     SegmentID
	PathID string
	Start  Point
	End    Point

	Adjustable bool
	Multiplier int // 1 or 2, meaningful only when Adjustable
	Adjacent   Adjacent

	// Curve is set when the segment stands for a real curve. Only
	// its endpoints take part in connectivity.
	Curve *CurveRef
}

// NewSegment returns a normal (non-adjustable) segment.
func NewSegment(id SegmentID, start, end Point) Segment {
	return Segment{ID: id, Start: start, End: end, Multiplier: 1}
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Angle returns atan2(dy, dx) of the segment direction.
func (s Segment) Angle() float64 {
	return s.End.Sub(s.Start).Angle()
}

// IsCurve reports whether s is a curve reference.
func (s Segment) IsCurve() bool {
	return s.Curve != nil
}

// Degenerate reports whether the segment has zero length.
func (s Segment) Degenerate() bool {
	return s.Start == s.End
}

// Translate moves both endpoints by v.
func (s *Segment) Translate(v Vec2) {
	s.Start = s.Start.Translate(v)
	s.End = s.End.Translate(v)
}

// Reanchor moves whichever endpoint of s lies at old to p. It reports
// false if neither endpoint is within eps of old.
func (s *Segment) Reanchor(old, p Point, eps float64) bool {
	switch {
	case s.Start.Eq(old, eps):
		s.Start = p
	case s.End.Eq(old, eps):
		s.End = p
	default:
		return false
	}
	return true
}
