package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulhankin/tabfit/paths"
)

// Winding is the orientation of a shape.
type Winding int

const (
	CW Winding = iota
	CCW
)

func (w Winding) String() string {
	if w == CW {
		return "cw"
	}
	return "ccw"
}

// A Shape is a closed cycle of segments, in end-to-start order.
type Shape struct {
	ID      string
	Lines   []paths.SegmentID
	Winding Winding
}

// BuildReport summarizes a Rebuild.
type BuildReport struct {
	Shapes    int // closed shapes found
	Open      int // walks that didn't close, or closed with fewer than 3 segments
	Malformed int // walks that hit the step limit

	// Err joins a *paths.SegmentError wrapping ErrMalformedAdjacency
	// for each malformed walk, keyed by the walk's first segment.
	Err error
}

// connect recomputes the neighbor of every segment endpoint. The end
// neighbor of a segment is the last segment, in input order, whose
// start coincides with its end; likewise for the start neighbor.
// Zero length segments take no part.
func (d *Drawing) connect() {
	idx := paths.IndexEndpoints(d.segs)
	r := d.eps * math.Sqrt2
	find := func(i int, p paths.Point, wantEnd bool) paths.SegmentID {
		var id paths.SegmentID
		for _, e := range idx.Within(p, r) {
			if e.Seg != i && e.End == wantEnd && e.P.Eq(p, d.eps) {
				id = d.segs[e.Seg].ID
			}
		}
		return id
	}
	for i := range d.segs {
		s := &d.segs[i]
		s.Adjacent = paths.Adjacent{}
		if s.Degenerate() {
			continue
		}
		s.Adjacent.End = find(i, s.End, false)
		s.Adjacent.Start = find(i, s.Start, true)
	}
}

// Rebuild recomputes adjacency and extracts the closed shapes. The
// returned report is also kept for Report.
//
// Segments are walked in input order along their end neighbors. A walk
// that comes back to a segment it already holds yields the cycle from
// that segment on; a lead-in tail is dropped. A walk that runs out of
// neighbors, or runs into a segment claimed by an earlier walk, yields
// nothing. Only cycles of more than two segments become shapes.
func (d *Drawing) Rebuild() BuildReport {
	d.connect()
	d.shapes = nil
	var rep BuildReport
	var errs []error

	n := len(d.segs)
	claimed := make([]bool, n)
	for first := range d.segs {
		if claimed[first] || d.segs[first].Degenerate() {
			continue
		}
		// Every step claims a segment, so the 2n limit is never reached
		// on adjacency built by connect.
		walk, cycle, ok := d.walk(first, claimed, 2*n)
		if !ok {
			rep.Malformed++
			errs = append(errs, &paths.SegmentError{ID: d.segs[first].ID, Err: ErrMalformedAdjacency})
			d.log.Warn("shape walk didn't terminate", "segment", d.segs[first].ID, "err", ErrMalformedAdjacency)
			continue
		}
		if cycle < 0 || len(walk)-cycle <= 2 {
			rep.Open++
			continue
		}
		sh := Shape{ID: fmt.Sprintf("shape_%d", len(d.shapes))}
		lines := make([]paths.Segment, 0, len(walk)-cycle)
		for _, i := range walk[cycle:] {
			sh.Lines = append(sh.Lines, d.segs[i].ID)
			lines = append(lines, d.segs[i])
		}
		if paths.SignedArea(lines) > 0 {
			sh.Winding = CW
		} else {
			sh.Winding = CCW
		}
		d.log.Debug("found shape", "shape", sh.ID, "lines", len(sh.Lines), "winding", sh.Winding)
		d.shapes = append(d.shapes, sh)
	}
	rep.Shapes = len(d.shapes)
	rep.Err = errors.Join(errs...)
	d.report = rep
	return rep
}

// walk follows end neighbors from first, claiming each segment it
// passes. It returns the segments walked and the position in walk
// where the cycle starts, or -1 if the walk ran out of neighbors or
// into a segment claimed earlier. ok is false if the walk took limit
// steps without stopping.
func (d *Drawing) walk(first int, claimed []bool, limit int) (walk []int, cycle int, ok bool) {
	pos := map[int]int{}
	cur := first
	for steps := 0; steps < limit; steps++ {
		if k, seen := pos[cur]; seen {
			return walk, k, true
		}
		if claimed[cur] {
			return walk, -1, true
		}
		claimed[cur] = true
		pos[cur] = len(walk)
		walk = append(walk, cur)
		next := d.neighbor(d.segs[cur].Adjacent.End)
		if next < 0 {
			return walk, -1, true
		}
		cur = next
	}
	return walk, -1, false
}

// CheckAdjacency verifies that every recorded neighbor still shares
// its endpoint: a segment's end with its end neighbor's start, and its
// start with its start neighbor's end.
func (d *Drawing) CheckAdjacency() error {
	return errors.Join(d.disconnected()...)
}

// disconnected returns a *paths.SegmentError wrapping ErrDisconnected
// for each endpoint that has drifted off its recorded neighbor.
func (d *Drawing) disconnected() []error {
	var errs []error
	for i := range d.segs {
		s := &d.segs[i]
		if j := d.neighbor(s.Adjacent.End); j >= 0 && !s.End.Eq(d.segs[j].Start, d.eps) {
			errs = append(errs, &paths.SegmentError{ID: s.ID, Err: fmt.Errorf("end %v, start %v of %s: %w", s.End, d.segs[j].Start, d.segs[j].ID, ErrDisconnected)})
		}
		if j := d.neighbor(s.Adjacent.Start); j >= 0 && !s.Start.Eq(d.segs[j].End, d.eps) {
			errs = append(errs, &paths.SegmentError{ID: s.ID, Err: fmt.Errorf("start %v, end %v of %s: %w", s.Start, d.segs[j].End, d.segs[j].ID, ErrDisconnected)})
		}
	}
	return errs
}
