package fit

import (
	"math"

	"github.com/google/uuid"

	"github.com/paulhankin/tabfit/paths"
)

// lengthTolerance is how close to its target length a segment must be
// to be left alone.
const lengthTolerance = 0.001

// BatchResult describes one Apply.
type BatchResult struct {
	ID uuid.UUID
	// Adjusted counts the adjustable segments whose length changed.
	Adjusted int
	// Translated counts tab connectors moved rigidly.
	Translated int
	// Reanchored counts shared endpoints moved onto an adjusted one.
	Reanchored int
	// Warnings holds a *paths.SegmentError for each recoverable
	// problem, such as ErrDoubleAnchor, followed by one wrapping
	// ErrDisconnected for each endpoint left off its neighbor.
	Warnings []error
}

// adjustment records the endpoints of an adjustable segment before
// the batch.
type adjustment struct {
	idx              int
	oldStart, oldEnd paths.Point
}

// adjust moves the endpoints of the adjustable segment at index i so
// that its length is target, keeping its direction. Which endpoints
// move depends on whether its neighbors are anchored. It reports
// whether the segment changed, and a warning if both ends were
// anchored.
func (d *Drawing) adjust(i int, target float64) (bool, error) {
	s := &d.segs[i]
	if math.Abs(target-s.Length()) < lengthTolerance {
		return false, nil
	}
	dir, err := s.End.Sub(s.Start).Normalize()
	if err != nil {
		return false, &paths.SegmentError{ID: s.ID, Err: err}
	}
	startKind := d.kindOf(d.neighbor(s.Adjacent.Start))
	endKind := d.kindOf(d.neighbor(s.Adjacent.End))

	var warn error
	switch {
	case startKind.Anchored() && endKind.Anchored():
		warn = &paths.SegmentError{ID: s.ID, Err: ErrDoubleAnchor}
		d.log.Warn("both ends anchored, extending from the midpoint", "segment", s.ID)
		mid := s.Start.Midpoint(s.End)
		s.Start, s.End = mid.Translate(dir.Mul(-target/2)), mid.Translate(dir.Mul(target/2))
	case startKind.Anchored():
		s.End = s.Start.Translate(dir.Mul(target))
	case endKind.Anchored():
		s.Start = s.End.Translate(dir.Mul(-target))
	default:
		mid := s.Start.Midpoint(s.End)
		s.Start, s.End = mid.Translate(dir.Mul(-target/2)), mid.Translate(dir.Mul(target/2))
	}
	d.log.Debug("adjusted segment", "segment", s.ID, "start", startKind, "end", endKind, "target", target, "length", s.Length())
	return true, warn
}

// pending returns the adjustable segments in batch order: those in
// shapes, in shape order, and then the rest in input order.
func (d *Drawing) pending() []adjustment {
	var adj []adjustment
	seen := make([]bool, len(d.segs))
	add := func(i int) {
		s := &d.segs[i]
		if seen[i] || !s.Adjustable || !markable(s) {
			return
		}
		seen[i] = true
		adj = append(adj, adjustment{idx: i, oldStart: s.Start, oldEnd: s.End})
	}
	for _, sh := range d.shapes {
		for _, id := range sh.Lines {
			if i := d.neighbor(id); i >= 0 {
				add(i)
			}
		}
	}
	for i := range d.segs {
		add(i)
	}
	return adj
}

// Apply runs one adjustment batch. Every adjustable segment is resized
// to its target length first; only then are the changes propagated to
// the neighbors, sharing one visited set across the whole batch.
// Endpoints that propagation could not bring back together are
// reported in the result's warnings.
func (d *Drawing) Apply() *BatchResult {
	res := &BatchResult{ID: uuid.New()}
	adj := d.pending()
	d.log.Info("adjusting", "batch", res.ID, "segments", len(adj), "thickness", d.params.MaterialThicknessMM, "dpi", d.params.DPI)

	for _, a := range adj {
		target, err := d.params.Target(d.segs[a.idx].Multiplier)
		if err != nil {
			res.Warnings = append(res.Warnings, &paths.SegmentError{ID: d.segs[a.idx].ID, Err: err})
			continue
		}
		changed, warn := d.adjust(a.idx, target)
		if warn != nil {
			res.Warnings = append(res.Warnings, warn)
		}
		if changed {
			res.Adjusted++
		}
	}

	visited := make([]bool, len(d.segs))
	for _, a := range adj {
		d.propagate(a, visited, res)
	}
	gaps := d.disconnected()
	if len(gaps) > 0 {
		d.log.Warn("outline left open", "batch", res.ID, "gaps", len(gaps))
	}
	res.Warnings = append(res.Warnings, gaps...)
	d.log.Info("adjusted", "batch", res.ID, "adjusted", res.Adjusted, "translated", res.Translated, "reanchored", res.Reanchored)
	return res
}
