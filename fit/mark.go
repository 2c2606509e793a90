package fit

import "github.com/paulhankin/tabfit/paths"

func markable(s *paths.Segment) bool {
	return !s.IsCurve() && !s.Degenerate()
}

// Mark sets the adjustment of a segment: 0 makes it normal, 1 or 2
// makes it adjustable to that many material thicknesses.
func (d *Drawing) Mark(id paths.SegmentID, mult int) error {
	i, err := d.lookup(id)
	if err != nil {
		return err
	}
	if mult < 0 || mult > 2 {
		return &paths.SegmentError{ID: id, Err: ErrInvalidMultiplier}
	}
	s := &d.segs[i]
	if mult > 0 && !markable(s) {
		return &paths.SegmentError{ID: id, Err: ErrNotAdjustable}
	}
	s.Adjustable = mult > 0
	s.Multiplier = max(mult, 1)
	d.log.Debug("marked segment", "segment", id, "multiplier", mult)
	return nil
}

// mark returns the mark of s in the form Mark takes.
func mark(s *paths.Segment) int {
	if !s.Adjustable {
		return 0
	}
	return s.Multiplier
}

// Toggle advances a segment through normal, 1x and 2x, and back to
// normal. It returns the new mark.
func (d *Drawing) Toggle(id paths.SegmentID) (int, error) {
	i, err := d.lookup(id)
	if err != nil {
		return 0, err
	}
	next := (mark(&d.segs[i]) + 1) % 3
	if err := d.Mark(id, next); err != nil {
		return mark(&d.segs[i]), err
	}
	return next, nil
}

// Marks returns the mark of every adjustable segment.
func (d *Drawing) Marks() map[paths.SegmentID]int {
	m := map[paths.SegmentID]int{}
	for i := range d.segs {
		if d.segs[i].Adjustable {
			m[d.segs[i].ID] = d.segs[i].Multiplier
		}
	}
	return m
}
