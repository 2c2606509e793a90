package fit

import "github.com/paulhankin/tabfit/paths"

// Kind is the role of a segment relative to its adjustable neighbors.
type Kind int

const (
	// None stands for a missing neighbor.
	None Kind = iota
	// Adjustable segments are resized; they are never classified.
	Adjustable
	// TabConnector segments sit between two adjustable segments and
	// move rigidly with them.
	TabConnector
	// SlotEdge segments have one adjustable neighbor and stay anchored.
	SlotEdge
	// Perimeter segments have no adjustable neighbor.
	Perimeter
)

var kindNames = [...]string{
	None:         "none",
	Adjustable:   "adjustable",
	TabConnector: "tab-connector",
	SlotEdge:     "slot-edge",
	Perimeter:    "perimeter",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Anchored reports whether a neighbor of this kind holds an
// adjustable segment's endpoint in place.
func (k Kind) Anchored() bool {
	return k == SlotEdge || k == Perimeter
}

// classify counts the adjustable neighbors of the non-adjustable
// segment at index i. Curves are always perimeter.
func (d *Drawing) classify(i int) Kind {
	s := &d.segs[i]
	if s.IsCurve() {
		return Perimeter
	}
	n := 0
	for _, id := range []paths.SegmentID{s.Adjacent.Start, s.Adjacent.End} {
		if j := d.neighbor(id); j >= 0 && d.segs[j].Adjustable {
			n++
		}
	}
	switch n {
	case 2:
		return TabConnector
	case 1:
		return SlotEdge
	}
	return Perimeter
}

// kindOf is the kind of the segment at index i, as seen from a
// neighbor.
func (d *Drawing) kindOf(i int) Kind {
	switch {
	case i < 0:
		return None
	case d.segs[i].Adjustable:
		return Adjustable
	}
	return d.classify(i)
}

// Classify returns the kind of a non-adjustable segment, computed from
// the current marks.
func (d *Drawing) Classify(id paths.SegmentID) (Kind, error) {
	i, err := d.lookup(id)
	if err != nil {
		return None, err
	}
	if d.segs[i].Adjustable {
		return Adjustable, &paths.SegmentError{ID: id, Err: ErrAdjustable}
	}
	return d.classify(i), nil
}
