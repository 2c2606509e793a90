// Package fit resizes marked edges of closed outlines to multiples of a
// material thickness, keeping every outline closed.
//
// A Drawing owns a flat list of segments. Rebuild matches their
// endpoints and extracts the closed shapes; Mark and Toggle choose which
// segments are adjustable; Apply resizes every adjustable segment and
// then moves or re-anchors its neighbors so the shapes stay closed.
//
// A Drawing is not safe for concurrent use.
package fit

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/paulhankin/tabfit/paths"
)

// Params are the physical parameters of an adjustment batch.
type Params struct {
	MaterialThicknessMM float64
	DPI                 float64
}

// DefaultParams are 3mm material at 96 dpi.
var DefaultParams = Params{MaterialThicknessMM: 3, DPI: 96}

// Validate checks that both parameters are positive.
func (p Params) Validate() error {
	if p.DPI <= 0 {
		return fmt.Errorf("dpi %g: %w", p.DPI, paths.ErrInvalidDPI)
	}
	if p.MaterialThicknessMM <= 0 {
		return fmt.Errorf("material thickness %gmm: %w", p.MaterialThicknessMM, paths.ErrNegativeLength)
	}
	return nil
}

// Target returns the length in drawing units of an edge that spans
// mult material thicknesses.
func (p Params) Target(mult int) (float64, error) {
	return paths.MMToUnits(p.MaterialThicknessMM*float64(mult), p.DPI)
}

// Drawing is the arena of segments and the shapes found among them.
type Drawing struct {
	segs   []paths.Segment
	index  map[paths.SegmentID]int
	shapes []Shape
	report BuildReport
	params Params
	eps    float64
	log    *log.Logger
}

// An Option configures a Drawing.
type Option func(*Drawing)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(d *Drawing) {
		if l != nil {
			d.log = l
		}
	}
}

// WithEpsilon sets the point coincidence tolerance.
func WithEpsilon(eps float64) Option {
	return func(d *Drawing) {
		if eps > 0 {
			d.eps = eps
		}
	}
}

// New returns a drawing that owns a copy of segs, with its shapes
// already built. Segment ids must be unique.
func New(segs []paths.Segment, opts ...Option) (*Drawing, error) {
	d := &Drawing{
		segs:   append([]paths.Segment(nil), segs...),
		index:  make(map[paths.SegmentID]int, len(segs)),
		params: DefaultParams,
		eps:    paths.Epsilon,
		log:    log.New(io.Discard),
	}
	for _, o := range opts {
		o(d)
	}
	for i := range d.segs {
		s := &d.segs[i]
		if _, ok := d.index[s.ID]; ok {
			return nil, &paths.SegmentError{ID: s.ID, Err: ErrDuplicateSegment}
		}
		d.index[s.ID] = i
		if s.Multiplier == 0 {
			s.Multiplier = 1
		}
		if s.Adjustable && !markable(s) {
			s.Adjustable = false
		}
	}
	rep := d.Rebuild()
	d.log.Debug("built drawing", "segments", len(d.segs), "shapes", rep.Shapes, "open", rep.Open)
	return d, nil
}

// Report returns the summary of the last Rebuild.
func (d *Drawing) Report() BuildReport {
	return d.report
}

// Params returns the current parameters.
func (d *Drawing) Params() Params {
	return d.params
}

// SetParams replaces the parameters. Invalid parameters are refused
// and the previous ones kept.
func (d *Drawing) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		d.log.Warn("refusing parameters", "err", err)
		return err
	}
	d.params = p
	return nil
}

// Segments returns a copy of the segments in input order.
func (d *Drawing) Segments() []paths.Segment {
	return append([]paths.Segment(nil), d.segs...)
}

// Segment returns the segment with the given id.
func (d *Drawing) Segment(id paths.SegmentID) (paths.Segment, bool) {
	i, ok := d.index[id]
	if !ok {
		return paths.Segment{}, false
	}
	return d.segs[i], true
}

// Shapes returns the shapes found by the last Rebuild.
func (d *Drawing) Shapes() []Shape {
	r := make([]Shape, len(d.shapes))
	for i, s := range d.shapes {
		r[i] = s
		r[i].Lines = append([]paths.SegmentID(nil), s.Lines...)
	}
	return r
}

func (d *Drawing) lookup(id paths.SegmentID) (int, error) {
	i, ok := d.index[id]
	if !ok {
		return 0, &paths.SegmentError{ID: id, Err: ErrUnknownSegment}
	}
	return i, nil
}

// neighbor returns the arena index of id, or -1 if there's no such
// segment.
func (d *Drawing) neighbor(id paths.SegmentID) int {
	if id == "" {
		return -1
	}
	if i, ok := d.index[id]; ok {
		return i
	}
	return -1
}
