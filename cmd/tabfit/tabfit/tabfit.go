// Package tabfit provides the functionality for the tabfit binary as
// a library.
package tabfit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/paulhankin/tabfit/fit"
	"github.com/paulhankin/tabfit/paths"
)

func discard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

// load parses an SVG document and builds a marked drawing from it.
// Zero length segments are logged and otherwise ignored.
func load(r io.Reader, cfg *Config, l *log.Logger) (*paths.Document, *fit.Drawing, error) {
	doc, err := paths.FromSVG(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	for _, name := range doc.Skipped {
		l.Debug("skipped element", "element", name)
	}
	segs, err := doc.Segments(&paths.Flattener{Tolerance: cfg.CurveTolerance})
	if err != nil {
		l.Warn("ignoring zero length segments", "err", err)
	}
	d, err := fit.New(segs, fit.WithLogger(l))
	if err != nil {
		return nil, nil, err
	}
	if err := d.SetParams(cfg.Params()); err != nil {
		return nil, nil, err
	}
	for _, m := range cfg.Marks {
		if err := d.Mark(paths.SegmentID(m.Segment), m.Multiplier); err != nil {
			return nil, nil, fmt.Errorf("failed to mark: %w", err)
		}
	}
	return doc, d, nil
}

func bounds(doc *paths.Document, segs []paths.Segment) paths.Bounds {
	if doc.Bounds.Width() > 0 && doc.Bounds.Height() > 0 {
		return doc.Bounds
	}
	return paths.SegmentBounds(segs)
}

// Adjust reads an SVG document from r, applies the marks and
// parameters of cfg, and writes the adjusted drawing to w.
func Adjust(r io.Reader, w io.Writer, cfg *Config, l *log.Logger) (*fit.BatchResult, error) {
	l = discard(l)
	doc, d, err := load(r, cfg, l)
	if err != nil {
		return nil, err
	}
	res := d.Apply()
	for _, warn := range res.Warnings {
		l.Warn("adjustment", "warning", warn)
	}
	segs := d.Segments()
	if cfg.Flatten {
		ps := (&paths.Flattener{}).Polyline(Commands(segs))
		err = ps.SVG(w)
	} else {
		err = paths.WriteSVG(w, bounds(doc, segs), segs, &paths.SVGOptions{Highlight: cfg.Highlight})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write svg: %w", err)
	}
	return res, nil
}

// Commands turns segments back into path commands, starting a new
// subpath wherever a segment doesn't begin at the end of the previous
// one.
func Commands(segs []paths.Segment) []paths.Command {
	var cmds []paths.Command
	var cur paths.Point
	for i := range segs {
		s := &segs[i]
		if s.Degenerate() {
			continue
		}
		if len(cmds) == 0 || s.Start != cur {
			cmds = append(cmds, paths.Command{Op: 'M', Args: []float64{s.Start.X, s.Start.Y}})
		}
		switch {
		case s.Curve == nil:
			cmds = append(cmds, paths.Command{Op: 'L', Args: []float64{s.End.X, s.End.Y}})
		case s.Curve.Op == 'A' && s.Curve.Arc != nil:
			a := s.Curve.Arc
			cmds = append(cmds, paths.Command{Op: 'A', Args: []float64{a.RX, a.RY, a.Rotation, b2f(a.Large), b2f(a.Sweep), s.End.X, s.End.Y}})
		default:
			var args []float64
			for _, c := range s.Curve.Ctrl {
				args = append(args, c.X, c.Y)
			}
			cmds = append(cmds, paths.Command{Op: s.Curve.Op, Args: append(args, s.End.X, s.End.Y)})
		}
		cur = s.End
	}
	return cmds
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// OutName returns the default output file for an input file:
// drawing.svg becomes drawing_adjusted.svg.
func OutName(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + "_adjusted.svg"
}

// Convert adjusts the file cfg.In and writes the result to cfg.Out.
func Convert(cfg *Config, l *log.Logger) (*fit.BatchResult, error) {
	if cfg.In == "" {
		return nil, fmt.Errorf("input file must be specified")
	}
	out := cfg.Out
	if out == "" {
		out = OutName(cfg.In)
	}
	if out == cfg.In {
		return nil, fmt.Errorf("output file %s would overwrite the input", out)
	}

	f, err := os.Open(cfg.In)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	svgOut, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	res, err := Adjust(f, svgOut, cfg, l)
	if cerr := svgOut.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to write svg file: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	discard(l).Info("wrote adjusted drawing", "out", out, "adjusted", res.Adjusted)
	return res, nil
}

// SegmentInfo describes one segment of a drawing.
type SegmentInfo struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	Start      [2]float64 `json:"start"`
	End        [2]float64 `json:"end"`
	Length     float64    `json:"length"`
	Kind       string     `json:"kind"`
	Multiplier int        `json:"multiplier,omitempty"`
	Curve      bool       `json:"curve,omitempty"`
}

// ShapeInfo describes one closed shape.
type ShapeInfo struct {
	ID      string   `json:"id"`
	Winding string   `json:"winding"`
	Lines   []string `json:"lines"`
}

// Report is the result of Inspect.
type Report struct {
	Segments []SegmentInfo `json:"segments"`
	Shapes   []ShapeInfo   `json:"shapes"`
	Open     int           `json:"open"`
	Skipped  []string      `json:"skipped,omitempty"`
	Problems []string      `json:"problems,omitempty"`
}

// Inspect reads an SVG document and reports its segments, their
// classification under the marks of cfg, and the shapes found.
func Inspect(r io.Reader, cfg *Config, l *log.Logger) (*Report, error) {
	l = discard(l)
	doc, err := paths.FromSVG(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	rep := &Report{Skipped: doc.Skipped}
	segs, err := doc.Segments(&paths.Flattener{Tolerance: cfg.CurveTolerance})
	rep.Problems = problems(err)
	d, err := fit.New(segs, fit.WithLogger(l))
	if err != nil {
		return nil, err
	}
	for _, m := range cfg.Marks {
		if err := d.Mark(paths.SegmentID(m.Segment), m.Multiplier); err != nil {
			rep.Problems = append(rep.Problems, err.Error())
		}
	}
	for _, s := range d.Segments() {
		kind := fit.Adjustable
		if !s.Adjustable {
			kind, _ = d.Classify(s.ID)
		}
		info := SegmentInfo{
			ID:     string(s.ID),
			Path:   s.PathID,
			Start:  [2]float64{s.Start.X, s.Start.Y},
			End:    [2]float64{s.End.X, s.End.Y},
			Length: s.Length(),
			Kind:   kind.String(),
			Curve:  s.IsCurve(),
		}
		if s.Adjustable {
			info.Multiplier = s.Multiplier
		}
		rep.Segments = append(rep.Segments, info)
	}
	for _, sh := range d.Shapes() {
		si := ShapeInfo{ID: sh.ID, Winding: sh.Winding.String()}
		for _, id := range sh.Lines {
			si.Lines = append(si.Lines, string(id))
		}
		rep.Shapes = append(rep.Shapes, si)
	}
	rep.Open = d.Report().Open
	return rep, nil
}

// problems lists the errors joined in err.
func problems(err error) []string {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var r []string
		for _, e := range j.Unwrap() {
			r = append(r, problems(e)...)
		}
		return r
	}
	return []string{err.Error()}
}
