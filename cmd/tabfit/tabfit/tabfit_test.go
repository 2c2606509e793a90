package tabfit

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/paulhankin/tabfit/fit"
	"github.com/paulhankin/tabfit/paths"
)

// slotSVG has a rectangle with a notch in its bottom edge;
// path_0_seg_1 and path_0_seg_3 are the sides of the notch.
const slotSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="40" height="30" viewBox="-5 -5 40 30">
<path d="M0 0 L10 0 L10 5 L20 5 L20 0 L30 0 L30 20 L0 20 Z"/>
<path d="M5 10 C5 15 10 15 10 10"/>
</svg>
`

func slotConfig() *Config {
	cfg := DefaultConfig()
	cfg.Marks = []Mark{{"path_0_seg_1", 1}, {"path_0_seg_3", 1}}
	return cfg
}

func reload(t *testing.T, data []byte) []paths.Segment {
	t.Helper()
	doc, err := paths.FromSVG(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reloading output: %v\n%s", err, data)
	}
	segs, err := doc.Segments(nil)
	if err != nil {
		t.Fatalf("reloading output: %v", err)
	}
	return segs
}

func TestAdjust(t *testing.T) {
	var out bytes.Buffer
	cfg := slotConfig()
	cfg.Highlight = true
	res, err := Adjust(strings.NewReader(slotSVG), &out, cfg, nil)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if res.Adjusted != 2 || res.Translated != 1 {
		t.Errorf("got %+v, want 2 adjusted and 1 translated", res)
	}
	if !strings.Contains(out.String(), `stroke="`+paths.ColorOneX+`"`) {
		t.Errorf("adjusted segments aren't highlighted:\n%s", out.String())
	}

	segs := reload(t, out.Bytes())
	if len(segs) != 9 {
		t.Fatalf("reloaded %d segments, want 9", len(segs))
	}
	target, _ := fit.DefaultParams.Target(1)
	for _, i := range []int{1, 3} {
		if got := segs[i].Length(); math.Abs(got-target) > 1e-3 {
			t.Errorf("segment %d has length %g, want %g", i, got, target)
		}
	}
	if !segs[8].IsCurve() {
		t.Errorf("curve wasn't written back as a curve: %+v", segs[8])
	}

	// The reloaded outline closes up again.
	d, err := fit.New(segs)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(d.Shapes()); n != 1 {
		t.Errorf("reloaded drawing has %d shapes, want 1", n)
	}
}

func TestAdjustFlatten(t *testing.T) {
	var out bytes.Buffer
	cfg := slotConfig()
	cfg.Flatten = true
	if _, err := Adjust(strings.NewReader(slotSVG), &out, cfg, nil); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if strings.Contains(out.String(), " C ") {
		t.Errorf("flattened output still has curves:\n%s", out.String())
	}
	for _, s := range reload(t, out.Bytes()) {
		if s.IsCurve() {
			t.Errorf("flattened output has curve %s", s.ID)
		}
	}
}

func TestAdjustErrors(t *testing.T) {
	cases := []struct {
		name string
		svg  string
		cfg  *Config
	}{
		{"bad svg", "<svg", DefaultConfig()},
		{"unknown mark", slotSVG, &Config{MaterialThicknessMM: 3, DPI: 96, Marks: []Mark{{"nope", 1}}}},
		{"curve mark", slotSVG, &Config{MaterialThicknessMM: 3, DPI: 96, Marks: []Mark{{"path_1_seg_0", 1}}}},
		{"bad dpi", slotSVG, &Config{MaterialThicknessMM: 3}},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		if _, err := Adjust(strings.NewReader(tc.svg), &out, tc.cfg, nil); err == nil {
			t.Errorf("%s: Adjust succeeded", tc.name)
		}
	}
}

func TestCommands(t *testing.T) {
	segs := []paths.Segment{
		paths.NewSegment("a", paths.Pt(0, 0), paths.Pt(1, 0)),
		paths.NewSegment("b", paths.Pt(1, 0), paths.Pt(1, 1)),
		paths.NewSegment("dot", paths.Pt(1, 1), paths.Pt(1, 1)),
		paths.NewSegment("c", paths.Pt(5, 5), paths.Pt(6, 5)),
	}
	segs[3].Curve = &paths.CurveRef{Op: 'Q', Ctrl: []paths.Point{paths.Pt(5.5, 7)}}
	want := []paths.Command{
		{Op: 'M', Args: []float64{0, 0}},
		{Op: 'L', Args: []float64{1, 0}},
		{Op: 'L', Args: []float64{1, 1}},
		{Op: 'M', Args: []float64{5, 5}},
		{Op: 'Q', Args: []float64{5.5, 7, 6, 5}},
	}
	if diff := cmp.Diff(want, Commands(segs)); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "slot.svg")
	if err := os.WriteFile(in, []byte(slotSVG), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := slotConfig()
	cfg.In = in
	if _, err := Convert(cfg, nil); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "slot_adjusted.svg"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if n := len(reload(t, data)); n != 9 {
		t.Errorf("output has %d segments, want 9", n)
	}

	cfg.Out = in
	if _, err := Convert(cfg, nil); err == nil {
		t.Errorf("Convert overwrote its input")
	}
	if _, err := Convert(&Config{}, nil); err == nil {
		t.Errorf("Convert without input succeeded")
	}
}

func TestInspect(t *testing.T) {
	cfg := slotConfig()
	cfg.Marks = append(cfg.Marks, Mark{"path_1_seg_0", 1})
	rep, err := Inspect(strings.NewReader(slotSVG), cfg, nil)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	var kinds []string
	for _, s := range rep.Segments {
		kinds = append(kinds, s.Kind)
	}
	want := []string{
		"slot-edge", "adjustable", "tab-connector", "adjustable",
		"slot-edge", "perimeter", "perimeter", "perimeter", "perimeter",
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if len(rep.Shapes) != 1 || rep.Shapes[0].Winding != "ccw" || len(rep.Shapes[0].Lines) != 8 {
		t.Errorf("Shapes = %+v", rep.Shapes)
	}
	if rep.Open != 1 {
		t.Errorf("Open = %d, want 1", rep.Open)
	}
	if len(rep.Problems) != 1 {
		t.Errorf("Problems = %q, want one for the curve mark", rep.Problems)
	}

	var out bytes.Buffer
	if err := WriteReport(&out, rep); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	for _, s := range []string{"9 segments", "1 shapes, 1 open", "path_0_seg_2", "tab-connector", "shape_0"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("report doesn't mention %q:\n%s", s, out.String())
		}
	}
}
