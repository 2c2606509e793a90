package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/paulhankin/tabfit/paths"
)

// drawing flattens each path and returns a drawing of the segments.
func drawing(t *testing.T, ds ...string) *Drawing {
	t.Helper()
	var segs []paths.Segment
	var f paths.Flattener
	for i, d := range ds {
		cmds, err := paths.ParsePathData(d)
		if err != nil {
			t.Fatalf("ParsePathData(%q): %v", d, err)
		}
		s, err := f.Segments("p"+string(rune('0'+i)), cmds)
		if err != nil {
			t.Fatalf("Segments(%q): %v", d, err)
		}
		segs = append(segs, s...)
	}
	dr, err := New(segs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dr
}

func seg(t *testing.T, d *Drawing, id paths.SegmentID) paths.Segment {
	t.Helper()
	s, ok := d.Segment(id)
	if !ok {
		t.Fatalf("no segment %s", id)
	}
	return s
}

func setMarks(t *testing.T, d *Drawing, mult int, ids ...paths.SegmentID) {
	t.Helper()
	for _, id := range ids {
		if err := d.Mark(id, mult); err != nil {
			t.Fatalf("Mark(%s, %d): %v", id, mult, err)
		}
	}
}

var target1 = 3 * 96 / 25.4

var approx = cmpopts.EquateApprox(0, 1e-9)

const squareD = "M0 0 L10 0 L10 10 L0 10 Z"

// slotD is a rectangle with a notch in its bottom edge: p0_seg_1 and
// p0_seg_3 are the notch sides and p0_seg_2 its floor.
const slotD = "M0 0 L10 0 L10 5 L20 5 L20 0 L30 0 L30 20 L0 20 Z"

func TestParams(t *testing.T) {
	d := drawing(t, squareD)
	if got := d.Params(); got != DefaultParams {
		t.Errorf("Params = %v, want %v", got, DefaultParams)
	}
	for _, tc := range []struct {
		p   Params
		err error
	}{
		{Params{3, 0}, paths.ErrInvalidDPI},
		{Params{3, -1}, paths.ErrInvalidDPI},
		{Params{-1, 96}, paths.ErrNegativeLength},
		{Params{0, 96}, paths.ErrNegativeLength},
	} {
		if err := d.SetParams(tc.p); !errors.Is(err, tc.err) {
			t.Errorf("SetParams(%v) = %v, want %v", tc.p, err, tc.err)
		}
		if got := d.Params(); got != DefaultParams {
			t.Errorf("after refused SetParams(%v), Params = %v, want %v", tc.p, got, DefaultParams)
		}
	}
	p := Params{MaterialThicknessMM: 6, DPI: 72}
	if err := d.SetParams(p); err != nil {
		t.Fatalf("SetParams(%v): %v", p, err)
	}
	if d.Params() != p {
		t.Errorf("Params = %v, want %v", d.Params(), p)
	}
}

func TestNewDuplicate(t *testing.T) {
	segs := []paths.Segment{
		paths.NewSegment("a", paths.Pt(0, 0), paths.Pt(1, 0)),
		paths.NewSegment("a", paths.Pt(1, 0), paths.Pt(2, 0)),
	}
	if _, err := New(segs); !errors.Is(err, ErrDuplicateSegment) {
		t.Errorf("New with duplicate ids: got %v, want %v", err, ErrDuplicateSegment)
	}
}

func TestMarkAndToggle(t *testing.T) {
	d := drawing(t, squareD, "M20 0 C20 5 30 5 30 0 L20 0")
	var got []int
	for i := 0; i < 4; i++ {
		m, err := d.Toggle("p0_seg_0")
		if err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		got = append(got, m)
	}
	if diff := cmp.Diff([]int{1, 2, 0, 1}, got); diff != "" {
		t.Errorf("Toggle cycle mismatch (-want +got):\n%s", diff)
	}
	if s := seg(t, d, "p0_seg_0"); !s.Adjustable || s.Multiplier != 1 {
		t.Errorf("after toggling, segment is %+v", s)
	}
	if diff := cmp.Diff(map[paths.SegmentID]int{"p0_seg_0": 1}, d.Marks()); diff != "" {
		t.Errorf("Marks mismatch (-want +got):\n%s", diff)
	}

	if m, err := d.Toggle("p1_seg_0"); !errors.Is(err, ErrNotAdjustable) || m != 0 {
		t.Errorf("Toggle(curve) = %d, %v, want 0, %v", m, err, ErrNotAdjustable)
	}
	if err := d.Mark("p0_seg_1", 3); !errors.Is(err, ErrInvalidMultiplier) {
		t.Errorf("Mark(3) = %v, want %v", err, ErrInvalidMultiplier)
	}
	if err := d.Mark("nope", 1); !errors.Is(err, ErrUnknownSegment) {
		t.Errorf("Mark(unknown) = %v, want %v", err, ErrUnknownSegment)
	}
	if err := d.Mark("p1_seg_0", 0); err != nil {
		t.Errorf("Mark(curve, 0) = %v, want nil", err)
	}
}

func TestClassify(t *testing.T) {
	d := drawing(t, slotD)
	setMarks(t, d, 1, "p0_seg_1", "p0_seg_3")
	cases := []struct {
		id   paths.SegmentID
		want Kind
	}{
		{"p0_seg_0", SlotEdge},
		{"p0_seg_2", TabConnector},
		{"p0_seg_4", SlotEdge},
		{"p0_seg_5", Perimeter},
		{"p0_seg_6", Perimeter},
		{"p0_seg_7", Perimeter},
	}
	for _, tc := range cases {
		got, err := d.Classify(tc.id)
		if err != nil {
			t.Errorf("Classify(%s): %v", tc.id, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Classify(%s) = %v, want %v", tc.id, got, tc.want)
		}
	}
	if _, err := d.Classify("p0_seg_1"); !errors.Is(err, ErrAdjustable) {
		t.Errorf("Classify(adjustable) = %v, want %v", err, ErrAdjustable)
	}
	if _, err := d.Classify("missing"); !errors.Is(err, ErrUnknownSegment) {
		t.Errorf("Classify(missing) = %v, want %v", err, ErrUnknownSegment)
	}

	// Classification follows the current marks.
	setMarks(t, d, 0, "p0_seg_3")
	if got, _ := d.Classify("p0_seg_2"); got != SlotEdge {
		t.Errorf("after unmarking, Classify(p0_seg_2) = %v, want %v", got, SlotEdge)
	}
}

func TestClassifyCurve(t *testing.T) {
	d := drawing(t, "M0 0 L10 0 C15 0 15 10 10 10 L0 10 Z")
	setMarks(t, d, 1, "p0_seg_0", "p0_seg_2")
	if got, _ := d.Classify("p0_seg_1"); got != Perimeter {
		t.Errorf("Classify(curve) = %v, want %v", got, Perimeter)
	}
	if got, want := Kind(42).String(), "unknown"; got != want {
		t.Errorf("Kind(42).String() = %q, want %q", got, want)
	}
}

func TestIsolatedAdjustment(t *testing.T) {
	d := drawing(t, "M0 0 L20 0")
	setMarks(t, d, 1, "p0_seg_0")
	before := seg(t, d, "p0_seg_0")
	res := d.Apply()
	if res.Adjusted != 1 {
		t.Errorf("Adjusted = %d, want 1", res.Adjusted)
	}
	after := seg(t, d, "p0_seg_0")
	if math.Abs(after.Length()-11.34) >= 0.01 {
		t.Errorf("length = %g, want about 11.34", after.Length())
	}
	if diff := cmp.Diff(target1, after.Length(), approx); diff != "" {
		t.Errorf("length mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before.Start.Midpoint(before.End), after.Start.Midpoint(after.End), approx); diff != "" {
		t.Errorf("midpoint moved (-before +after):\n%s", diff)
	}
	if after.Angle() != before.Angle() {
		t.Errorf("angle changed from %g to %g", before.Angle(), after.Angle())
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestMultiplier(t *testing.T) {
	d := drawing(t, "M0 0 L0 5")
	setMarks(t, d, 2, "p0_seg_0")
	d.Apply()
	if diff := cmp.Diff(2*target1, seg(t, d, "p0_seg_0").Length(), approx); diff != "" {
		t.Errorf("2x length mismatch (-want +got):\n%s", diff)
	}
}

func TestAnchoredAdjustment(t *testing.T) {
	d := drawing(t, slotD)
	setMarks(t, d, 1, "p0_seg_1", "p0_seg_3")
	s1, s3 := seg(t, d, "p0_seg_1"), seg(t, d, "p0_seg_3")

	res := d.Apply()
	if res.Adjusted != 2 || res.Translated != 1 {
		t.Errorf("got %d adjusted, %d translated; want 2, 1", res.Adjusted, res.Translated)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if got := seg(t, d, "p0_seg_1"); got.Start != s1.Start {
		t.Errorf("notch side start moved from %v to %v", s1.Start, got.Start)
	}
	if got := seg(t, d, "p0_seg_3"); got.End != s3.End {
		t.Errorf("notch side end moved from %v to %v", s3.End, got.End)
	}
	for _, id := range []paths.SegmentID{"p0_seg_1", "p0_seg_3"} {
		if diff := cmp.Diff(target1, seg(t, d, id).Length(), approx); diff != "" {
			t.Errorf("%s length mismatch (-want +got):\n%s", id, diff)
		}
	}
	floor := seg(t, d, "p0_seg_2")
	want := [2]paths.Point{paths.Pt(10, target1), paths.Pt(20, target1)}
	if diff := cmp.Diff(want, [2]paths.Point{floor.Start, floor.End}, approx); diff != "" {
		t.Errorf("tab connector mismatch (-want +got):\n%s", diff)
	}
	if err := d.CheckAdjacency(); err != nil {
		t.Errorf("CheckAdjacency: %v", err)
	}
}

func TestPropagationClosesSquare(t *testing.T) {
	d := drawing(t, squareD)
	setMarks(t, d, 1, "p0_seg_0")
	res := d.Apply()

	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrDoubleAnchor) {
		t.Errorf("Warnings = %v, want one %v", res.Warnings, ErrDoubleAnchor)
	}
	if res.Reanchored != 2 {
		t.Errorf("Reanchored = %d, want 2", res.Reanchored)
	}
	e := seg(t, d, "p0_seg_0")
	if !seg(t, d, "p0_seg_3").End.Eq(e.Start, paths.Epsilon) {
		t.Errorf("previous edge doesn't end at %v", e.Start)
	}
	if !seg(t, d, "p0_seg_1").Start.Eq(e.End, paths.Epsilon) {
		t.Errorf("next edge doesn't start at %v", e.End)
	}
	if err := d.CheckAdjacency(); err != nil {
		t.Errorf("CheckAdjacency: %v", err)
	}
	if rep := d.Rebuild(); rep.Shapes != 1 {
		t.Errorf("after adjusting, Rebuild found %d shapes, want 1", rep.Shapes)
	}
}

func TestIdempotent(t *testing.T) {
	d := drawing(t, slotD)
	setMarks(t, d, 1, "p0_seg_1", "p0_seg_3")
	if res := d.Apply(); res.Adjusted != 2 {
		t.Fatalf("first batch adjusted %d, want 2", res.Adjusted)
	}
	before := d.Segments()
	res := d.Apply()
	if res.Adjusted != 0 || res.Translated != 0 || res.Reanchored != 0 {
		t.Errorf("second batch changed something: %+v", res)
	}
	if diff := cmp.Diff(before, d.Segments()); diff != "" {
		t.Errorf("second batch moved segments (-before +after):\n%s", diff)
	}
}

// gaps counts the warnings that report a disconnected endpoint.
func gaps(res *BatchResult) int {
	n := 0
	for _, w := range res.Warnings {
		if errors.Is(w, ErrDisconnected) {
			n++
		}
	}
	return n
}

func TestAdjacentAdjustable(t *testing.T) {
	// Two marked edges meet at a corner. Each keeps its direction
	// and gets its own length, so the corner is left open.
	d := drawing(t, squareD)
	setMarks(t, d, 1, "p0_seg_0", "p0_seg_1")
	before := map[paths.SegmentID]paths.Segment{
		"p0_seg_0": seg(t, d, "p0_seg_0"),
		"p0_seg_1": seg(t, d, "p0_seg_1"),
	}
	res := d.Apply()
	if res.Adjusted != 2 || res.Reanchored != 0 {
		t.Errorf("got %d adjusted, %d re-anchored; want 2, 0", res.Adjusted, res.Reanchored)
	}
	for id, b := range before {
		s := seg(t, d, id)
		if diff := cmp.Diff(target1, s.Length(), approx); diff != "" {
			t.Errorf("%s length mismatch (-want +got):\n%s", id, diff)
		}
		if diff := cmp.Diff(b.Angle(), s.Angle(), approx); diff != "" {
			t.Errorf("%s rotated (-before +after):\n%s", id, diff)
		}
	}
	if got := seg(t, d, "p0_seg_0").Start; got != paths.Pt(0, 0) {
		t.Errorf("anchored corner moved to %v", got)
	}
	if got := seg(t, d, "p0_seg_1").End; got != paths.Pt(10, 10) {
		t.Errorf("anchored corner moved to %v", got)
	}
	if n := gaps(res); n != 2 {
		t.Errorf("got %d disconnection warnings, want 2: %v", n, res.Warnings)
	}
	if err := d.CheckAdjacency(); !errors.Is(err, ErrDisconnected) {
		t.Errorf("CheckAdjacency = %v, want %v", err, ErrDisconnected)
	}

	adjusted := d.Segments()
	res = d.Apply()
	if res.Adjusted != 0 || res.Translated != 0 || res.Reanchored != 0 {
		t.Errorf("second batch changed something: %+v", res)
	}
	if diff := cmp.Diff(adjusted, d.Segments()); diff != "" {
		t.Errorf("second batch moved segments (-before +after):\n%s", diff)
	}
}

func TestTabChain(t *testing.T) {
	// Two tabs standing up from the bottom edge.
	d := drawing(t, "M0 0 L10 0 L10 -5 L20 -5 L20 0 L30 0 L30 -5 L40 -5 L40 0 L50 0 L50 20 L0 20 Z")
	setMarks(t, d, 1, "p0_seg_1", "p0_seg_3", "p0_seg_5", "p0_seg_7")
	lengths := map[paths.SegmentID]float64{}
	for _, id := range []paths.SegmentID{"p0_seg_2", "p0_seg_4", "p0_seg_6"} {
		if k, _ := d.Classify(id); k != TabConnector {
			t.Errorf("Classify(%s) = %v, want %v", id, k, TabConnector)
		}
		lengths[id] = seg(t, d, id).Length()
	}
	res := d.Apply()
	if res.Translated != 3 {
		t.Errorf("Translated = %d, want 3", res.Translated)
	}
	for id, l := range lengths {
		s := seg(t, d, id)
		if diff := cmp.Diff(l, s.Length(), approx); diff != "" {
			t.Errorf("tab connector %s changed length (-before +after):\n%s", id, diff)
		}
		if s.Angle() != 0 {
			t.Errorf("tab connector %s rotated to %g", id, s.Angle())
		}
	}
	// The free tab sides grow about their midpoints, away from the
	// connectors that follow their neighbors.
	for _, g := range [][2]paths.SegmentID{{"p0_seg_2", "p0_seg_3"}, {"p0_seg_6", "p0_seg_7"}} {
		if seg(t, d, g[0]).End.Eq(seg(t, d, g[1]).Start, paths.Epsilon) {
			t.Errorf("%s and %s still meet", g[0], g[1])
		}
	}
	if n := gaps(res); n != 4 {
		t.Errorf("got %d disconnection warnings, want 4: %v", n, res.Warnings)
	}
	if got := seg(t, d, "p0_seg_1").Start; got != paths.Pt(10, 0) {
		t.Errorf("first tab side moved its anchored start to %v", got)
	}
	if got := seg(t, d, "p0_seg_7").End; got != paths.Pt(40, 0) {
		t.Errorf("last tab side moved its anchored end to %v", got)
	}
}

func TestCurvesDontMove(t *testing.T) {
	// The edge is anchored at both ends and grows about its midpoint;
	// the curve stays put, so its start is left behind.
	d := drawing(t, "M0 0 L10 0 C15 0 15 10 10 10 L0 10 Z")
	setMarks(t, d, 1, "p0_seg_0")
	curve := seg(t, d, "p0_seg_1")
	res := d.Apply()
	if diff := cmp.Diff(curve, seg(t, d, "p0_seg_1")); diff != "" {
		t.Errorf("curve moved (-before +after):\n%s", diff)
	}
	if len(res.Warnings) == 0 || !errors.Is(res.Warnings[0], ErrDoubleAnchor) {
		t.Errorf("Warnings = %v, want %v first", res.Warnings, ErrDoubleAnchor)
	}
	if n := gaps(res); n != 2 {
		t.Errorf("got %d disconnection warnings, want 2: %v", n, res.Warnings)
	}
	err := d.CheckAdjacency()
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("CheckAdjacency = %v, want %v", err, ErrDisconnected)
	}
	var se *paths.SegmentError
	if !errors.As(err, &se) || se.ID != "p0_seg_0" {
		t.Errorf("first gap is %v, want one at p0_seg_0", err)
	}
	if !seg(t, d, "p0_seg_3").End.Eq(seg(t, d, "p0_seg_0").Start, paths.Epsilon) {
		t.Errorf("slot edge didn't follow the adjusted start")
	}
}

func TestCheckAdjacency(t *testing.T) {
	d := drawing(t, squareD)
	d.segs[1].Start = paths.Pt(11, 0)
	err := d.CheckAdjacency()
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("CheckAdjacency = %v, want %v", err, ErrDisconnected)
	}
	if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 2 {
		t.Errorf("got %d violations, want 2: %v", n, err)
	}
}
