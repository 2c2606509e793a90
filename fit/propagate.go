package fit

import "github.com/paulhankin/tabfit/paths"

// A frame is one segment whose moved endpoints are being pushed to its
// neighbors. next is the endpoint to handle next: 0 start, 1 end, 2 done.
type frame struct {
	idx              int
	oldStart, oldEnd paths.Point
	next             int
}

// propagate restores connectivity around the segment of a, whose
// endpoints moved from a.oldStart and a.oldEnd. For each endpoint, an
// unvisited neighbor is fixed up by kind:
//
//   - adjustable: its endpoint that lies at the old point is moved onto
//     the new one; an adjustable neighbor that was itself resized away
//     from the old point is left alone, and the gap shows up in
//     disconnected;
//   - tab connector: it is translated by the endpoint's delta, and its
//     own neighbors are fixed up in turn before carrying on;
//   - otherwise: its shared endpoint is re-anchored to the moved point.
//
// Curves never move. A segment is handled at most once per visited set.
func (d *Drawing) propagate(a adjustment, visited []bool, res *BatchResult) {
	if visited[a.idx] {
		return
	}
	visited[a.idx] = true
	stack := []frame{{idx: a.idx, oldStart: a.oldStart, oldEnd: a.oldEnd}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next == 2 {
			stack = stack[:len(stack)-1]
			continue
		}
		s := &d.segs[f.idx]
		atStart := f.next == 0
		nid, old, moved := s.Adjacent.Start, f.oldStart, s.Start
		if !atStart {
			nid, old, moved = s.Adjacent.End, f.oldEnd, s.End
		}
		f.next++

		j := d.neighbor(nid)
		if j < 0 || visited[j] {
			continue
		}
		n := &d.segs[j]
		switch {
		case n.IsCurve():
			continue
		case !n.Adjustable && d.classify(j) == TabConnector:
			oldStart, oldEnd := n.Start, n.End
			if delta := moved.Sub(old); delta != (paths.Vec2{}) {
				n.Translate(delta)
				res.Translated++
				d.log.Debug("translated tab connector", "segment", n.ID, "from", s.ID, "delta", delta)
			}
			visited[j] = true
			// f is invalid after this append.
			stack = append(stack, frame{idx: j, oldStart: oldStart, oldEnd: oldEnd})
		case moved == old:
			continue
		default:
			if n.Reanchor(old, moved, d.eps) {
				res.Reanchored++
				d.log.Debug("re-anchored segment", "segment", n.ID, "from", s.ID)
			}
		}
	}
}
