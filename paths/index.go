package paths

import (
	"math"
	"sort"
)

// An Endpoint is one end of a segment in a slice of segments.
type Endpoint struct {
	Seg int  // index of the segment
	End bool // false for the start point, true for the end point
	P   Point
}

type eindexNode struct {
	e           Endpoint
	yaxis       bool
	left, right interface{}
}

type eindexLeaf struct {
	e []Endpoint
}

// An EndpointIndex is a kd-tree over segment endpoints.
type EndpointIndex struct {
	node interface{}
}

const leafThreshold = 20

func coord(p Point, yaxis bool) float64 {
	if yaxis {
		return p.Y
	}
	return p.X
}

func buildIndex(es []Endpoint, yaxis bool) interface{} {
	if len(es) == 0 {
		return nil
	}
	if len(es) < leafThreshold {
		return &eindexLeaf{e: append([]Endpoint(nil), es...)}
	}
	sort.Slice(es, func(i, j int) bool {
		return coord(es[i].P, yaxis) < coord(es[j].P, yaxis)
	})
	k := len(es) / 2
	return &eindexNode{
		e:     es[k],
		yaxis: yaxis,
		left:  buildIndex(es[:k], !yaxis),
		right: buildIndex(es[k+1:], !yaxis),
	}
}

// IndexEndpoints builds an index over both endpoints of every
// non-degenerate segment in segs.
func IndexEndpoints(segs []Segment) *EndpointIndex {
	var es []Endpoint
	for i := range segs {
		if segs[i].Degenerate() {
			continue
		}
		es = append(es,
			Endpoint{Seg: i, P: segs[i].Start},
			Endpoint{Seg: i, End: true, P: segs[i].End})
	}
	return &EndpointIndex{node: buildIndex(es, false)}
}

func distToBounds(p Point, b Bounds) float64 {
	q := Point{
		X: math.Min(math.Max(p.X, b.Min.X), b.Max.X),
		Y: math.Min(math.Max(p.Y, b.Min.Y), b.Max.Y),
	}
	return p.Distance(q)
}

func findRadius(ni interface{}, p Point, r float64, bounds Bounds) []Endpoint {
	if leaf, ok := ni.(*eindexLeaf); ok {
		var cand []Endpoint
		for _, e := range leaf.e {
			if e.P.Distance(p) <= r {
				cand = append(cand, e)
			}
		}
		return cand
	}
	n, ok := ni.(*eindexNode)
	if !ok || n == nil {
		return nil
	}
	var cand []Endpoint
	if n.e.P.Distance(p) <= r {
		cand = append(cand, n.e)
	}

	pc, nc := coord(p, n.yaxis), coord(n.e.P, n.yaxis)
	lb, rb := bounds, bounds
	if n.yaxis {
		lb.Max.Y, rb.Min.Y = nc, nc
	} else {
		lb.Max.X, rb.Min.X = nc, nc
	}
	near, far := n.left, n.right
	nearB, farB := lb, rb
	if pc > nc {
		near, far = far, near
		nearB, farB = farB, nearB
	}
	cand = append(cand, findRadius(near, p, r, nearB)...)
	if math.Abs(pc-nc) <= r && distToBounds(p, farB) <= r {
		cand = append(cand, findRadius(far, p, r, farB)...)
	}
	return cand
}

// Within returns the endpoints at distance at most r from p, ordered
// by segment index and then start before end.
func (ix *EndpointIndex) Within(p Point, r float64) []Endpoint {
	inf := math.Inf(1)
	bs := Bounds{Min: Point{-inf, -inf}, Max: Point{inf, inf}}
	cand := findRadius(ix.node, p, r, bs)
	sort.Slice(cand, func(i, j int) bool {
		if cand[i].Seg != cand[j].Seg {
			return cand[i].Seg < cand[j].Seg
		}
		return !cand[i].End && cand[j].End
	})
	return cand
}
