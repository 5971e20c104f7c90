package simplify

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl64"
)

// edgeCandidate is a collapse candidate for the unordered vertex pair
// (V1,V2), V1 < V2. Candidates are computed once at heap build time and
// consumed at most once; entries invalidated by earlier collapses are
// discarded lazily on pop.
type edgeCandidate struct {
	V1, V2 int
	Cost   float64
	Target mgl64.Vec3
}

// edgeHeap is a value-typed min-heap of candidates keyed by cost.
type edgeHeap []edgeCandidate

func (h edgeHeap) Len() int           { return len(h) }
func (h edgeHeap) Less(i, j int) bool { return h[i].Cost < h[j].Cost }
func (h edgeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *edgeHeap) Push(x any)        { *h = append(*h, x.(edgeCandidate)) }

func (h *edgeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// collapse runs the decimation loop until the face budget is met or the
// heap runs dry. Returns the number of edge candidates and the number of
// successful collapses.
func (s *simplifier) collapse(target int) (candidates, collapses int) {
	s.buildIncidence()
	h := s.buildHeap()
	candidates = h.Len()
	s.log.Infow("collapse started", "edges", candidates, "faces", s.faceCount, "target_faces", target)

	for s.faceCount > target && h.Len() > 0 {
		e := heap.Pop(h).(edgeCandidate)

		r1 := s.find(e.V1)
		r2 := s.find(e.V2)
		if r1 == r2 || s.uniques[r1].Removed || s.uniques[r2].Removed {
			continue
		}

		if s.wouldFlip(r1, r2, e.Target) {
			continue
		}

		s.uniques[r1].Position = e.Target
		s.uniques[r1].Q = s.uniques[r1].Q.Add(s.uniques[r2].Q)
		s.uniques[r2].Removed = true
		s.parent[r2] = r1

		// Merge incidence lists for the flip guard; the cap bounds
		// worst-case growth on dense-valence vertices.
		if len(s.uniques[r1].FaceIDs) < incidenceCap {
			s.uniques[r1].FaceIDs = append(s.uniques[r1].FaceIDs, s.uniques[r2].FaceIDs...)
		}

		// An interior collapse removes exactly two faces; boundary collapses
		// remove one, so the budget check is approximate (see writeback).
		s.faceCount -= 2
		collapses++
	}
	return candidates, collapses
}

// buildIncidence caches, per unique vertex, the ids of the non-degenerate
// faces referencing it. Only the flip guard consults these lists.
func (s *simplifier) buildIncidence() {
	for fi, w := range s.welded {
		if w[0] == w[1] || w[1] == w[2] || w[0] == w[2] {
			continue
		}
		s.uniques[w[0]].FaceIDs = append(s.uniques[w[0]].FaceIDs, fi)
		s.uniques[w[1]].FaceIDs = append(s.uniques[w[1]].FaceIDs, fi)
		s.uniques[w[2]].FaceIDs = append(s.uniques[w[2]].FaceIDs, fi)
	}
}

// buildHeap enumerates the unique undirected edges of the welded topology
// and computes one candidate per edge.
func (s *simplifier) buildHeap() *edgeHeap {
	seen := make(map[edgeKey]struct{})
	h := make(edgeHeap, 0, len(s.welded)*3/2)

	for _, w := range s.welded {
		if w[0] == w[1] || w[1] == w[2] || w[0] == w[2] {
			continue
		}
		for _, pair := range [3][2]int{{w[0], w[1]}, {w[1], w[2]}, {w[2], w[0]}} {
			key := makeEdgeKey(pair[0], pair[1])
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			cost, target := s.edgeCost(key.Lo, key.Hi)
			h = append(h, edgeCandidate{V1: key.Lo, V2: key.Hi, Cost: cost, Target: target})
		}
	}

	heap.Init(&h)
	return &h
}

// edgeCost evaluates the combined quadric at both endpoints and at the
// analytic optimum. The optimum is adopted only when it beats the best
// endpoint by the acceptance factor and stays near the edge; otherwise the
// collapse snaps to the cheaper endpoint, which avoids the visual artifacts
// of distant optimal points on near-singular systems.
func (s *simplifier) edgeCost(u, v int) (float64, mgl64.Vec3) {
	pu := s.uniques[u].Position
	pv := s.uniques[v].Position
	qbar := s.uniques[u].Q.Add(s.uniques[v].Q)

	cu := clampCost(qbar.Evaluate(pu))
	cv := clampCost(qbar.Evaluate(pv))

	cost, target := cu, pu
	if cv < cu {
		cost, target = cv, pv
	}

	if opt, ok := qbar.Optimize(); ok {
		co := clampCost(qbar.Evaluate(opt))
		if co < costAcceptFactor*cost && opt.Sub(pu).Len() < optimumDistanceFactor*pv.Sub(pu).Len() {
			cost, target = co, opt
		}
	}
	return cost, target
}

// clampCost zeroes the tiny negatives floating-point evaluation can produce.
func clampCost(c float64) float64 {
	if c < 0 {
		return 0
	}
	return c
}

// wouldFlip tests every face incident to either collapse endpoint: if moving
// the endpoints to target reverses (or nearly zeroes) any face normal, the
// collapse would fold the surface over itself and must be abandoned.
func (s *simplifier) wouldFlip(r1, r2 int, target mgl64.Vec3) bool {
	for _, root := range [2]int{r1, r2} {
		for _, fi := range s.uniques[root].FaceIDs {
			w := s.welded[fi]
			a, b, c := s.find(w[0]), s.find(w[1]), s.find(w[2])

			// Faces spanning the collapsing edge disappear with it.
			hasR1 := a == r1 || b == r1 || c == r1
			hasR2 := a == r2 || b == r2 || c == r2
			if hasR1 && hasR2 {
				continue
			}
			// Already degenerate after earlier merges.
			if a == b || b == c || a == c {
				continue
			}

			pa := s.uniques[a].Position
			pb := s.uniques[b].Position
			pc := s.uniques[c].Position
			oldNormal := pb.Sub(pa).Cross(pc.Sub(pa))
			if oldNormal.Len() == 0 {
				continue
			}

			na, nb, nc := pa, pb, pc
			switch {
			case a == r1 || a == r2:
				na = target
			case b == r1 || b == r2:
				nb = target
			case c == r1 || c == r2:
				nc = target
			}
			newNormal := nb.Sub(na).Cross(nc.Sub(na))
			if newNormal.Len() < 1e-12 {
				return true
			}
			if oldNormal.Normalize().Dot(newNormal.Normalize()) < flipCosineThreshold {
				return true
			}
		}
	}
	return false
}
