package simplify

import (
	"math"

	"github.com/Magical1-zyz/MAC-Simplifier/pkg/qem"
)

// edgeKey is an unordered pair of unique vertex ids, lo < hi.
type edgeKey struct {
	Lo, Hi int
}

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// assembleQuadrics accumulates face-plane quadrics onto the unique vertices
// and anchors boundary edges with high-weight virtual planes. Returns the
// number of protected boundary edges.
func (s *simplifier) assembleQuadrics() int {
	if s.opts.AttributeQuadrics {
		s.addAttributePenalties()
	}

	edgeCount := make(map[edgeKey]int)

	for _, w := range s.welded {
		i0, i1, i2 := w[0], w[1], w[2]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		p0 := s.uniques[i0].Position
		p1 := s.uniques[i1].Position
		p2 := s.uniques[i2].Position

		cross := p1.Sub(p0).Cross(p2.Sub(p0))
		if cross.Len() == 0 {
			continue
		}
		n := cross.Normalize()
		d := -n.Dot(p0)

		k := qem.FromPlane(n.X(), n.Y(), n.Z(), d).Scale(s.opts.GeoWeight)
		s.uniques[i0].Q = s.uniques[i0].Q.Add(k)
		s.uniques[i1].Q = s.uniques[i1].Q.Add(k)
		s.uniques[i2].Q = s.uniques[i2].Q.Add(k)

		edgeCount[makeEdgeKey(i0, i1)]++
		edgeCount[makeEdgeKey(i1, i2)]++
		edgeCount[makeEdgeKey(i2, i0)]++
	}

	return s.protectBoundaries(edgeCount)
}

// addAttributePenalties folds the normal and UV weights into every unique
// vertex as positional regularizers. The UV weight is adapted to the global
// UV span so meshes with tiled coordinates are not over-penalized.
func (s *simplifier) addAttributePenalties() {
	uMin, uMax := math.Inf(1), math.Inf(-1)
	vMin, vMax := math.Inf(1), math.Inf(-1)
	for i := range s.corners {
		uv := s.corners[i].UV
		uMin = min(uMin, uv.X())
		uMax = max(uMax, uv.X())
		vMin = min(vMin, uv.Y())
		vMax = max(vMax, uv.Y())
	}
	uvSpan := max(uMax-uMin, vMax-vMin)
	scale := 1.0
	if uvSpan > 1e-6 {
		scale = 1.0 / uvSpan
	}
	wUV := s.opts.UVWeight * scale
	s.log.Infow("adaptive uv weight", "weight", wUV, "span", uvSpan)

	penalty := qem.AttributePenalty(s.opts.NormWeight).Add(qem.AttributePenalty(wUV))
	for i := range s.uniques {
		s.uniques[i].Q = s.uniques[i].Q.Add(penalty)
	}
}

// protectBoundaries adds a virtual plane quadric to both endpoints of every
// edge incident to exactly one face. The plane passes through the edge,
// perpendicular to the adjacent face, so any motion pulling the boundary
// into the surface's tangent plane is heavily penalized.
func (s *simplifier) protectBoundaries(edgeCount map[edgeKey]int) int {
	weight := s.opts.BoundaryWeight * 10
	protected := 0

	for _, w := range s.welded {
		i0, i1, i2 := w[0], w[1], w[2]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		p0 := s.uniques[i0].Position
		p1 := s.uniques[i1].Position
		p2 := s.uniques[i2].Position
		cross := p1.Sub(p0).Cross(p2.Sub(p0))
		if cross.Len() == 0 {
			continue
		}
		n := cross.Normalize()

		for _, e := range [3][2]int{{i0, i1}, {i1, i2}, {i2, i0}} {
			if edgeCount[makeEdgeKey(e[0], e[1])] != 1 {
				continue
			}
			pu := s.uniques[e[0]].Position
			pv := s.uniques[e[1]].Position
			nb := pv.Sub(pu).Cross(n)
			if nb.Len() == 0 {
				continue
			}
			nb = nb.Normalize()
			d := -nb.Dot(pu)

			k := qem.FromPlane(nb.X(), nb.Y(), nb.Z(), d).Scale(weight)
			s.uniques[e[0]].Q = s.uniques[e[0]].Q.Add(k)
			s.uniques[e[1]].Q = s.uniques[e[1]].Q.Add(k)
			protected++
		}
	}
	return protected
}
