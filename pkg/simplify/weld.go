package simplify

import "math"

// weldKey is a position quantized to multiples of 1/WeldScale. Corners that
// round to the same key are the same topological vertex, regardless of which
// sub-mesh they came from.
type weldKey struct {
	X, Y, Z int64
}

// weld reconstructs watertight adjacency across sub-meshes: loaders split
// contiguous surfaces into distinct vertex records (per sub-mesh, per
// material), which breaks the adjacency the collapse engine needs. Welding
// by quantized position produces the unique-vertex set and the topology-only
// index list the engine consumes.
func (s *simplifier) weld() {
	scale := s.opts.WeldScale
	if scale <= 0 {
		scale = DefaultOptions().WeldScale
	}

	byKey := make(map[weldKey]int, len(s.corners))
	for i := range s.corners {
		p := s.corners[i].Position
		key := weldKey{
			X: int64(math.Round(p.X() * scale)),
			Y: int64(math.Round(p.Y() * scale)),
			Z: int64(math.Round(p.Z() * scale)),
		}
		id, ok := byKey[key]
		if !ok {
			id = len(s.uniques)
			byKey[key] = id
			s.uniques = append(s.uniques, uniqueVertex{Position: p})
		}
		s.corners[i].Unique = id
		s.uniques[id].Corners = append(s.uniques[id].Corners, i)
	}

	s.welded = make([][3]int, len(s.faces))
	for i, f := range s.faces {
		s.welded[i] = [3]int{
			s.corners[f[0]].Unique,
			s.corners[f[1]].Unique,
			s.corners[f[2]].Unique,
		}
	}

	s.parent = make([]int, len(s.uniques))
	for i := range s.parent {
		s.parent[i] = i
	}
}
