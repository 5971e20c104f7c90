package simplify

import "github.com/go-gl/mathgl/mgl64"

// writeback regenerates each sub-mesh's vertex and index buffers from the
// surviving faces of the collapsed global mesh. Corner positions have
// already been rewritten to their welded group's collapsed position, so
// faces whose area vanished are dropped and the remaining corners are
// interned into fresh per-sub-mesh buffers. Returns the total number of
// surviving faces.
func (s *simplifier) writeback() int {
	total := 0
	for _, ref := range s.refs {
		total += s.writebackSubMesh(ref)
	}
	return total
}

func (s *simplifier) writebackSubMesh(ref subMeshRef) int {
	hasN, hasUV := ref.Mesh.HasNormals(), ref.Mesh.HasUV()

	var positions []mgl64.Vec3
	var normals []mgl64.Vec3
	var uvs []mgl64.Vec2
	var faces [][3]int
	local := make(map[int]int)

	intern := func(ci int) int {
		if idx, ok := local[ci]; ok {
			return idx
		}
		idx := len(positions)
		local[ci] = idx
		c := s.corners[ci]
		positions = append(positions, c.Position)
		if hasN {
			normals = append(normals, c.Normal)
		}
		if hasUV {
			uvs = append(uvs, c.UV)
		}
		return idx
	}

	for fi := ref.FaceStart; fi < ref.FaceStart+ref.FaceCount; fi++ {
		f := s.faces[fi]
		p0 := s.corners[f[0]].Position
		p1 := s.corners[f[1]].Position
		p2 := s.corners[f[2]].Position
		if p1.Sub(p0).Cross(p2.Sub(p0)).Len() < degenerateAreaEps {
			continue
		}
		faces = append(faces, [3]int{intern(f[0]), intern(f[1]), intern(f[2])})
	}

	survived := len(faces)
	if len(positions) == 0 {
		// The sub-mesh collapsed entirely. Emit one dummy vertex and one
		// degenerate face so serializers that reject empty attribute arrays
		// still accept the result.
		positions = append(positions, mgl64.Vec3{})
		if hasN {
			normals = append(normals, mgl64.Vec3{0, 1, 0})
		}
		if hasUV {
			uvs = append(uvs, mgl64.Vec2{})
		}
		faces = append(faces, [3]int{0, 0, 0})
		s.log.Debugw("sub-mesh collapsed entirely, emitting placeholder", "mesh", ref.Mesh.Name)
	}

	ref.Mesh.ReplaceGeometry(positions, normals, uvs, faces)
	return survived
}
