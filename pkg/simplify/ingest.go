package simplify

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Magical1-zyz/MAC-Simplifier/pkg/scene"
)

// defaultNormal substitutes for missing per-vertex normals.
var defaultNormal = mgl64.Vec3{0, 1, 0}

// ingest flattens the scene into the global corner and face arrays. Each
// sub-mesh's vertices are appended with a running offset and its faces are
// shifted accordingly; a subMeshRef records the run for writeback.
func (s *simplifier) ingest(sc *scene.Scene) {
	for _, m := range sc.Meshes {
		base := len(s.corners)
		hasN, hasUV := m.HasNormals(), m.HasUV()

		for i, p := range m.Positions {
			c := corner{Position: p, Normal: defaultNormal}
			if hasN {
				c.Normal = m.Normals[i]
			}
			if hasUV {
				c.UV = m.UVs[i]
			}
			s.corners = append(s.corners, c)
		}

		ref := subMeshRef{
			Mesh:       m,
			FaceStart:  len(s.faces),
			BaseCorner: base,
		}
		for _, f := range m.Faces {
			s.faces = append(s.faces, [3]int{base + f[0], base + f[1], base + f[2]})
		}
		ref.FaceCount = len(s.faces) - ref.FaceStart
		s.refs = append(s.refs, ref)
	}
	s.faceCount = len(s.faces)
}
