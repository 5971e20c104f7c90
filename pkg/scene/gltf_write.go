package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ToDocument serializes a Scene into a fresh glTF document: one node and one
// mesh per sub-mesh, all under a single scene. Only positions, normals, the
// first UV channel, and indices are emitted; auxiliary vertex buffers of the
// source document (tangents, colors, skinning data) are not carried over.
func ToDocument(s *Scene) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "MAC-Simplifier"

	for _, m := range s.Meshes {
		positions := make([][3]float32, len(m.Positions))
		for i, p := range m.Positions {
			positions[i] = [3]float32{float32(p.X()), float32(p.Y()), float32(p.Z())}
		}

		attrs := map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
		}

		if m.HasNormals() {
			normals := make([][3]float32, len(m.Normals))
			for i, n := range m.Normals {
				normals[i] = [3]float32{float32(n.X()), float32(n.Y()), float32(n.Z())}
			}
			attrs[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
		}

		if m.HasUV() {
			uvs := make([][2]float32, len(m.UVs))
			for i, uv := range m.UVs {
				uvs[i] = [2]float32{float32(uv.X()), float32(uv.Y())}
			}
			attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uvs)
		}

		indices := make([]uint32, 0, len(m.Faces)*3)
		for _, f := range m.Faces {
			indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: m.Name,
			Primitives: []*gltf.Primitive{{
				Mode:       gltf.PrimitiveTriangles,
				Attributes: attrs,
				Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: m.Name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	return doc
}

// SaveGLTF writes the scene as .gltf (JSON) or .glb (binary) depending on
// the file extension.
func SaveGLTF(s *Scene, path string) error {
	doc := ToDocument(s)

	var err error
	if strings.ToLower(filepath.Ext(path)) == ".glb" {
		err = gltf.SaveBinary(doc, path)
	} else {
		// JSON documents carry their buffer as a data URI.
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("save gltf: %w", err)
	}
	return nil
}
