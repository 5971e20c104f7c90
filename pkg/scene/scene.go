// Package scene provides the loader-independent triangle-mesh model consumed
// and mutated by the simplifier: a scene is a flat list of sub-meshes, each a
// plain vertex/index soup with optional per-vertex normals and a first UV
// channel. Format readers (glTF, OBJ, STL) produce scenes; writers serialize
// them back.
package scene

import "github.com/go-gl/mathgl/mgl64"

// Scene is a flattened collection of triangle sub-meshes.
type Scene struct {
	Name   string
	Meshes []*SubMesh
}

// SubMesh is one triangulated primitive. Positions are always present;
// Normals and UVs are either empty or exactly VertexCount long.
type SubMesh struct {
	Name      string
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	UVs       []mgl64.Vec2
	Faces     [][3]int

	// Bounding box (calculated on load)
	BoundsMin mgl64.Vec3
	BoundsMax mgl64.Vec3
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	return &Scene{Name: name}
}

// TriangleCount returns the total number of triangles across all sub-meshes.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Faces)
	}
	return n
}

// VertexCount returns the total number of vertex records across all sub-meshes.
func (s *Scene) VertexCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Positions)
	}
	return n
}

// Bounds returns the axis-aligned bounding box of the whole scene.
func (s *Scene) Bounds() (min, max mgl64.Vec3) {
	first := true
	for _, m := range s.Meshes {
		if len(m.Positions) == 0 {
			continue
		}
		m.CalculateBounds()
		if first {
			min, max = m.BoundsMin, m.BoundsMax
			first = false
			continue
		}
		min = vecMin(min, m.BoundsMin)
		max = vecMax(max, m.BoundsMax)
	}
	return min, max
}

// VertexCount returns the number of vertices.
func (m *SubMesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *SubMesh) TriangleCount() int {
	return len(m.Faces)
}

// HasNormals reports whether the sub-mesh carries per-vertex normals.
func (m *SubMesh) HasNormals() bool {
	return len(m.Normals) == len(m.Positions) && len(m.Normals) > 0
}

// HasUV reports whether the sub-mesh carries a first UV channel.
func (m *SubMesh) HasUV() bool {
	return len(m.UVs) == len(m.Positions) && len(m.UVs) > 0
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *SubMesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}
	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = vecMin(m.BoundsMin, p)
		m.BoundsMax = vecMax(m.BoundsMax, p)
	}
}

// Center returns the center of the bounding box.
func (m *SubMesh) Center() mgl64.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Mul(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *SubMesh) Size() mgl64.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateSmoothNormals computes averaged per-vertex normals. Used when a
// format arrives without normals and the caller wants shaded output anyway.
func (m *SubMesh) CalculateSmoothNormals() {
	m.Normals = make([]mgl64.Vec3, len(m.Positions))

	// Accumulate area-weighted face normals per vertex
	for _, f := range m.Faces {
		v0 := m.Positions[f[0]]
		v1 := m.Positions[f[1]]
		v2 := m.Positions[f[2]]
		n := v1.Sub(v0).Cross(v2.Sub(v0)) // don't normalize yet
		m.Normals[f[0]] = m.Normals[f[0]].Add(n)
		m.Normals[f[1]] = m.Normals[f[1]].Add(n)
		m.Normals[f[2]] = m.Normals[f[2]].Add(n)
	}

	for i, n := range m.Normals {
		if n.Len() > 0 {
			m.Normals[i] = n.Normalize()
		} else {
			m.Normals[i] = mgl64.Vec3{0, 1, 0}
		}
	}
}

// RemoveDegenerateFaces removes faces with repeated indices or near-zero
// area. Returns the number of faces removed.
func (m *SubMesh) RemoveDegenerateFaces() int {
	const minArea = 1e-10
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		v0 := m.Positions[f[0]]
		v1 := m.Positions[f[1]]
		v2 := m.Positions[f[2]]
		area := v1.Sub(v0).Cross(v2.Sub(v0)).Len() * 0.5
		if area > minArea {
			kept = append(kept, f)
		}
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveUnreferencedVertices removes vertices not referenced by any face,
// compacting the attribute arrays and remapping face indices.
func (m *SubMesh) RemoveUnreferencedVertices() {
	if len(m.Faces) == 0 || len(m.Positions) == 0 {
		return
	}

	referenced := make([]bool, len(m.Positions))
	for _, f := range m.Faces {
		referenced[f[0]] = true
		referenced[f[1]] = true
		referenced[f[2]] = true
	}

	newIndex := make([]int, len(m.Positions))
	newPositions := make([]mgl64.Vec3, 0, len(m.Positions))
	var newNormals []mgl64.Vec3
	var newUVs []mgl64.Vec2
	hasN, hasUV := m.HasNormals(), m.HasUV()

	for i := range m.Positions {
		if !referenced[i] {
			continue
		}
		newIndex[i] = len(newPositions)
		newPositions = append(newPositions, m.Positions[i])
		if hasN {
			newNormals = append(newNormals, m.Normals[i])
		}
		if hasUV {
			newUVs = append(newUVs, m.UVs[i])
		}
	}

	for i := range m.Faces {
		m.Faces[i][0] = newIndex[m.Faces[i][0]]
		m.Faces[i][1] = newIndex[m.Faces[i][1]]
		m.Faces[i][2] = newIndex[m.Faces[i][2]]
	}

	m.Positions = newPositions
	m.Normals = newNormals
	m.UVs = newUVs
}

// ReplaceGeometry swaps in a freshly built vertex/index set wholesale. Any
// auxiliary per-vertex buffers a format reader might have attached are gone
// after this; the simplifier does not preserve them.
func (m *SubMesh) ReplaceGeometry(positions []mgl64.Vec3, normals []mgl64.Vec3, uvs []mgl64.Vec2, faces [][3]int) {
	m.Positions = positions
	m.Normals = normals
	m.UVs = uvs
	m.Faces = faces
	m.CalculateBounds()
}

func vecMin(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())}
}

func vecMax(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())}
}
