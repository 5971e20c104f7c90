package scene

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const asciiSTL = `solid tri
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
facet normal 0 0 1
  outer loop
    vertex 1 0 0
    vertex 1 1 0
    vertex 0 1 0
  endloop
endfacet
endsolid tri
`

func TestReadASCIISTL(t *testing.T) {
	sc, err := ReadSTL([]byte(asciiSTL), "tri.stl")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	m := sc.Meshes[0]
	if m.Name != "tri" {
		t.Errorf("name = %q, want tri", m.Name)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2", m.TriangleCount())
	}
	// Shared vertices between facets are deduplicated.
	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4", m.VertexCount())
	}
	if !m.HasNormals() {
		t.Error("facet normals not propagated to vertices")
	}
}

func TestReadSTLMalformed(t *testing.T) {
	tests := []struct {
		name string
		stl  string
	}{
		{"vertex outside facet", "solid s\nvertex 0 0 0\nendsolid\n"},
		{"short vertex", "solid s\nfacet normal 0 0 1\nouter loop\nvertex 0 0\nendloop\nendfacet\nendsolid\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSTL([]byte(tt.stl), "bad.stl"); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}

func TestSTLBinaryRoundTrip(t *testing.T) {
	sc, err := ReadSTL([]byte(asciiSTL), "tri.stl")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.stl")
	if err := SaveSTL(sc, path); err != nil {
		t.Fatalf("SaveSTL: %v", err)
	}

	back, err := LoadSTL(path)
	if err != nil {
		t.Fatalf("LoadSTL: %v", err)
	}
	m := back.Meshes[0]
	if m.TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2", m.TriangleCount())
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4 after dedup", m.VertexCount())
	}

	// All original positions survive the float32 round trip exactly (they
	// are small integers).
	wantPositions := map[mgl64.Vec3]bool{
		{0, 0, 0}: true, {1, 0, 0}: true, {0, 1, 0}: true, {1, 1, 0}: true,
	}
	for _, p := range m.Positions {
		if !wantPositions[p] {
			t.Errorf("unexpected position %v", p)
		}
	}
}

func TestIsBinarySTL(t *testing.T) {
	if isBinarySTL([]byte(asciiSTL)) {
		t.Error("ASCII STL detected as binary")
	}
	if isBinarySTL([]byte("solid")) {
		t.Error("short data detected as binary")
	}
}
