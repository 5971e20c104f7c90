package simplify

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Magical1-zyz/MAC-Simplifier/pkg/scene"
)

func singleTriangle() *scene.SubMesh {
	return &scene.SubMesh{
		Name:      "tri",
		Positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   []mgl64.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Faces:     [][3]int{{0, 1, 2}},
	}
}

func checkFacesValid(t *testing.T, sc *scene.Scene) {
	t.Helper()
	for mi, m := range sc.Meshes {
		for fi, f := range m.Faces {
			var ps [3]mgl64.Vec3
			for i, v := range f {
				if v < 0 || v >= len(m.Positions) {
					t.Fatalf("mesh %d face %d index %d out of range", mi, fi, v)
				}
				ps[i] = m.Positions[v]
				for _, c := range ps[i] {
					if math.IsNaN(c) || math.IsInf(c, 0) {
						t.Fatalf("mesh %d face %d has non-finite coordinate %v", mi, fi, ps[i])
					}
				}
			}
			if f == ([3]int{0, 0, 0}) && len(m.Positions) == 1 {
				continue // placeholder for a fully collapsed sub-mesh
			}
			area := ps[1].Sub(ps[0]).Cross(ps[2].Sub(ps[0])).Len()
			if area <= 1e-9 {
				t.Errorf("mesh %d face %d is degenerate (area %g)", mi, fi, area)
			}
		}
	}
}

func TestSimplifySingleTriangleRatioZero(t *testing.T) {
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, singleTriangle())

	stats := Simplify(sc, 0.0, DefaultOptions())

	if stats.Collapses != 0 {
		t.Errorf("collapses = %d, want 0", stats.Collapses)
	}
	if got := sc.Meshes[0].TriangleCount(); got != 1 {
		t.Errorf("triangles = %d, want 1", got)
	}
	if got := sc.Meshes[0].VertexCount(); got != 3 {
		t.Errorf("vertices = %d, want 3", got)
	}
	checkFacesValid(t, sc)
}

func TestSimplifySingleTriangleHighRatio(t *testing.T) {
	// The face budget clamps at 4, which already exceeds one triangle:
	// nothing collapses no matter how aggressive the ratio.
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, singleTriangle())

	stats := Simplify(sc, 0.9, DefaultOptions())

	if stats.Collapses != 0 {
		t.Errorf("collapses = %d, want 0", stats.Collapses)
	}
	if got := sc.Meshes[0].TriangleCount(); got != 1 {
		t.Errorf("triangles = %d, want 1", got)
	}
	want := mgl64.Vec3{0, 0, 0}
	if sc.Meshes[0].Positions[0] != want {
		t.Errorf("vertex 0 moved to %v", sc.Meshes[0].Positions[0])
	}
}

func TestSimplifyGridPreservesBoundary(t *testing.T) {
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, gridSquare())

	stats := Simplify(sc, 0.5, DefaultOptions())

	if stats.Collapses == 0 {
		t.Fatal("no collapses on the subdivided square")
	}
	out := sc.Meshes[0].TriangleCount()
	// Budget is 4; boundary collapses remove one real face per counted two,
	// so allow the documented residue.
	if out < 4 || out > 6 {
		t.Errorf("output triangles = %d, want within [4,6]", out)
	}

	// Boundary protection: the simplified square still spans exactly [0,1]^2.
	m := sc.Meshes[0]
	m.CalculateBounds()
	if m.BoundsMin != (mgl64.Vec3{0, 0, 0}) || m.BoundsMax != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("bounds = %v..%v, want (0,0,0)..(1,1,0)", m.BoundsMin, m.BoundsMax)
	}
	checkFacesValid(t, sc)
}

func TestSimplifyCube(t *testing.T) {
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, unitCube())

	stats := Simplify(sc, 0.5, DefaultOptions())

	out := sc.Meshes[0].TriangleCount()
	if out < 4 || out >= 12 {
		t.Errorf("output triangles = %d, want reduced but at least 4", out)
	}
	if stats.BoundaryEdges != 0 {
		t.Errorf("closed cube reported %d boundary edges, want 0", stats.BoundaryEdges)
	}
	checkFacesValid(t, sc)

	// Collapse targets snap to endpoints or near-edge optima; nothing may
	// drift far outside the original box.
	m := sc.Meshes[0]
	m.CalculateBounds()
	for _, c := range []float64{m.BoundsMin.X(), m.BoundsMin.Y(), m.BoundsMin.Z()} {
		if c < -0.51 {
			t.Errorf("bounds min %v drifted far below the cube", m.BoundsMin)
		}
	}
	for _, c := range []float64{m.BoundsMax.X(), m.BoundsMax.Y(), m.BoundsMax.Z()} {
		if c > 1.51 {
			t.Errorf("bounds max %v drifted far above the cube", m.BoundsMax)
		}
	}
}

func TestSimplifyDegenerateInputFace(t *testing.T) {
	// A triangle with a repeated index never contributes geometry: no
	// quadric, no edge candidates, and it is absent from the output.
	sub := singleTriangle()
	sub.Positions = append(sub.Positions, mgl64.Vec3{2, 2, 0})
	sub.Normals = append(sub.Normals, mgl64.Vec3{0, 0, 1})
	sub.UVs = append(sub.UVs, mgl64.Vec2{0, 0})
	sub.Faces = append(sub.Faces, [3]int{3, 3, 0})

	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, sub)

	stats := Simplify(sc, 0.0, DefaultOptions())

	if stats.EdgeCandidates != 3 {
		t.Errorf("edge candidates = %d, want 3 (degenerate face excluded)", stats.EdgeCandidates)
	}
	if got := sc.Meshes[0].TriangleCount(); got != 1 {
		t.Errorf("output triangles = %d, want 1", got)
	}
	checkFacesValid(t, sc)
}

func TestSimplifyEmptyScene(t *testing.T) {
	sc := scene.NewScene("empty")
	sub := &scene.SubMesh{Positions: []mgl64.Vec3{{1, 2, 3}}}
	sc.Meshes = append(sc.Meshes, sub)

	stats := Simplify(sc, 0.5, DefaultOptions())

	if stats.InputFaces != 0 {
		t.Errorf("input faces = %d, want 0", stats.InputFaces)
	}
	// No mutation on empty input.
	if len(sub.Positions) != 1 || sub.Positions[0] != (mgl64.Vec3{1, 2, 3}) {
		t.Error("empty input was mutated")
	}
}

func TestSimplifyWritebackPlaceholder(t *testing.T) {
	// A sub-mesh whose only face has zero area produces no surviving
	// geometry; the writeback emits the placeholder vertex and face so
	// strict serializers still accept the sub-mesh.
	collapsed := &scene.SubMesh{
		Name:      "flatline",
		Positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		Faces:     [][3]int{{0, 1, 2}},
	}
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, singleTriangle(), collapsed)

	Simplify(sc, 0.0, DefaultOptions())

	out := sc.Meshes[1]
	if out.VertexCount() != 1 {
		t.Fatalf("placeholder vertices = %d, want 1", out.VertexCount())
	}
	if len(out.Faces) != 1 || out.Faces[0] != ([3]int{0, 0, 0}) {
		t.Errorf("placeholder faces = %v, want [[0 0 0]]", out.Faces)
	}
	if out.Positions[0] != (mgl64.Vec3{}) {
		t.Errorf("placeholder position = %v, want origin", out.Positions[0])
	}
}

func TestSimplifyMultiSubMeshWriteback(t *testing.T) {
	// Two coincident squares weld into one topology but write back as two
	// sub-meshes with their own buffers.
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, unitSquare(), unitSquare())

	stats := Simplify(sc, 0.0, DefaultOptions())

	if stats.WeldedVertices != 4 {
		t.Errorf("welded vertices = %d, want 4", stats.WeldedVertices)
	}
	for mi, m := range sc.Meshes {
		if m.TriangleCount() != 2 {
			t.Errorf("mesh %d triangles = %d, want 2", mi, m.TriangleCount())
		}
		if m.VertexCount() != 4 {
			t.Errorf("mesh %d vertices = %d, want 4", mi, m.VertexCount())
		}
	}
	checkFacesValid(t, sc)
}

func TestSimplifyFaceBudgetProperty(t *testing.T) {
	ratios := []float64{0, 0.25, 0.5, 0.75, 1}
	for _, ratio := range ratios {
		sc := scene.NewScene("test")
		sc.Meshes = append(sc.Meshes, gridSquare())

		stats := Simplify(sc, ratio, DefaultOptions())

		// Counted faces respect the budget; real output may exceed it by the
		// boundary residue of one face per collapse.
		budget := targetFaces(stats.InputFaces, ratio) + stats.Collapses
		if stats.OutputFaces > budget {
			t.Errorf("ratio %g: output faces = %d exceeds budget %d", ratio, stats.OutputFaces, budget)
		}
		checkFacesValid(t, sc)
	}
}

// unitCube builds a 12-triangle axis-aligned unit cube.
func unitCube() *scene.SubMesh {
	sub := &scene.SubMesh{Name: "cube"}
	for _, z := range []float64{0, 1} {
		for _, y := range []float64{0, 1} {
			for _, x := range []float64{0, 1} {
				sub.Positions = append(sub.Positions, mgl64.Vec3{x, y, z})
			}
		}
	}
	// Vertex index = x + 2y + 4z; two triangles per cube face.
	quads := [][4]int{
		{0, 1, 3, 2}, // z=0
		{4, 6, 7, 5}, // z=1
		{0, 4, 5, 1}, // y=0
		{2, 3, 7, 6}, // y=1
		{0, 2, 6, 4}, // x=0
		{1, 5, 7, 3}, // x=1
	}
	for _, q := range quads {
		sub.Faces = append(sub.Faces, [3]int{q[0], q[1], q[2]}, [3]int{q[0], q[2], q[3]})
	}
	return sub
}
