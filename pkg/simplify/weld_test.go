package simplify

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Magical1-zyz/MAC-Simplifier/pkg/scene"
)

func newTestSimplifier(sc *scene.Scene) *simplifier {
	s := &simplifier{opts: DefaultOptions(), log: zap.NewNop().Sugar()}
	s.ingest(sc)
	return s
}

// unitSquare builds a 2-triangle unit square in the z=0 plane.
func unitSquare() *scene.SubMesh {
	return &scene.SubMesh{
		Name: "square",
		Positions: []mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

func TestWeldMergesCoincidentSubMeshes(t *testing.T) {
	// Two independently loaded copies of the same square at identical
	// coordinates: welding must reconstruct the shared topology.
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, unitSquare(), unitSquare())

	s := newTestSimplifier(sc)
	s.weld()

	if len(s.corners) != 8 {
		t.Fatalf("corners = %d, want 8", len(s.corners))
	}
	if len(s.uniques) != 4 {
		t.Errorf("unique vertices = %d, want 4", len(s.uniques))
	}

	// Both copies of each corner must map to the same unique vertex.
	for i := 0; i < 4; i++ {
		if s.corners[i].Unique != s.corners[i+4].Unique {
			t.Errorf("corner %d and %d welded to different vertices (%d vs %d)",
				i, i+4, s.corners[i].Unique, s.corners[i+4].Unique)
		}
	}
}

func TestWeldIdempotent(t *testing.T) {
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, unitSquare(), unitSquare())

	s := newTestSimplifier(sc)
	s.weld()

	// Re-welding the welded vertex set must be a no-op.
	rewelded := &scene.SubMesh{Faces: [][3]int{}}
	for _, u := range s.uniques {
		rewelded.Positions = append(rewelded.Positions, u.Position)
	}
	sc2 := scene.NewScene("rewelded")
	sc2.Meshes = append(sc2.Meshes, rewelded)

	s2 := newTestSimplifier(sc2)
	s2.weld()
	if len(s2.uniques) != len(s.uniques) {
		t.Errorf("re-weld changed vertex count: %d -> %d", len(s.uniques), len(s2.uniques))
	}
}

func TestWeldTolerance(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		want   int
	}{
		{"well inside tolerance", 1e-6, 1},
		{"clearly distinct", 1e-3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &scene.SubMesh{
				Positions: []mgl64.Vec3{
					{0.25, 0.25, 0.25},
					{0.25 + tt.offset, 0.25, 0.25},
				},
			}
			sc := scene.NewScene("test")
			sc.Meshes = append(sc.Meshes, sub)

			s := newTestSimplifier(sc)
			s.weld()
			if len(s.uniques) != tt.want {
				t.Errorf("unique vertices = %d, want %d", len(s.uniques), tt.want)
			}
		})
	}
}

func TestWeldedIndicesReferenceUniques(t *testing.T) {
	sc := scene.NewScene("test")
	sc.Meshes = append(sc.Meshes, unitSquare(), unitSquare())

	s := newTestSimplifier(sc)
	s.weld()

	for fi, w := range s.welded {
		for _, v := range w {
			if v < 0 || v >= len(s.uniques) {
				t.Fatalf("face %d references unique vertex %d, out of range [0,%d)", fi, v, len(s.uniques))
			}
		}
	}
}
