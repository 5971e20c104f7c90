// Package simplify implements quadric-error-metric triangle-mesh
// simplification with boundary preservation. The input scene may consist of
// several sub-meshes; their vertices are welded by position into a single
// watertight topology, decimated by iterative edge collapse, and written
// back into the original sub-mesh partitioning.
package simplify

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Magical1-zyz/MAC-Simplifier/pkg/qem"
	"github.com/Magical1-zyz/MAC-Simplifier/pkg/scene"
)

// corner is one vertex slot of the source scene. Its position is rewritten
// to the collapsed position of its welded group before writeback.
type corner struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	UV       mgl64.Vec2
	Unique   int // welded vertex id
}

// uniqueVertex is a welded-topology vertex.
type uniqueVertex struct {
	Position mgl64.Vec3
	Q        qem.Quadric
	Corners  []int // original corner indices mapping to this vertex
	FaceIDs  []int // incident faces, capped; consulted by the flip guard
	Removed  bool
}

// subMeshRef ties a contiguous run of the global face list back to its
// source sub-mesh. Used only during writeback.
type subMeshRef struct {
	Mesh       *scene.SubMesh
	FaceStart  int
	FaceCount  int
	BaseCorner int
}

type simplifier struct {
	opts Options
	log  *zap.SugaredLogger

	corners []corner
	faces   [][3]int // original-corner indices, global across sub-meshes
	refs    []subMeshRef

	welded    [][3]int // unique-vertex indices, parallel to faces
	uniques   []uniqueVertex
	parent    []int // union-find, indexed by unique vertex id
	faceCount int
}

// Simplify reduces the scene's triangle count by ratio (the fraction of
// faces to remove, in [0,1]) and rewrites each sub-mesh's vertex and index
// buffers in place. On empty input the scene is left untouched.
func Simplify(sc *scene.Scene, ratio float64, opts Options) Stats {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}

	s := &simplifier{opts: opts, log: log}
	s.ingest(sc)

	stats := Stats{
		InputFaces:   len(s.faces),
		InputCorners: len(s.corners),
	}
	if len(s.faces) == 0 {
		log.Warn("no geometry found, nothing to simplify")
		return stats
	}

	s.weld()
	stats.WeldedVertices = len(s.uniques)
	log.Infow("topology normalized",
		"corners", len(s.corners),
		"unique_vertices", len(s.uniques),
		"merged", len(s.corners)-len(s.uniques),
	)

	stats.BoundaryEdges = s.assembleQuadrics()
	log.Infow("quadrics assembled", "protected_edges", stats.BoundaryEdges)

	target := targetFaces(len(s.faces), ratio)
	stats.TargetFaces = target
	candidates, collapses := s.collapse(target)
	stats.EdgeCandidates = candidates
	stats.Collapses = collapses

	s.propagatePositions()
	stats.OutputFaces = s.writeback()
	log.Infow("simplification done",
		"input_faces", stats.InputFaces,
		"target_faces", target,
		"output_faces", stats.OutputFaces,
		"collapses", collapses,
	)
	return stats
}

// targetFaces computes the face budget: floor(faces*(1-ratio)), floored at a
// minimal tetrahedron's worth of faces.
func targetFaces(faces int, ratio float64) int {
	t := int(float64(faces) * (1.0 - ratio))
	if t < minTargetFaces {
		t = minTargetFaces
	}
	return t
}

// find resolves a unique vertex id to its union-find root with path halving.
func (s *simplifier) find(id int) int {
	for id != s.parent[id] {
		s.parent[id] = s.parent[s.parent[id]]
		id = s.parent[id]
	}
	return id
}

// propagatePositions copies each surviving root's collapsed position back
// into every original corner of its welded group.
func (s *simplifier) propagatePositions() {
	for i := range s.uniques {
		root := s.find(i)
		p := s.uniques[root].Position
		for _, c := range s.uniques[i].Corners {
			s.corners[c].Position = p
		}
	}
}
