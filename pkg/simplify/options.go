package simplify

import "go.uber.org/zap"

// Design constants of the collapse engine. costAcceptFactor and
// optimumDistanceFactor bias edge collapses toward endpoint snapping: the
// analytic optimum is adopted only when it is meaningfully cheaper and lies
// near the edge. incidenceCap bounds the per-vertex face list consulted by
// the flip guard; past the cap the guard sees a truncated neighborhood
// (known limitation on dense-valence vertices).
const (
	costAcceptFactor      = 0.8
	optimumDistanceFactor = 1.5
	flipCosineThreshold   = 0.2
	incidenceCap          = 200
	minTargetFaces        = 4
	degenerateAreaEps     = 1e-9
)

// Options configures the simplifier weights and behavior.
type Options struct {
	// GeoWeight scales the face-plane quadrics.
	GeoWeight float64
	// NormWeight is the attribute penalty folded in for normals.
	NormWeight float64
	// UVWeight is the base attribute penalty for UVs; the effective weight
	// is adapted to the mesh's UV span.
	UVWeight float64
	// BoundaryWeight anchors boundary edges; the virtual boundary planes are
	// weighted at 10x this value.
	BoundaryWeight float64
	// WeldScale quantizes positions to multiples of 1/WeldScale when welding
	// vertices into the watertight topology.
	WeldScale float64
	// AttributeQuadrics toggles the per-vertex attribute penalty terms.
	AttributeQuadrics bool

	// Logger receives diagnostic messages. Nil disables logging.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns the standard weight set.
func DefaultOptions() Options {
	return Options{
		GeoWeight:         1.0,
		NormWeight:        0.1,
		UVWeight:          0.1,
		BoundaryWeight:    10000.0,
		WeldScale:         10000.0,
		AttributeQuadrics: true,
	}
}

// Stats summarizes one simplification run.
type Stats struct {
	InputFaces     int
	TargetFaces    int
	OutputFaces    int
	InputCorners   int
	WeldedVertices int
	BoundaryEdges  int
	EdgeCandidates int
	Collapses      int
}
