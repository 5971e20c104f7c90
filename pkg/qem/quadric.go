// Package qem implements the quadric error metric used for edge-collapse
// mesh simplification. A quadric is a symmetric 4x4 matrix accumulating sums
// of outer products of plane equations; for a homogeneous point v=(x,y,z,1),
// v^T Q v measures the squared-distance aggregate to the associated planes.
package qem

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quadric stores the upper triangle of the symmetric 4x4 error matrix:
//
//	[ q0 q1 q2 q3 ]
//	[ q1 q4 q5 q6 ]
//	[ q2 q5 q7 q8 ]
//	[ q3 q6 q8 q9 ]
type Quadric [10]float64

// Numerical guards for the optimal-point solve.
const (
	minDeterminant = 1e-12
	minRcond       = 1e-6
)

// Zero returns the zero quadric.
func Zero() Quadric {
	return Quadric{}
}

// FromPlane builds the fundamental error quadric p*p^T for the plane
// ax+by+cz+d=0. The plane normal (a,b,c) is expected to be unit length.
func FromPlane(a, b, c, d float64) Quadric {
	return Quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

// AttributePenalty returns diag(w,w,w,0), a mild positional regularizer used
// to fold attribute weights (normals, UVs) into the error metric.
func AttributePenalty(w float64) Quadric {
	var q Quadric
	q[0], q[4], q[7] = w, w, w
	return q
}

// Add returns the elementwise sum q + b.
func (q Quadric) Add(b Quadric) Quadric {
	var r Quadric
	for i := range q {
		r[i] = q[i] + b[i]
	}
	return r
}

// Scale returns the elementwise product q * s.
func (q Quadric) Scale(s float64) Quadric {
	var r Quadric
	for i := range q {
		r[i] = q[i] * s
	}
	return r
}

// Evaluate computes v_h^T Q v_h for the homogeneous point v_h=(x,y,z,1).
// The result is non-negative for well-formed quadrics up to floating-point
// noise; callers clamp tiny negatives rather than relying on it.
func (q Quadric) Evaluate(v mgl64.Vec3) float64 {
	x, y, z := v.X(), v.Y(), v.Z()
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

// Optimize solves for the point minimizing the quadric error: M x = -b with
// M the upper-left 3x3 block and b the fourth column. It reports false when
// the system is numerically singular (near-zero determinant) or too
// ill-conditioned to trust; callers fall back to an endpoint or midpoint.
func (q Quadric) Optimize() (mgl64.Vec3, bool) {
	m := mgl64.Mat3{
		q[0], q[1], q[2],
		q[1], q[4], q[5],
		q[2], q[5], q[7],
	}

	det := m.Det()
	if math.Abs(det) < minDeterminant {
		return mgl64.Vec3{}, false
	}

	inv := m.Inv()
	if rcond(m, inv) < minRcond {
		return mgl64.Vec3{}, false
	}

	b := mgl64.Vec3{q[3], q[6], q[8]}
	return inv.Mul3x1(b).Mul(-1), true
}

// rcond estimates the reciprocal condition number 1/(|M| * |M^-1|) using
// infinity norms.
func rcond(m, inv mgl64.Mat3) float64 {
	nm := normInf(m)
	ni := normInf(inv)
	if nm == 0 || ni == 0 {
		return 0
	}
	return 1 / (nm * ni)
}

// normInf returns the infinity norm (maximum absolute row sum).
func normInf(m mgl64.Mat3) float64 {
	var n float64
	for r := 0; r < 3; r++ {
		s := math.Abs(m.At(r, 0)) + math.Abs(m.At(r, 1)) + math.Abs(m.At(r, 2))
		if s > n {
			n = s
		}
	}
	return n
}
