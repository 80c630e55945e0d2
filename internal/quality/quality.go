// Package quality implements the mean-ratio-cubed element quality measure,
// in plain coordinates and under a metric.
package quality

import (
	"math"

	"github.com/notargets/meshadapt/internal/linalg"
	"github.com/notargets/meshadapt/internal/metric"
)

// TriangleSignedArea returns the signed area of triangle p0,p1,p2 in the
// plane.
func TriangleSignedArea(p0, p1, p2 [2]float64) float64 {
	return 0.5 * ((p1[0]-p0[0])*(p2[1]-p0[1]) - (p2[0]-p0[0])*(p1[1]-p0[1]))
}

// TetSignedVolume returns the signed volume of tetrahedron p0,p1,p2,p3.
func TetSignedVolume(p0, p1, p2, p3 [3]float64) float64 {
	a := sub(p1, p0)
	b := sub(p2, p0)
	c := sub(p3, p0)
	return (a[0]*(b[1]*c[2]-b[2]*c[1]) -
		a[1]*(b[0]*c[2]-b[2]*c[0]) +
		a[2]*(b[0]*c[1]-b[1]*c[0])) / 6
}

func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func sq(x float64) float64 { return x * x }

func triEdgeLengthsSquared2(p0, p1, p2 [2]float64) [3]float64 {
	return [3]float64{distSq2(p0, p1), distSq2(p1, p2), distSq2(p2, p0)}
}

func distSq2(a, b [2]float64) float64 {
	return sq(a[0]-b[0]) + sq(a[1]-b[1])
}

func distSq3(a, b [3]float64) float64 {
	return sq(a[0]-b[0]) + sq(a[1]-b[1]) + sq(a[2]-b[2])
}

func tetEdgeLengthsSquared(p0, p1, p2, p3 [3]float64) [6]float64 {
	return [6]float64{
		distSq3(p0, p1), distSq3(p0, p2), distSq3(p0, p3),
		distSq3(p1, p2), distSq3(p1, p3), distSq3(p2, p3),
	}
}

// TriangleQuality is the plain-coordinate mean-ratio-squared measure:
// Q = 48*A^2 / S3^2, S3 = sum of the three squared edge lengths. A signed
// area produces Q < 0, flagging an inverted triangle.
func TriangleQuality(p0, p1, p2 [2]float64) float64 {
	a := TriangleSignedArea(p0, p1, p2)
	lsq := triEdgeLengthsSquared2(p0, p1, p2)
	s := lsq[0] + lsq[1] + lsq[2]
	return 48 * sq(a) / sq(s) * sign(a)
}

// TetQuality is the plain-coordinate mean-ratio-cubed measure:
// Q = 15552*V^2 / S6^3. A signed volume produces Q < 0, flagging an
// inverted tet.
func TetQuality(p0, p1, p2, p3 [3]float64) float64 {
	v := TetSignedVolume(p0, p1, p2, p3)
	lsq := tetEdgeLengthsSquared(p0, p1, p2, p3)
	s := 0.0
	for _, l := range lsq {
		s += l
	}
	return 15552 * sq(v) / (s * s * s) * sign(v)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// TriangleQualityMetric evaluates the mean-ratio-squared measure under a
// per-vertex metric field: edge lengths are measured under the
// metric (each endpoint's own metric), and the area is measured after
// transforming coordinates by M^{1/2} of the vertex-averaged metric.
func TriangleQualityMetric(p [3][2]float64, m [3][]float64) float64 {
	lsq := [3]float64{
		sq(metric.EdgeLengthUnderMetric(2, m[0], m[1], p[0][:], p[1][:])),
		sq(metric.EdgeLengthUnderMetric(2, m[1], m[2], p[1][:], p[2][:])),
		sq(metric.EdgeLengthUnderMetric(2, m[2], m[0], p[2][:], p[0][:])),
	}
	s := lsq[0] + lsq[1] + lsq[2]

	avg := metric.AverageMetric(2, [][]float64{m[0], m[1], m[2]})
	half := matrixSqrt(2, avg)
	q0 := applyMat2(half, p[0])
	q1 := applyMat2(half, p[1])
	q2 := applyMat2(half, p[2])
	a := TriangleSignedArea(q0, q1, q2)
	return 48 * sq(a) / sq(s) * sign(a)
}

// TetQualityMetric is TriangleQualityMetric's 3D analog.
func TetQualityMetric(p [4][3]float64, m [4][]float64) float64 {
	edges := [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	s := 0.0
	for _, e := range edges {
		i, j := e[0], e[1]
		s += sq(metric.EdgeLengthUnderMetric(3, m[i], m[j], p[i][:], p[j][:]))
	}

	avg := metric.AverageMetric(3, [][]float64{m[0], m[1], m[2], m[3]})
	half := matrixSqrt(3, avg)
	q0 := applyMat3(half, p[0])
	q1 := applyMat3(half, p[1])
	q2 := applyMat3(half, p[2])
	q3 := applyMat3(half, p[3])
	v := TetSignedVolume(q0, q1, q2, q3)
	return 15552 * sq(v) / (s * s * s) * sign(v)
}

// matrixSqrt returns M^{1/2} = Q diag(sqrt(L)) Q^T via this repository's own
// eigendecomposition.
func matrixSqrt(dim int, m []float64) []float64 {
	q, l := linalg.DecomposeEigen(dim, m)
	sl := make([]float64, len(l))
	for i, li := range l {
		if li < 0 {
			li = 0
		}
		sl[i] = math.Sqrt(li)
	}
	return linalg.ComposeEigen(dim, q, sl)
}

func applyMat2(sym []float64, p [2]float64) [2]float64 {
	return [2]float64{
		sym[0]*p[0] + sym[2]*p[1],
		sym[2]*p[0] + sym[1]*p[1],
	}
}

func applyMat3(sym []float64, p [3]float64) [3]float64 {
	return [3]float64{
		sym[0]*p[0] + sym[3]*p[1] + sym[4]*p[2],
		sym[3]*p[0] + sym[1]*p[1] + sym[5]*p[2],
		sym[4]*p[0] + sym[5]*p[1] + sym[2]*p[2],
	}
}
