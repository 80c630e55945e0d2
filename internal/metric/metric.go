// Package metric implements the anisotropic metric algebra: a
// metric is a symmetric positive-definite matrix carried as its
// sym_dofs(dim) entries, in the same {diag..., upper-off-diag...} layout
// linalg uses. Functions here are pure and dimension-parameterized at the
// call site.
package metric

import (
	"math"

	"github.com/notargets/meshadapt/internal/linalg"
)

// relativeLengthTolerance is the threshold below which the two endpoint
// lengths of an edge are considered equal, so the length integral falls
// back to their arithmetic mean instead of the logarithmic formula
//.
const relativeLengthTolerance = 1e-6

// VectorLengthUnderMetric returns sqrt(v^T M v) for a vector v under metric M.
func VectorLengthUnderMetric(dim int, m []float64, v []float64) float64 {
	return math.Sqrt(quadForm(dim, m, v))
}

func quadForm(dim int, m []float64, v []float64) float64 {
	switch dim {
	case 2:
		return v[0]*v[0]*m[0] + v[1]*v[1]*m[1] + 2*v[0]*v[1]*m[2]
	case 3:
		return v[0]*v[0]*m[0] + v[1]*v[1]*m[1] + v[2]*v[2]*m[2] +
			2*v[0]*v[1]*m[3] + 2*v[0]*v[2]*m[4] + 2*v[1]*v[2]*m[5]
	default:
		panic("quadForm: dim must be 2 or 3")
	}
}

// EdgeLengthUnderMetric evaluates the length of segment x->y under the
// metric field sampled at the two endpoints: the integral
// collapses to a closed form in terms of the two endpoint lengths L_a, L_b.
func EdgeLengthUnderMetric(dim int, ma, mb []float64, x, y []float64) float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = y[i] - x[i]
	}
	la := VectorLengthUnderMetric(dim, ma, v)
	lb := VectorLengthUnderMetric(dim, mb, v)
	return lengthFromEndpoints(la, lb)
}

func lengthFromEndpoints(la, lb float64) float64 {
	hi := math.Max(la, lb)
	if hi == 0 {
		return 0
	}
	if math.Abs(la-lb)/hi < relativeLengthTolerance {
		return (la + lb) / 2
	}
	return (la - lb) / math.Log(la/lb)
}

// LinearizeMetric maps a metric to the symmetric matrix logarithm
// log(M) = Q diag(ln L) Q^T, used before interpolating or averaging metrics.
func LinearizeMetric(dim int, m []float64) []float64 {
	q, l := linalg.DecomposeEigen(dim, m)
	ln := make([]float64, len(l))
	for i, li := range l {
		ln[i] = math.Log(positiveFloor(li))
	}
	return linalg.ComposeEigen(dim, q, ln)
}

// DelinearizeMetric is the inverse of LinearizeMetric: exp(L) = Q diag(e^l) Q^T.
func DelinearizeMetric(dim int, logm []float64) []float64 {
	q, l := linalg.DecomposeEigen(dim, logm)
	ex := make([]float64, len(l))
	for i, li := range l {
		ex[i] = math.Exp(li)
	}
	return linalg.ComposeEigen(dim, q, ex)
}

// positiveFloor guards against a degenerate (near-singular) metric: a
// singular matrix's eigenbasis is handled by returning the limit value
// rather than propagating -Inf through log(0).
func positiveFloor(l float64) float64 {
	const floor = 1e-300
	if l < floor {
		return floor
	}
	return l
}

// LinearizeMetrics applies LinearizeMetric element-wise over a buffer of n
// metrics, each sym_dofs(dim) entries long.
func LinearizeMetrics(dim int, metrics []float64) []float64 {
	return mapMetrics(dim, metrics, func(m []float64) []float64 { return LinearizeMetric(dim, m) })
}

// DelinearizeMetrics is the buffer form of DelinearizeMetric.
func DelinearizeMetrics(dim int, linear []float64) []float64 {
	return mapMetrics(dim, linear, func(m []float64) []float64 { return DelinearizeMetric(dim, m) })
}

func mapMetrics(dim int, in []float64, f func([]float64) []float64) []float64 {
	w := linalg.SymDofs(dim)
	linalg.Check(len(in)%w == 0, "mapMetrics: buffer length not a multiple of sym_dofs(dim)")
	n := len(in) / w
	out := make([]float64, len(in))
	for i := 0; i < n; i++ {
		r := f(in[i*w : i*w+w])
		copy(out[i*w:i*w+w], r)
	}
	return out
}

// InterpolateBetweenMetrics returns exp((1-t)*log(a) + t*log(b)), the convex
// combination performed in the log domain.
func InterpolateBetweenMetrics(dim int, a, b []float64, t float64) []float64 {
	la := LinearizeMetric(dim, a)
	lb := LinearizeMetric(dim, b)
	lc := make([]float64, len(la))
	for i := range lc {
		lc[i] = (1-t)*la[i] + t*lb[i]
	}
	return DelinearizeMetric(dim, lc)
}

// AverageMetric linearizes and averages a set of metrics (equal weight),
// then delinearizes: the element-center metric, and
// the elementwise step `limit_metrics_once_by_adj`'s callers use for
// projecting an element metric from its vertices.
func AverageMetric(dim int, ms [][]float64) []float64 {
	w := linalg.SymDofs(dim)
	acc := make([]float64, w)
	for _, m := range ms {
		lm := LinearizeMetric(dim, m)
		for i := range acc {
			acc[i] += lm[i]
		}
	}
	n := float64(len(ms))
	for i := range acc {
		acc[i] /= n
	}
	return DelinearizeMetric(dim, acc)
}

// AxesFromMetric returns the dim principal axes of M, each scaled by its
// desired edge length 1/sqrt(lambda_i).
func AxesFromMetric(dim int, m []float64) [][]float64 {
	q, l := linalg.DecomposeEigen(dim, m)
	axes := make([][]float64, dim)
	for j := 0; j < dim; j++ {
		scale := 1 / math.Sqrt(positiveFloor(l[j]))
		axis := make([]float64, dim)
		for i := 0; i < dim; i++ {
			axis[i] = q[i*dim+j] * scale
		}
		axes[j] = axis
	}
	return axes
}

// FormLimitingMetric returns Q diag(L_i / (1 + L_i*d*rho)^2) Q^T, the
// per-neighbor limiting metric of the gradation limiter:
// `d` is the physical distance to the neighbor and `rho = ln(maxRate)`.
func FormLimitingMetric(dim int, m []float64, d, logRate float64) []float64 {
	q, l := linalg.DecomposeEigen(dim, m)
	out := make([]float64, len(l))
	for i, li := range l {
		denom := 1 + li*d*logRate
		out[i] = li / (denom * denom)
	}
	return linalg.ComposeEigen(dim, q, out)
}
