package metric

import (
	"math"

	"github.com/notargets/meshadapt/internal/linalg"
)

// MetricFromHessian turns an absolute (eigenvalues made positive) Hessian
// into a metric via Alauzet-Frey error equidistribution:
//
//	M = c_num/(c_denom*eps) * |H|, entrywise clamped so that
//	1/hmax^2 <= lambda_i(M) <= 1/hmin^2.
func MetricFromHessian(dim int, hessian []float64, eps, hmin, hmax float64) []float64 {
	linalg.Check(eps > 0, "MetricFromHessian: eps must be > 0")
	linalg.Check(hmin > 0 && hmin <= hmax, "MetricFromHessian: need 0 < hmin <= hmax")
	q, l := linalg.DecomposeEigen(dim, hessian)
	cNum := float64(dim * dim)
	cDenom := float64(2 * (dim + 1) * (dim + 1))
	floorL := 1 / (hmax * hmax)
	ceilL := 1 / (hmin * hmin)
	tilde := make([]float64, len(l))
	for i, li := range l {
		val := (cNum * math.Abs(li)) / (cDenom * eps)
		tilde[i] = math.Max(floorL, math.Min(ceilL, val))
	}
	return linalg.ComposeEigen(dim, q, tilde)
}
