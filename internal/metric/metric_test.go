package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshadapt/internal/linalg"
)

func TestLinearizeDelinearizeRoundTrip(t *testing.T) {
	for _, dim := range []int{2, 3} {
		m := spdSample(dim)
		lin := LinearizeMetric(dim, m)
		back := DelinearizeMetric(dim, lin)
		for i := range m {
			assert.InDelta(t, m[i], back[i], 1e-9*relTol(m[i]))
		}
	}
}

func relTol(v float64) float64 {
	if math.Abs(v) < 1 {
		return 1
	}
	return math.Abs(v)
}

func spdSample(dim int) []float64 {
	if dim == 2 {
		return []float64{4, 9, 0.5}
	}
	return []float64{4, 9, 16, 0.3, -0.2, 0.1}
}

func TestInterpolateEndpointsAndSPD(t *testing.T) {
	a := []float64{1, 1, 1, 0, 0, 0}
	b := []float64{100, 100, 100, 0, 0, 0}
	c0 := InterpolateBetweenMetrics(3, a, b, 0)
	c1 := InterpolateBetweenMetrics(3, a, b, 1)
	for i := range a {
		assert.InDelta(t, a[i], c0[i], 1e-6)
		assert.InDelta(t, b[i], c1[i], 1e-4)
	}
	for _, tt := range []float64{0, 0.25, 0.5, 0.75, 1} {
		c := InterpolateBetweenMetrics(3, a, b, tt)
		requireSPD(t, 3, c)
	}
}

func requireSPD(t *testing.T, dim int, m []float64) {
	t.Helper()
	_, l := eigenOf(dim, m)
	for _, li := range l {
		require.Greater(t, li, 0.0)
	}
}

func eigenOf(dim int, m []float64) ([]float64, []float64) {
	q, l := linalg.DecomposeEigen(dim, m)
	return q, l
}

func TestIntersectSelf(t *testing.T) {
	m := []float64{4, 9, 16, 0, 0, 0}
	r := IntersectMetrics(3, m, m)
	for i := range m {
		assert.InDelta(t, m[i], r[i], 1e-6)
	}
}

func TestIntersectConcreteScenario(t *testing.T) {
	// Desired lengths (1,1,1/1000) vs (1/1000,1,1), i.e. eigenvalues
	// (1,1,1000^2) vs (1000^2,1,1), in the same frame; intersection should
	// desire lengths (1/1000, 1, 1/1000), i.e. eigenvalues (1e6, 1, 1e6).
	m1 := []float64{1, 1, 1e6, 0, 0, 0}
	m2 := []float64{1e6, 1, 1, 0, 0, 0}
	r := IntersectMetrics(3, m1, m2)
	_, l := linalg.DecomposeEigen(3, r)
	sorted := append([]float64{}, l...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] > sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	assert.InDelta(t, 1e6, sorted[0], 1e3)
	assert.InDelta(t, 1e6, sorted[1], 1e3)
	assert.InDelta(t, 1, sorted[2], 1e-3)
}

func TestMetricFromHessianClamps(t *testing.T) {
	h := []float64{2, 2, 0}
	m := MetricFromHessian(2, h, 1e-6, 0.01, 1.0)
	_, l := linalg.DecomposeEigen(2, m)
	for _, li := range l {
		assert.LessOrEqual(t, li, 1/(0.01*0.01)+1e-6)
		assert.GreaterOrEqual(t, li, 1/(1.0*1.0)-1e-6)
	}
}

func TestImpliedMetricUnitEdges(t *testing.T) {
	verts := [][]float64{{0, 0}, {1, 0}, {0.5, math.Sqrt(3) / 2}}
	m := ImpliedMetric(2, verts)
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		l := EdgeLengthUnderMetric(2, m, m, verts[i], verts[j])
		assert.InDelta(t, 1.0, l, 1e-9)
	}
}

func TestAxesFromMetric(t *testing.T) {
	m := []float64{4, 1, 0}
	axes := AxesFromMetric(2, m)
	require.Len(t, axes, 2)
	for _, a := range axes {
		assert.Len(t, a, 2)
	}
}

func TestFormLimitingMetricShrinksLargeEigenvalues(t *testing.T) {
	m := []float64{100, 100, 0}
	limited := FormLimitingMetric(2, m, 10.0, math.Log(2))
	_, l := linalg.DecomposeEigen(2, limited)
	for _, li := range l {
		assert.Less(t, li, 100.0)
	}
}

func TestEdgeLengthUnderMetric_EqualEndpoints(t *testing.T) {
	m := []float64{1, 1, 0}
	l := EdgeLengthUnderMetric(2, m, m, []float64{0, 0}, []float64{1, 0})
	assert.InDelta(t, 1.0, l, 1e-12)
}
