package linalg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeEigen3_Identity(t *testing.T) {
	e := DecomposeEigen3(Sym3{1, 1, 1, 0, 0, 0})
	assert.InDelta(t, 1.0, e.L[0], 1e-12)
	assert.InDelta(t, 1.0, e.L[1], 1e-12)
	assert.InDelta(t, 1.0, e.L[2], 1e-12)
	assert.True(t, isOrtho3(e.Q))
}

func TestSolveCharacteristicCubic_ThreeDistinctRoots(t *testing.T) {
	roots := SolveCharacteristicCubic(-1.5, -1.5, 1)
	require.InDeltaSlice(t, []float64{2, 0.5, -1}, roots[:], 1e-9)
}

func TestDecomposeEigen3_Reconstructs(t *testing.T) {
	cases := []Sym3{
		{2, 3, 4, 0.5, -0.2, 0.1},
		{5, 5, 1, 0, 0, 0},
		{10, 10, 10, 0, 0, 0},
		{1, 2, 2, 0, 0, 0.3},
	}
	for _, m := range cases {
		e := DecomposeEigen3(m)
		assert.True(t, isOrtho3(e.Q), "Q not orthonormal for %v", m)
		rec := ComposeEigen3(e.Q, e.L)
		for i := range rec {
			assert.InDelta(t, m[i], rec[i], 1e-8, "mismatch on %v", m)
		}
		for _, l := range e.L {
			assert.Greater(t, l, 0.0, "expected SPD input to yield positive eigenvalues")
		}
	}
}

func TestDecomposeEigen2_Reconstructs(t *testing.T) {
	cases := []Sym2{
		{2, 3, 0.5},
		{4, 4, 0},
		{1, 9, -0.75},
	}
	for _, m := range cases {
		e := DecomposeEigen2(m)
		assert.True(t, isOrtho2(e.Q))
		rec := ComposeEigen2(e.Q, e.L)
		for i := range rec {
			assert.InDelta(t, m[i], rec[i], 1e-10)
		}
		assert.GreaterOrEqual(t, e.L[0], e.L[1])
	}
}

func TestDispatch_RoundTrip(t *testing.T) {
	for _, dim := range []int{2, 3} {
		sym := make([]float64, SymDofs(dim))
		for i := range sym {
			sym[i] = 0.0
		}
		for i := 0; i < dim; i++ {
			sym[i] = float64(i + 1)
		}
		q, l := DecomposeEigen(dim, sym)
		rec := ComposeEigen(dim, q, l)
		for i := range rec {
			assert.InDelta(t, sym[i], rec[i], 1e-8)
		}
	}
}

func TestEigenvector3_DegenerateBranches(t *testing.T) {
	// two equal, one distinct: l0==l1 > l2
	m := Sym3{3, 3, 1, 0, 0, 0}
	e := DecomposeEigen3(m)
	assert.InDelta(t, 3, e.L[0], 1e-9)
	assert.InDelta(t, 3, e.L[1], 1e-9)
	assert.InDelta(t, 1, e.L[2], 1e-9)
	assert.True(t, isOrtho3(e.Q))

	// l0 distinct, l1==l2
	m2 := Sym3{5, 1, 1, 0, 0, 0}
	e2 := DecomposeEigen3(m2)
	assert.InDelta(t, 5, e2.L[0], 1e-9)
	assert.True(t, isOrtho3(e2.Q))
}

func TestMaxAbsSym3(t *testing.T) {
	assert.Equal(t, 4.0, maxAbsSym3(Sym3{1, -4, 2, 0, 0, 0}))
}

func TestSq(t *testing.T) {
	assert.Equal(t, 9.0, sq(3))
	assert.Equal(t, 0.0, math.Abs(sq(0)))
}
