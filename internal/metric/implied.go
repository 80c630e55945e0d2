package metric

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/meshadapt/internal/linalg"
)

// symIndexPairs returns, in this package's canonical sym_dofs order
// (diagonal first, then upper off-diagonals row-major), the (row,col) pair
// each entry corresponds to.
func symIndexPairs(dim int) [][2]int {
	pairs := make([][2]int, 0, linalg.SymDofs(dim))
	for i := 0; i < dim; i++ {
		pairs = append(pairs, [2]int{i, i})
	}
	for i := 0; i < dim; i++ {
		for j := i + 1; j < dim; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// ImpliedMetric finds the unique SPD metric under which every edge of a
// simplex (dim+1 vertices in R^dim) has unit length: the
// sym_dofs(dim) edges of the simplex give exactly sym_dofs(dim) equations
// e^T M e = 1, solved as a linear system for M's entries (the "edge-matrix
// Gram relation").
func ImpliedMetric(dim int, verts [][]float64) []float64 {
	linalg.Check(len(verts) == dim+1, "ImpliedMetric: need dim+1 vertices")
	pairs := symIndexPairs(dim)
	n := len(pairs)

	var edges [][]float64
	for i := 0; i < dim+1; i++ {
		for j := i + 1; j < dim+1; j++ {
			e := make([]float64, dim)
			for d := 0; d < dim; d++ {
				e[d] = verts[j][d] - verts[i][d]
			}
			edges = append(edges, e)
		}
	}
	linalg.Check(len(edges) == n, "ImpliedMetric: edge count mismatch sym_dofs(dim)")

	A := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for row, e := range edges {
		for col, p := range pairs {
			a, c := p[0], p[1]
			if a == c {
				A.Set(row, col, e[a]*e[a])
			} else {
				A.Set(row, col, 2*e[a]*e[c])
			}
		}
		b.SetVec(row, 1.0)
	}

	var x mat.VecDense
	err := x.SolveVec(A, b)
	linalg.Check(err == nil, "ImpliedMetric: degenerate simplex, edge system is singular")

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x.AtVec(i)
	}
	return out
}
