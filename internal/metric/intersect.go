package metric

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/meshadapt/internal/linalg"
)

// IntersectMetrics returns a metric whose unit ball approximates the
// intersection of m1's and m2's unit balls, via simultaneous
// reduction:
//
//  1. factor m1 = L L^T (Cholesky, via gonum)
//  2. form the symmetric A = L^-1 m2 L^-T and decompose it with this
//     repository's own linalg.DecomposeEigen (not gonum's eigensolver: the
//     eigendecomposition is the kernel this repository implements)
//  3. lift the orthonormal eigenvectors back through L^-T to get the
//     (generally non-orthogonal) simultaneous directions P
//  4. take lambda_i = max(p_i^T m1 p_i, p_i^T m2 p_i) per direction
//  5. return P^-T diag(lambda) P^-1
func IntersectMetrics(dim int, m1, m2 []float64) []float64 {
	M1 := symToDense(dim, m1)
	M2 := symToDense(dim, m2)

	var chol mat.Cholesky
	ok := chol.Factorize(M1)
	linalg.Check(ok, "IntersectMetrics: m1 is not SPD")
	var L mat.TriDense
	chol.LTo(&L)

	var Linv mat.Dense
	err := Linv.Inverse(&L)
	linalg.Check(err == nil, "IntersectMetrics: singular Cholesky factor")

	var tmp, A mat.Dense
	tmp.Mul(&Linv, M2)
	A.Mul(&tmp, Linv.T())
	Asym := symmetrize(dim, &A)

	q, lam := linalg.DecomposeEigen(dim, Asym)
	Q := mat.NewDense(dim, dim, q)

	var P mat.Dense
	P.Mul(Linv.T(), Q)

	lambda := make([]float64, dim)
	for i := 0; i < dim; i++ {
		p := mat.NewVecDense(dim, mat.Col(nil, i, &P))
		lambda[i] = math.Max(quadVec(M1, p), quadVec(M2, p))
	}

	var Pinv mat.Dense
	err = Pinv.Inverse(&P)
	linalg.Check(err == nil, "IntersectMetrics: singular direction matrix P")

	D := diag(dim, lambda)
	var tmp2, result mat.Dense
	tmp2.Mul(Pinv.T(), D)
	result.Mul(&tmp2, &Pinv)
	return symFromDense(dim, &result)
}

func quadVec(m mat.Matrix, v *mat.VecDense) float64 {
	var t mat.VecDense
	t.MulVec(m, v)
	return mat.Dot(v, &t)
}

func diag(dim int, vals []float64) *mat.Dense {
	d := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		d.Set(i, i, vals[i])
	}
	return d
}

func symToDense(dim int, sym []float64) *mat.Dense {
	d := mat.NewDense(dim, dim, nil)
	switch dim {
	case 2:
		d.Set(0, 0, sym[0])
		d.Set(1, 1, sym[1])
		d.Set(0, 1, sym[2])
		d.Set(1, 0, sym[2])
	case 3:
		d.Set(0, 0, sym[0])
		d.Set(1, 1, sym[1])
		d.Set(2, 2, sym[2])
		d.Set(0, 1, sym[3])
		d.Set(1, 0, sym[3])
		d.Set(0, 2, sym[4])
		d.Set(2, 0, sym[4])
		d.Set(1, 2, sym[5])
		d.Set(2, 1, sym[5])
	default:
		panic("symToDense: dim must be 2 or 3")
	}
	return d
}

// symmetrize averages a nearly-symmetric matrix and returns its sym_dofs.
func symmetrize(dim int, m *mat.Dense) []float64 {
	var t mat.Dense
	t.CloneFrom(m.T())
	avg := mat.NewDense(dim, dim, nil)
	avg.Add(m, &t)
	avg.Scale(0.5, avg)
	return symFromDense(dim, avg)
}

func symFromDense(dim int, m *mat.Dense) []float64 {
	switch dim {
	case 2:
		return []float64{m.At(0, 0), m.At(1, 1), (m.At(0, 1) + m.At(1, 0)) / 2}
	case 3:
		return []float64{
			m.At(0, 0), m.At(1, 1), m.At(2, 2),
			(m.At(0, 1) + m.At(1, 0)) / 2,
			(m.At(0, 2) + m.At(2, 0)) / 2,
			(m.At(1, 2) + m.At(2, 1)) / 2,
		}
	default:
		panic("symFromDense: dim must be 2 or 3")
	}
}
