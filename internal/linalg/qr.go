package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// orthoComplement3 returns two unit vectors that, together with the unit
// vector `fixed`, form an orthonormal basis of R^3 (its handedness is not
// fixed). It is used
// to re-orthonormalize degenerate eigenspaces: form any vector not parallel
// to the first eigenvector, then Gram-Schmidt via a QR factorization
// (gonum's mat.QR).
func orthoComplement3(fixed [3]float64) (u, v [3]float64) {
	f := normalize3(fixed)
	aux := [3]float64{1, 0, 0}
	if math.Abs(f[0]) > 0.9 {
		aux = [3]float64{0, 1, 0}
	}
	third := cross3(f, aux)

	cols := mat.NewDense(3, 3, []float64{
		f[0], aux[0], third[0],
		f[1], aux[1], third[1],
		f[2], aux[2], third[2],
	})
	var qr mat.QR
	qr.Factorize(cols)
	var q mat.Dense
	qr.QTo(&q)

	// q's first column reproduces `f` up to sign; the remaining two columns
	// are an orthonormal basis for its complement.
	u = [3]float64{q.At(0, 1), q.At(1, 1), q.At(2, 1)}
	v = [3]float64{q.At(0, 2), q.At(1, 2), q.At(2, 2)}
	return u, v
}
