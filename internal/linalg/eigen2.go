package linalg

import "math"

// Eigen2 is an orthonormal eigenbasis Q and eigenvalues L such that
// m = Q * diag(L) * Q^T for the symmetric 2x2 matrix m that produced it.
// Columns of Q are the eigenvectors; L[0] >= L[1].
type Eigen2 struct {
	Q Mat2
	L [2]float64
}

// DecomposeEigen2 computes the closed-form eigendecomposition of a
// symmetric 2x2 matrix. Eigenvalues are returned in decreasing
// order for determinism.
func DecomposeEigen2(m Sym2) Eigen2 {
	a, d, b := m[0], m[1], m[2]
	tr := a + d
	det := a*d - b*b
	disc := math.Sqrt(math.Max(tr*tr-4*det, 0))
	l1 := (tr + disc) / 2
	l2 := (tr - disc) / 2

	var q Mat2
	const tol = 1e-300
	if math.Abs(b) > tol {
		vx, vy := b, l1-a
		n := math.Hypot(vx, vy)
		q[0][0], q[1][0] = vx/n, vy/n
		q[0][1], q[1][1] = -q[1][0], q[0][0]
	} else if a >= d {
		q = identity2()
	} else {
		q = Mat2{{0, 1}, {1, 0}}
	}
	return Eigen2{Q: q, L: [2]float64{l1, l2}}
}

// ComposeEigen2 reconstructs Q diag(L) Q^T, no orthogonality assumed about Q.
func ComposeEigen2(q Mat2, l [2]float64) Sym2 {
	d := Mat2{{l[0], 0}, {0, l[1]}}
	m := mat2Mul(mat2Mul(q, d), mat2Transpose(q))
	return Sym2FromMat(m)
}

// ComposeOrtho2 is ComposeEigen2 but asserts Q is orthonormal first.
func ComposeOrtho2(q Mat2, l [2]float64) Sym2 {
	Check(isOrtho2(q), "ComposeOrtho2: Q is not orthonormal")
	return ComposeEigen2(q, l)
}

func isOrtho2(q Mat2) bool {
	qtq := mat2Mul(mat2Transpose(q), q)
	const tol = 1e-8
	return math.Abs(qtq[0][0]-1) < tol && math.Abs(qtq[1][1]-1) < tol &&
		math.Abs(qtq[0][1]) < tol && math.Abs(qtq[1][0]) < tol
}
