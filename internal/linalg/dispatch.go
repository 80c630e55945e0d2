package linalg

// This file binds the fixed-size 2D/3D kernels above to a runtime dimension,
// operating on flat sym_dofs(dim)-length slices. Callers at the driver
// boundary pick D once; everything below it stays dimension-specialized.

// DecomposeEigen decomposes a symmetric dim x dim matrix given as its
// sym_dofs(dim) entries, returning the eigenbasis as a row-major dim*dim
// slice and the eigenvalues, both sorted by decreasing eigenvalue.
func DecomposeEigen(dim int, sym []float64) (q []float64, l []float64) {
	switch dim {
	case 2:
		e := DecomposeEigen2(Sym2{sym[0], sym[1], sym[2]})
		return flattenMat2(e.Q), e.L[:]
	case 3:
		e := DecomposeEigen3(Sym3{sym[0], sym[1], sym[2], sym[3], sym[4], sym[5]})
		return flattenMat3(e.Q), e.L[:]
	default:
		panic("DecomposeEigen: dim must be 2 or 3")
	}
}

// ComposeEigen reconstructs Q diag(L) Q^T from a flat row-major Q and L,
// returning the result as sym_dofs(dim) entries.
func ComposeEigen(dim int, q []float64, l []float64) []float64 {
	switch dim {
	case 2:
		s := ComposeEigen2(unflattenMat2(q), [2]float64{l[0], l[1]})
		return s[:]
	case 3:
		s := ComposeEigen3(unflattenMat3(q), [3]float64{l[0], l[1], l[2]})
		return s[:]
	default:
		panic("ComposeEigen: dim must be 2 or 3")
	}
}

func flattenMat2(m Mat2) []float64 {
	return []float64{m[0][0], m[0][1], m[1][0], m[1][1]}
}

func unflattenMat2(v []float64) Mat2 {
	return Mat2{{v[0], v[1]}, {v[2], v[3]}}
}

func flattenMat3(m Mat3) []float64 {
	out := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = m[i][j]
		}
	}
	return out
}

func unflattenMat3(v []float64) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = v[i*3+j]
		}
	}
	return m
}
