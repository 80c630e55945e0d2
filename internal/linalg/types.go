// Package linalg implements the fixed-size symmetric linear-algebra kernel:
// 2x2/3x3 eigendecomposition, matrix composition, and the small helpers the
// rest of the adaptation kernel builds on. Inner loops are specialized on a
// runtime dimension D bound once at the driver boundary (see the dispatch
// helpers in dispatch.go), never templated at the Go type level.
package linalg

import "math"

// Sym2 stores a symmetric 2x2 matrix as its sym_dofs(2)=3 unique entries,
// diagonal first then the upper off-diagonal: {m00, m11, m01}.
type Sym2 [3]float64

// Sym3 stores a symmetric 3x3 matrix as its sym_dofs(3)=6 unique entries,
// diagonal first then upper off-diagonals row-major: {m00,m11,m22,m01,m02,m12}.
type Sym3 [6]float64

// Mat2 and Mat3 are general (not necessarily symmetric) square matrices,
// row-major: M[row][col].
type Mat2 [2][2]float64
type Mat3 [3][3]float64

// SymDofs returns D(D+1)/2, the number of independent entries of a D x D
// symmetric matrix.
func SymDofs(dim int) int {
	return dim * (dim + 1) / 2
}

func (m Sym2) ToMat() Mat2 {
	return Mat2{
		{m[0], m[2]},
		{m[2], m[1]},
	}
}

func Sym2FromMat(m Mat2) Sym2 {
	return Sym2{m[0][0], m[1][1], m[0][1]}
}

func (m Sym3) ToMat() Mat3 {
	return Mat3{
		{m[0], m[3], m[4]},
		{m[3], m[1], m[5]},
		{m[4], m[5], m[2]},
	}
}

func Sym3FromMat(m Mat3) Sym3 {
	return Sym3{m[0][0], m[1][1], m[2][2], m[0][1], m[0][2], m[1][2]}
}

func identity2() Mat2 { return Mat2{{1, 0}, {0, 1}} }
func identity3() Mat3 { return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }

func mat2Transpose(m Mat2) Mat2 {
	return Mat2{{m[0][0], m[1][0]}, {m[0][1], m[1][1]}}
}

func mat3Transpose(m Mat3) Mat3 {
	var o Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			o[j][i] = m[i][j]
		}
	}
	return o
}

func mat2Mul(a, b Mat2) Mat2 {
	var o Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			s := 0.0
			for k := 0; k < 2; k++ {
				s += a[i][k] * b[k][j]
			}
			o[i][j] = s
		}
	}
	return o
}

func mat3Mul(a, b Mat3) Mat3 {
	var o Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			o[i][j] = s
		}
	}
	return o
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3(a [3]float64) float64 {
	return math.Sqrt(dot3(a, a))
}

func scale3(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func normalize3(a [3]float64) [3]float64 {
	n := norm3(a)
	if n == 0 {
		return [3]float64{1, 0, 0}
	}
	return scale3(a, 1/n)
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Check panics with msg if cond is false. It is used for
// precondition/invariant violations: programmer errors that must never be
// recovered from silently.
func Check(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}
