package linalg

import "math"

// Eigen3 is an orthonormal eigenbasis Q and eigenvalues L, L[0] >= L[1] >= L[2].
type Eigen3 struct {
	Q Mat3
	L [3]float64
}

// DecomposeEigen3 computes the eigendecomposition of a symmetric 3x3 matrix
// via the characteristic cubic's trigonometric (depressed-cubic) solution,
// with explicit branches for two- and three-fold degenerate eigenvalues
//.
func DecomposeEigen3(m Sym3) Eigen3 {
	M := m.ToMat()
	l := eigenvaluesCubic(m)
	scale := math.Max(1.0, maxAbsSym3(m))
	tol := 1e-9 * scale

	switch {
	case math.Abs(l[0]-l[2]) < tol:
		// triple root: any orthonormal basis works, identity is canonical.
		return Eigen3{Q: identity3(), L: l}
	case math.Abs(l[0]-l[1]) < tol:
		// top pair degenerate, l[2] distinct and well-defined.
		q2 := eigenvector3(M, l[2])
		q0, q1 := orthoComplement3(q2)
		return Eigen3{Q: columns3(q0, q1, q2), L: l}
	case math.Abs(l[1]-l[2]) < tol:
		// bottom pair degenerate, l[0] distinct and well-defined.
		q0 := eigenvector3(M, l[0])
		q1, q2 := orthoComplement3(q0)
		return Eigen3{Q: columns3(q0, q1, q2), L: l}
	default:
		q0 := eigenvector3(M, l[0])
		q2 := eigenvector3(M, l[2])
		q1 := normalize3(cross3(q2, q0))
		return Eigen3{Q: columns3(q0, q1, q2), L: l}
	}
}

func columns3(c0, c1, c2 [3]float64) Mat3 {
	var q Mat3
	for i := 0; i < 3; i++ {
		q[i][0], q[i][1], q[i][2] = c0[i], c1[i], c2[i]
	}
	return q
}

func maxAbsSym3(m Sym3) float64 {
	mx := 0.0
	for _, v := range m {
		if a := math.Abs(v); a > mx {
			mx = a
		}
	}
	return mx
}

// eigenvaluesCubic finds the roots of the characteristic polynomial of a
// symmetric 3x3 matrix: it forms the invariants (trace, sum of principal
// minors, determinant) and hands the resulting cubic to
// SolveCharacteristicCubic.
func eigenvaluesCubic(m Sym3) [3]float64 {
	m00, m11, m22, m01, m02, m12 := m[0], m[1], m[2], m[3], m[4], m[5]
	tr := m00 + m11 + m22
	i2 := m00*m11 + m11*m22 + m22*m00 - (m01*m01 + m12*m12 + m02*m02)
	det := m00*(m11*m22-m12*m12) - m01*(m01*m22-m12*m02) + m02*(m01*m12-m11*m02)
	// characteristic polynomial: lambda^3 - tr*lambda^2 + i2*lambda - det = 0
	return SolveCharacteristicCubic(-tr, i2, -det)
}

// SolveCharacteristicCubic finds the three real roots of
// lambda^3 + a*lambda^2 + b*lambda + c = 0 via the depressed-cubic
// trigonometric form, returned in decreasing order. Intended for a cubic
// known to have three real roots (as any real-symmetric matrix's
// characteristic polynomial does); an ill-conditioned near-triple-root
// input is handled by clamping the trigonometric argument to [-1,1].
func SolveCharacteristicCubic(a, b, c float64) [3]float64 {
	p := b - a*a/3
	shift := a / 3
	if p >= -1e-300 {
		// p == 0 up to roundoff: triple root at -a/3 (the depressed cubic
		// degenerates to t^3 = -q).
		return [3]float64{-shift, -shift, -shift}
	}
	q := 2*a*a*a/27 - a*b/3 + c
	r := (3 * q) / (2 * p) * math.Sqrt(-3/p)
	r = math.Max(-1, math.Min(1, r))
	phi := math.Acos(r) / 3
	radius := 2 * math.Sqrt(-p/3)
	t0 := radius * math.Cos(phi)
	t1 := radius * math.Cos(phi-2*math.Pi/3)
	t2 := radius * math.Cos(phi-4*math.Pi/3)
	return sortDesc3(t0-shift, t1-shift, t2-shift)
}

func sq(x float64) float64 { return x * x }

func sortDesc3(a, b, c float64) [3]float64 {
	v := [3]float64{a, b, c}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if v[j] > v[i] {
				v[i], v[j] = v[j], v[i]
			}
		}
	}
	return v
}

// eigenvector3 finds a unit vector in the kernel of (M - lambda*I) by
// cross-producting pairs of rows and keeping the most numerically robust
// result.
func eigenvector3(m Mat3, lambda float64) [3]float64 {
	a := m
	a[0][0] -= lambda
	a[1][1] -= lambda
	a[2][2] -= lambda
	r0 := [3]float64{a[0][0], a[0][1], a[0][2]}
	r1 := [3]float64{a[1][0], a[1][1], a[1][2]}
	r2 := [3]float64{a[2][0], a[2][1], a[2][2]}

	candidates := [3][3]float64{cross3(r0, r1), cross3(r0, r2), cross3(r1, r2)}
	best := 0
	bestNorm := norm3(candidates[0])
	for i := 1; i < 3; i++ {
		if n := norm3(candidates[i]); n > bestNorm {
			bestNorm = n
			best = i
		}
	}
	if bestNorm < 1e-300 {
		// fully degenerate row space (should only happen if lambda has
		// multiplicity 3, already handled by the caller); fall back to e0.
		return [3]float64{1, 0, 0}
	}
	return normalize3(candidates[best])
}

// ComposeEigen3 reconstructs Q diag(L) Q^T, no orthogonality assumed.
func ComposeEigen3(q Mat3, l [3]float64) Sym3 {
	d := Mat3{{l[0], 0, 0}, {0, l[1], 0}, {0, 0, l[2]}}
	m := mat3Mul(mat3Mul(q, d), mat3Transpose(q))
	return Sym3FromMat(m)
}

// ComposeOrtho3 is ComposeEigen3 but asserts Q is orthonormal first.
func ComposeOrtho3(q Mat3, l [3]float64) Sym3 {
	Check(isOrtho3(q), "ComposeOrtho3: Q is not orthonormal")
	return ComposeEigen3(q, l)
}

func isOrtho3(q Mat3) bool {
	qtq := mat3Mul(mat3Transpose(q), q)
	const tol = 1e-8
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(qtq[i][j]-want) > tol {
				return false
			}
		}
	}
	return true
}
