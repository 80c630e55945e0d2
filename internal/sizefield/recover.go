package sizefield

import (
	"log"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/meshadapt/internal/meshmodel"
)

// quadCoeffs is the number of coefficients of a full quadratic polynomial
// in dim variables.
func quadCoeffs(dim int) int {
	if dim == 2 {
		return 6
	}
	return 10
}

// vertexPatch collects vertex v plus rings of star neighbors, breadth-first,
// until the patch holds at least minSize vertices (or the mesh runs out).
// Patches grow past the first ring near boundaries and corners, where a
// single ring is too small to determine a polynomial fit.
func vertexPatch(star meshmodel.Adj, v, minSize int) []int32 {
	in := map[int32]bool{int32(v): true}
	patch := []int32{int32(v)}
	frontier := []int32{int32(v)}
	for len(patch) < minSize && len(frontier) > 0 {
		var next []int32
		for _, u := range frontier {
			for _, w := range star.Targets(int(u)) {
				if !in[w] {
					in[w] = true
					patch = append(patch, w)
					next = append(next, w)
				}
			}
		}
		frontier = next
	}
	return patch
}

// polyBasis evaluates the centered monomial basis at dx, either linear
// (1, dx...) or full quadratic (1, dx..., dx*dx upper-triangular row-major).
func polyBasis(dim int, dx []float64, quadratic bool) []float64 {
	row := make([]float64, 0, quadCoeffs(dim))
	row = append(row, 1)
	row = append(row, dx...)
	if quadratic {
		for i := 0; i < dim; i++ {
			for j := i; j < dim; j++ {
				row = append(row, dx[i]*dx[j])
			}
		}
	}
	return row
}

// fitAtVertex least-squares-fits a polynomial in (x - x_v) to the patch's
// per-vertex samples (width components each) and returns the coefficient
// matrix, one basis function per row, one sample component per column.
// Returns false when the patch does not determine the fit (degenerate or
// too-small patch).
func fitAtVertex(dim int, coords []float64, patch []int32, v int, values []float64, width int, quadratic bool) (*mat.Dense, bool) {
	ncoef := dim + 1
	if quadratic {
		ncoef = quadCoeffs(dim)
	}
	if len(patch) < ncoef {
		return nil, false
	}
	xv := coords[v*dim : v*dim+dim]
	a := mat.NewDense(len(patch), ncoef, nil)
	b := mat.NewDense(len(patch), width, nil)
	dx := make([]float64, dim)
	for r, w := range patch {
		xw := coords[int(w)*dim : int(w)*dim+dim]
		for d := 0; d < dim; d++ {
			dx[d] = xw[d] - xv[d]
		}
		a.SetRow(r, polyBasis(dim, dx, quadratic))
		b.SetRow(r, values[int(w)*width:int(w)*width+width])
	}
	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return nil, false
	}
	return &x, true
}

// RecoverGradients recovers the gradient of a per-vertex scalar field by
// fitting a quadratic polynomial over each vertex's patch and differentiating
// it at the vertex. The fit reproduces quadratic fields exactly, so the
// recovered gradient of such a field is exact at every vertex, boundary
// included. Falls back to a linear fit (and logs once) where the mesh is too
// small to determine a quadratic.
func RecoverGradients(mesh MeshView, vertValues []float64) []float64 {
	dim := mesh.Dim()
	nverts := mesh.NEnts(meshmodel.Vert)
	coords := mesh.Coords()
	star := mesh.AskStar(meshmodel.Vert)
	out := make([]float64, nverts*dim)
	warned := false
	for v := 0; v < nverts; v++ {
		patch := vertexPatch(star, v, quadCoeffs(dim)+2)
		coef, ok := fitAtVertex(dim, coords, patch, v, vertValues, 1, true)
		if !ok {
			coef, ok = fitAtVertex(dim, coords, patch, v, vertValues, 1, false)
			if !warned {
				log.Printf("sizefield: gradient recovery fell back to a linear fit (patch of %d verts)", len(patch))
				warned = true
			}
		}
		if !ok {
			continue
		}
		for d := 0; d < dim; d++ {
			out[v*dim+d] = coef.At(1+d, 0)
		}
	}
	return out
}

// RecoverHessians recovers the symmetric Hessian of a per-vertex scalar
// field: recover gradients first, then fit a linear polynomial to each
// gradient component over the same patches and read the Jacobian off the
// linear coefficients, symmetrized and packed diagonal-first. Both steps
// reproduce their sample fields' relevant order exactly, so a quadratic
// input yields its exact constant Hessian at every vertex.
func RecoverHessians(mesh MeshView, vertValues []float64) []float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	nverts := mesh.NEnts(meshmodel.Vert)
	coords := mesh.Coords()
	star := mesh.AskStar(meshmodel.Vert)
	grads := RecoverGradients(mesh, vertValues)
	out := make([]float64, nverts*w)
	for v := 0; v < nverts; v++ {
		patch := vertexPatch(star, v, dim+3)
		coef, ok := fitAtVertex(dim, coords, patch, v, grads, dim, false)
		if !ok {
			continue
		}
		// jac[k][r] = d grad_k / d x_r
		jac := make([][]float64, dim)
		for k := 0; k < dim; k++ {
			jac[k] = make([]float64, dim)
			for r := 0; r < dim; r++ {
				jac[k][r] = coef.At(1+r, k)
			}
		}
		h := out[v*w : v*w+w]
		for d := 0; d < dim; d++ {
			h[d] = jac[d][d]
		}
		o := dim
		for i := 0; i < dim; i++ {
			for j := i + 1; j < dim; j++ {
				h[o] = 0.5 * (jac[i][j] + jac[j][i])
				o++
			}
		}
	}
	return out
}
