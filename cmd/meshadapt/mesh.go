package meshadapt

import "github.com/notargets/meshadapt/internal/meshmodel"

// buildBoxMesh2D triangulates an nx-by-ny grid of unit squares, each cut
// along its rising diagonal, into a mesh on [0,1]x[0,1]. It exists so the
// CLI has something to adapt without a mesh-file reader in scope.
func buildBoxMesh2D(nx, ny int) *meshmodel.Mesh {
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	nvx, nvy := nx+1, ny+1
	coords := make([]float64, nvx*nvy*2)
	idx := func(i, j int) int32 { return int32(j*nvx + i) }
	for j := 0; j < nvy; j++ {
		for i := 0; i < nvx; i++ {
			v := idx(i, j)
			coords[v*2+0] = float64(i) / float64(nx)
			coords[v*2+1] = float64(j) / float64(ny)
		}
	}

	var cellVerts [][]int32
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			cellVerts = append(cellVerts, []int32{a, b, c}, []int32{a, c, d})
		}
	}
	return meshmodel.New(2, coords, cellVerts)
}

// isotropicMetrics builds a uniform (identity-scaled) symmetric-metric
// buffer for n vertices in dim dimensions, the metric a freshly built box
// mesh starts from before any size field is applied.
func isotropicMetrics(dim, n int, scale float64) []float64 {
	w := dim * (dim + 1) / 2
	out := make([]float64, n*w)
	for v := 0; v < n; v++ {
		for k := 0; k < dim; k++ {
			out[v*w+k] = scale
		}
	}
	return out
}
