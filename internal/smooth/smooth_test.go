package smooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshadapt/internal/meshmodel"
)

func uniformVertMetrics(n int) []float64 {
	out := make([]float64, n*3)
	for v := 0; v < n; v++ {
		out[v*3+0] = 1
		out[v*3+1] = 1
	}
	return out
}

// fanMesh is four triangles sharing a hub vertex, boundary square
// (+-1, +-1), hub displaced off-center so smoothing has work to do.
func fanMesh(hubX, hubY float64) *meshmodel.Mesh {
	coords := []float64{
		hubX, hubY,
		-1, -1,
		1, -1,
		1, 1,
		-1, 1,
	}
	cells := [][]int32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}, {0, 4, 1}}
	return meshmodel.New(2, coords, cells)
}

// classifyBoundary tags the hub interior and the square corners as boundary
// so SolveLaplacian/SmoothPositions pin them.
func classifyBoundary(m *meshmodel.Mesh) {
	class := []int8{2, 1, 1, 1, 1}
	m.AddTag(meshmodel.Vert, "class_dim", 1, meshmodel.XferInherit, meshmodel.OutI8,
		meshmodel.Tag{I8s: class})
}

func TestSolveLaplacian_ConvergesToStarAverage(t *testing.T) {
	m := fanMesh(0.5, 0.3)
	classifyBoundary(m)
	initial := []float64{10, 0, 4, 0, 4}
	state, niters := SolveLaplacian(m, initial, 1, 1e-12, 1e-12)
	require.Greater(t, niters, 0)
	// Boundary values are pinned; the hub relaxes to their average.
	assert.Equal(t, []float64{0, 4, 0, 4}, state[1:])
	assert.InDelta(t, 2.0, state[0], 1e-9)
}

func TestSolveLaplacian_FixedPointIsOneIteration(t *testing.T) {
	m := fanMesh(0, 0)
	classifyBoundary(m)
	initial := []float64{3, 3, 3, 3, 3}
	state, niters := SolveLaplacian(m, initial, 1, 1e-12, 1e-12)
	assert.Equal(t, 1, niters)
	assert.Equal(t, initial, state)
}

func TestSmoothPositions_RecentersTheHub(t *testing.T) {
	m := fanMesh(0.6, -0.4)
	classifyBoundary(m)
	vm := uniformVertMetrics(5)
	out, moved := SmoothPositions(m, vm, 10.0, 1.0)
	require.True(t, moved)
	coords := out.Coords()
	// The star average of the four corners is the origin.
	assert.InDelta(t, 0.0, coords[0], 1e-12)
	assert.InDelta(t, 0.0, coords[1], 1e-12)
	// Boundary vertices do not move.
	assert.Equal(t, m.Coords()[2:], coords[2:])
}

func TestSmoothPositions_ClampsToMaxMotion(t *testing.T) {
	m := fanMesh(0.6, 0.0)
	classifyBoundary(m)
	vm := uniformVertMetrics(5)
	out, moved := SmoothPositions(m, vm, 0.25, 1.0)
	require.True(t, moved)
	coords := out.Coords()
	assert.InDelta(t, 0.35, coords[0], 1e-12)
	assert.InDelta(t, 0.0, coords[1], 1e-12)
}

func TestSmoothPositions_QuiescesAboveTrigger(t *testing.T) {
	m := fanMesh(0.3, 0.2)
	classifyBoundary(m)
	vm := uniformVertMetrics(5)
	// Trigger below every cell's quality: nothing should move.
	out, moved := SmoothPositions(m, vm, 10.0, 0.0)
	assert.False(t, moved)
	assert.Equal(t, m, out)
}

func TestSmoothPositions_RejectsWorseningMoves(t *testing.T) {
	// Hub already at the optimum; any move the star average suggests is a
	// no-op, and the mesh must come back unchanged.
	m := fanMesh(0, 0)
	classifyBoundary(m)
	vm := uniformVertMetrics(5)
	out, moved := SmoothPositions(m, vm, 10.0, 1.0)
	assert.False(t, moved)
	assert.Equal(t, m, out)
}
