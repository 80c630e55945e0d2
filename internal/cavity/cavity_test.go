package cavity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshadapt/internal/meshmodel"
)

// twoTriMesh is a unit square cut into two triangles sharing a diagonal:
// verts 0=(0,0) 1=(1,0) 2=(1,1) 3=(0,1); cells {0,1,2},{0,2,3}.
func twoTriMesh() *meshmodel.Mesh {
	coords := []float64{0, 0, 1, 0, 1, 1, 0, 1}
	cellVerts := [][]int32{{0, 1, 2}, {0, 2, 3}}
	return meshmodel.New(2, coords, cellVerts)
}

func uniformVertMetrics(n int) []float64 {
	out := make([]float64, n*3)
	for v := 0; v < n; v++ {
		out[v*3+0] = 1
		out[v*3+1] = 1
	}
	return out
}

func findEdge(m *meshmodel.Mesh, a, b int32) int {
	ev := m.AskDown(meshmodel.Edge, meshmodel.Vert)
	for e := 0; e < m.NEnts(meshmodel.Edge); e++ {
		t := ev.Targets(e)
		if (t[0] == a && t[1] == b) || (t[0] == b && t[1] == a) {
			return e
		}
	}
	return -1
}

func TestRefine_SplitsBothCellsSharingTheDiagonal(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	diag := findEdge(m, 0, 2)
	result := Refine(m, vm, []int{diag})

	assert.Equal(t, 5, result.Mesh.NEnts(meshmodel.Vert))
	assert.Equal(t, 4, result.Mesh.NEnts(meshmodel.Face))
	require.Len(t, result.VertMetrics, 5*3)

	newVert, ok := result.ProductOf[diag]
	require.True(t, ok)
	assert.EqualValues(t, 4, newVert)
	mid := result.Mesh.Coords()[int(newVert)*2 : int(newVert)*2+2]
	assert.InDelta(t, 0.5, mid[0], 1e-9)
	assert.InDelta(t, 0.5, mid[1], 1e-9)
}

func TestRefine_UnselectedCellSurvivesUnchanged(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	side01 := findEdge(m, 0, 1)
	result := Refine(m, vm, []int{side01})

	// cell {0,2,3} never touches edge 0-1, so it should survive as one of
	// the 3 resulting cells (1 untouched + 2 from the split cell).
	assert.Equal(t, 3, result.Mesh.NEnts(meshmodel.Face))
	assert.Equal(t, 5, result.Mesh.NEnts(meshmodel.Vert))
}

func TestCoarsen_RemovesDegenerateCellAndRewiresSurvivor(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	// collapsing vertex 1 onto vertex 0: cell {0,1,2} degenerates to {0,0,2}
	// and dies; cell {0,2,3} never touches vertex 1 and survives, remapped.
	result := Coarsen(m, vm, map[int]int{1: 0})

	assert.Equal(t, 3, result.Mesh.NEnts(meshmodel.Vert))
	assert.Equal(t, 1, result.Mesh.NEnts(meshmodel.Face))
	require.Len(t, result.VertMetrics, 3*3)
	assert.EqualValues(t, result.OldToNew[1], result.OldToNew[0], "the collapsed vertex resolves to its target's new id")
}

func TestOtherVertex2D_FindsTheThirdVertex(t *testing.T) {
	third := otherVertex2D([]int32{0, 1, 2}, 0, 1)
	assert.EqualValues(t, 2, third)
}

func TestOrientTri2D_FlipsNegativeArea(t *testing.T) {
	m := twoTriMesh()
	// {0,1,2} = (0,0),(1,0),(1,1) is already CCW (positive area).
	assert.Equal(t, [3]int32{0, 1, 2}, orientTri2D(m, [3]int32{0, 1, 2}))
	// {0,2,1} reverses it to negative area, so orientTri2D must flip back.
	flipped := orientTri2D(m, [3]int32{0, 2, 1})
	assert.Equal(t, [3]int32{0, 1, 2}, flipped)
}

func TestSwap2D_NonInteriorEdgeLeavesMeshUnchanged(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	side01 := findEdge(m, 0, 1) // boundary edge, only 1 incident cell
	out, fired := Swap2D(m, vm, []int{side01}, 0.0)
	assert.False(t, fired)
	assert.Equal(t, 2, out.NEnts(meshmodel.Face))
	assert.Equal(t, 4, out.NEnts(meshmodel.Vert))
}

func TestSwap2D_ImpossibleQualityFloorNeverSwaps(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	diag := findEdge(m, 0, 2)
	// minQualityAllowed above the maximum possible quality (1.0) forces
	// every candidate to fail the improvement test.
	out, fired := Swap2D(m, vm, []int{diag}, 2.0)
	assert.False(t, fired)
	assert.Equal(t, 2, out.NEnts(meshmodel.Face))
	adj := out.AskDown(meshmodel.Face, meshmodel.Vert)
	assert.ElementsMatch(t, []int32{0, 1, 2}, adj.Targets(0))
	assert.ElementsMatch(t, []int32{0, 2, 3}, adj.Targets(1))
}

// threeTetRing builds 3 tets sharing the edge a=0,b=1, with equator
// vertices v0=2,v1=3,v2=4 forming a triangular ring: tets
// {0,1,2,3},{0,1,3,4},{0,1,4,2}.
func threeTetRing() *meshmodel.Mesh {
	coords := []float64{
		0, 0, -1, // a
		0, 0, 1, // b
		1, 0, 0, // v0
		-0.5, 0.866, 0, // v1
		-0.5, -0.866, 0, // v2
	}
	cellVerts := [][]int32{{0, 1, 2, 3}, {0, 1, 3, 4}, {0, 1, 4, 2}}
	return meshmodel.New(3, coords, cellVerts)
}

func uniformVertMetrics3D(n int) []float64 {
	out := make([]float64, n*6)
	for v := 0; v < n; v++ {
		out[v*6+0] = 1
		out[v*6+1] = 1
		out[v*6+2] = 1
	}
	return out
}

func TestEdgeLink3D_WalksTheRingInOrder(t *testing.T) {
	m := threeTetRing()
	e := findEdge(m, 0, 1)
	a, b, link, ok := edgeLink3D(m, e)
	require.True(t, ok)
	assert.EqualValues(t, 0, a)
	assert.EqualValues(t, 1, b)
	assert.Len(t, link, 3)
	assert.ElementsMatch(t, []int32{2, 3, 4}, link)
}

func TestKlincsek_SingleTriangulationForATriangularRing(t *testing.T) {
	m := threeTetRing()
	vm := uniformVertMetrics3D(5)
	triangles, _ := klincsek(m, vm, 0, 1, []int32{2, 3, 4})
	require.Len(t, triangles, 1, "a 3-vertex ring admits exactly one triangulation")
	assert.Equal(t, swapTriangle{lo: 0, mid: 1, hi: 2}, triangles[0])
}

func TestSwap3D_ImpossibleQualityFloorNeverSwaps(t *testing.T) {
	m := threeTetRing()
	vm := uniformVertMetrics3D(5)
	e := findEdge(m, 0, 1)
	out, fired := Swap3D(m, vm, []int{e}, 2.0)
	assert.False(t, fired)
	assert.Equal(t, 3, out.NEnts(meshmodel.Cell3D))
}
