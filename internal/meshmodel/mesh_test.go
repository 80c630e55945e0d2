package meshmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoTriMesh is a unit square cut into two triangles sharing a diagonal:
// verts 0=(0,0) 1=(1,0) 2=(1,1) 3=(0,1); cells {0,1,2} and {0,2,3}.
func twoTriMesh() *Mesh {
	coords := []float64{0, 0, 1, 0, 1, 1, 0, 1}
	cellVerts := [][]int32{{0, 1, 2}, {0, 2, 3}}
	return New(2, coords, cellVerts)
}

func TestNewMesh_EntityCounts(t *testing.T) {
	m := twoTriMesh()
	assert.Equal(t, 4, m.NEnts(Vert))
	assert.Equal(t, 2, m.NEnts(Face))
	// 5 edges: the 4 square sides plus the shared diagonal.
	assert.Equal(t, 5, m.NEnts(Edge))
}

func TestAskDown_CellVert(t *testing.T) {
	m := twoTriMesh()
	adj := m.AskDown(Face, Vert)
	assert.Equal(t, []int32{0, 1, 2}, adj.Targets(0))
	assert.Equal(t, []int32{0, 2, 3}, adj.Targets(1))
}

func TestAskUp_VertToCell(t *testing.T) {
	m := twoTriMesh()
	up := m.AskUp(Vert, Face)
	// vertex 0 and 2 are shared by both cells; 1 and 3 belong to one each.
	assert.ElementsMatch(t, []int32{0, 1}, up.Targets(0))
	assert.ElementsMatch(t, []int32{0}, up.Targets(1))
	assert.ElementsMatch(t, []int32{0, 1}, up.Targets(2))
	assert.ElementsMatch(t, []int32{1}, up.Targets(3))
}

func TestAskStar_VertexAdjacency(t *testing.T) {
	m := twoTriMesh()
	star := m.AskStar(Vert)
	assert.ElementsMatch(t, []int32{1, 2, 3}, star.Targets(0))
	assert.ElementsMatch(t, []int32{0, 2}, star.Targets(1))
	assert.ElementsMatch(t, []int32{0, 1, 3}, star.Targets(2))
	assert.ElementsMatch(t, []int32{0, 2}, star.Targets(3))
}

func TestAskDual_CellAdjacencyAcrossSharedEdge(t *testing.T) {
	m := twoTriMesh()
	dual := m.AskDual()
	assert.Equal(t, []int32{1}, dual.Targets(0))
	assert.Equal(t, []int32{0}, dual.Targets(1))
}

func TestTagRoundTrip(t *testing.T) {
	m := twoTriMesh()
	require.False(t, m.HasTag(Vert, "metric"))
	m.AddTag(Vert, "metric", 3, XferMetric, OutF64, Tag{Reals: []float64{
		1, 1, 0,
		1, 1, 0,
		1, 1, 0,
		1, 1, 0,
	}})
	require.True(t, m.HasTag(Vert, "metric"))
	tag, ok := m.GetArray(Vert, "metric")
	require.True(t, ok)
	assert.Equal(t, 4, tag.Len())
	m.RemoveTag(Vert, "metric")
	assert.False(t, m.HasTag(Vert, "metric"))
}

func singleTetMesh() *Mesh {
	coords := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	cellVerts := [][]int32{{0, 1, 2, 3}}
	return New(3, coords, cellVerts)
}

func TestNewMesh3D_EntityCounts(t *testing.T) {
	m := singleTetMesh()
	assert.Equal(t, 4, m.NEnts(Vert))
	assert.Equal(t, 6, m.NEnts(Edge))
	assert.Equal(t, 4, m.NEnts(Face))
	assert.Equal(t, 1, m.NEnts(Cell3D))
}

func TestAskDown3D_CellFace(t *testing.T) {
	m := singleTetMesh()
	adj := m.AskDown(Cell3D, Face)
	assert.Len(t, adj.Targets(0), 4)
}

func TestLinearEvaluator_IsIdentity(t *testing.T) {
	var ev LinearEvaluator
	p := [3]float64{1, 2, 3}
	assert.Equal(t, p, ev.Project(7, p))
}
