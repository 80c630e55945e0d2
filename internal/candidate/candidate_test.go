package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshadapt/internal/meshmodel"
)

// twoTriMesh is a unit square cut into two triangles sharing a diagonal:
// verts 0=(0,0) 1=(1,0) 2=(1,1) 3=(0,1); cells {0,1,2},{0,2,3}; edges are
// the four sides plus the shared diagonal 0-2.
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

func TestMarkRefineCandidates_FlagsLongEdges(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	marks := MarkRefineCandidates(m, vm, 1.2)
	diag := findEdge(m, 0, 2)
	require.GreaterOrEqual(t, diag, 0)
	assert.True(t, marks[diag], "the diagonal (length sqrt(2)) should exceed 1.2")
	side := findEdge(m, 0, 1)
	assert.False(t, marks[side], "a unit side should not exceed 1.2")
}

func TestMarkCoarsenCandidates_FlagsShortEdges(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	marks := MarkCoarsenCandidates(m, vm, 0.5)
	side := findEdge(m, 0, 1)
	assert.False(t, marks[side])
}

func TestMarkSliverCandidates_ExtendsThroughDual(t *testing.T) {
	m := twoTriMesh()
	dual := m.AskDual()
	q := []float64{0.01, 0.9}
	marked := MarkSliverCandidates(m, dual, q, 0.1, 1)
	assert.True(t, marked[0])
	assert.True(t, marked[1], "cell 1 shares a facet with the sliver and should be pulled in by one layer")
}

func TestCodesFromVertMarks_BothEndpointsMarkedAllowsEitherDirection(t *testing.T) {
	m := twoTriMesh()
	marks := make([]bool, 4)
	marks[0], marks[2] = true, true
	codes := CodesFromVertMarks(m, marks)
	diag := findEdge(m, 0, 2)
	assert.True(t, codes[diag].Collapses(0))
	assert.True(t, codes[diag].Collapses(1))
	side := findEdge(m, 1, 2)
	assert.False(t, codes[side].Collapses(0) && codes[side].Collapses(1))
}

func TestCheckCollapseClass_DisallowsRemovingAMoreSpecificVertex(t *testing.T) {
	m := twoTriMesh()
	// vertex 0 classified to a point feature (dim 0), the diagonal edge
	// classified to a surface (dim 2): collapsing vertex 0 away would lose
	// the point feature, so that direction must be disallowed.
	m.AddTag(meshmodel.Vert, "class_dim", 1, meshmodel.XferNone, meshmodel.OutI8, meshmodel.Tag{
		I8s: []int8{0, 2, 2, 2},
	})
	m.AddTag(meshmodel.Edge, "class_dim", 1, meshmodel.XferNone, meshmodel.OutI8, meshmodel.Tag{
		I8s: []int8{2, 2, 2, 2, 2},
	})
	diag := findEdge(m, 0, 2)
	cands := []int{diag}
	codes := []CollapseCode{doCollapse(doCollapse(DontCollapse, 0), 1)}
	out := CheckCollapseClass(m, cands, codes)

	ev := m.AskDown(meshmodel.Edge, meshmodel.Vert).Targets(diag)
	vertZeroSlot := 0
	if ev[1] == 0 {
		vertZeroSlot = 1
	}
	assert.False(t, out[0].Collapses(vertZeroSlot), "vertex 0 (dim 0) must not collapse away under a dim-2 edge")
	assert.True(t, out[0].Collapses(1-vertZeroSlot), "the other endpoint (dim 2) may still collapse")
}

func TestCheckCollapseExposure_DisallowsCollapsingOntoAMoreInteriorVertex(t *testing.T) {
	m := twoTriMesh()
	// vertex 0 classified to a point feature (dim 0); vertex 2 wholly
	// interior (dim 2, the fallback). Collapsing 0 onto 2 would erase the
	// point feature's location, so that direction must be disallowed.
	m.AddTag(meshmodel.Vert, "class_dim", 1, meshmodel.XferNone, meshmodel.OutI8, meshmodel.Tag{
		I8s: []int8{0, 2, 2, 2},
	})
	diag := findEdge(m, 0, 2)
	cands := []int{diag}
	codes := []CollapseCode{doCollapse(doCollapse(DontCollapse, 0), 1)}
	out := CheckCollapseExposure(m, cands, codes)

	ev := m.AskDown(meshmodel.Edge, meshmodel.Vert).Targets(diag)
	vertZeroSlot := 0
	if ev[1] == 0 {
		vertZeroSlot = 1
	}
	assert.False(t, out[0].Collapses(vertZeroSlot), "collapsing the point-classified vertex onto the interior one must be disallowed")
}

func TestPreventOvershoot_DisallowsDirectionProducingATooLongEdge(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	// side edge 1-2 under uniform metrics: collapsing 1 onto 2 leaves edge
	// 2-0 (length sqrt(2)); collapsing 2 onto 1 leaves edges 1-0 (length 1)
	// and 1-3 (length sqrt(2)). A maxLengthDesired of 0.5 makes every one of
	// them overshoot, so both directions are disallowed.
	side := findEdge(m, 1, 2)
	cands := []int{side}
	codes := []CollapseCode{doCollapse(doCollapse(DontCollapse, 0), 1)}
	out := PreventOvershoot(m, vm, cands, codes, 0.5)
	assert.Equal(t, DontCollapse, out[0], "every resulting edge exceeds the 0.5 threshold")
}

func TestPreventOvershoot_AllowsDirectionWithinThreshold(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	side := findEdge(m, 1, 2)
	cands := []int{side}
	codes := []CollapseCode{doCollapse(doCollapse(DontCollapse, 0), 1)}
	out := PreventOvershoot(m, vm, cands, codes, 10.0)
	assert.Equal(t, codes[0], out[0])
}

func TestFilterCoarsenMinQuality_DisallowsPoorResultingCavity(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	diag := findEdge(m, 0, 2)
	cands := []int{diag}
	codes := []CollapseCode{doCollapse(doCollapse(DontCollapse, 0), 1)}
	out := FilterCoarsenMinQuality(m, vm, cands, codes, 2.0)
	assert.Equal(t, DontCollapse, out[0], "a quality floor above 1 always fails")
}

func TestChooseRails_PicksASingleDirectionWhenBothLegal(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	diag := findEdge(m, 0, 2)
	cands := []int{diag}
	codes := []CollapseCode{doCollapse(doCollapse(DontCollapse, 0), 1)}
	out := ChooseRails(m, vm, cands, codes)
	assert.True(t, out[0].Collapses(0) != out[0].Collapses(1), "exactly one direction should survive")
}

func TestChooseRails_LeavesAlreadySingleDirectionUntouched(t *testing.T) {
	m := twoTriMesh()
	vm := uniformVertMetrics(4)
	diag := findEdge(m, 0, 2)
	cands := []int{diag}
	codes := []CollapseCode{doCollapse(DontCollapse, 0)}
	out := ChooseRails(m, vm, cands, codes)
	assert.Equal(t, codes[0], out[0])
}
