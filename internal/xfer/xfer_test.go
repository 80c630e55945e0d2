package xfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/meshadapt/internal/candidate"
	"github.com/notargets/meshadapt/internal/meshmodel"
)

func TestInheritPolicy_RefineCopiesFirstEndpointCoarsenKeepsOnto(t *testing.T) {
	var p InheritPolicy
	assert.Equal(t, []float64{1, 2}, p.TransferSame([]float64{1, 2}))
	assert.Equal(t, []float64{1, 2}, p.TransferRefine([]float64{1, 2}, []float64{9, 9}))
	assert.Equal(t, []float64{5}, p.TransferCoarsen([]float64{1}, []float64{5}))
}

func TestClassInheritPolicy_RefinePicksMoreSpecificClass(t *testing.T) {
	var p ClassInheritPolicy
	// smaller class_dim = more specific; picking min(a,b) per component.
	assert.Equal(t, []float64{0}, p.TransferRefine([]float64{0}, []float64{2}))
	assert.Equal(t, []float64{1}, p.TransferRefine([]float64{2}, []float64{1}))
}

func TestMetricPolicy_RefineAveragesInLogSpace(t *testing.T) {
	p := MetricPolicy{Dim: 2}
	identity := []float64{1, 1, 0}
	avg := p.TransferRefine(identity, identity)
	// averaging an identity metric with itself reproduces the identity.
	assert.InDelta(t, 1, avg[0], 1e-9)
	assert.InDelta(t, 1, avg[1], 1e-9)
	assert.InDelta(t, 0, avg[2], 1e-9)
}

func TestMetricPolicy_CoarsenKeepsSurvivorMetric(t *testing.T) {
	p := MetricPolicy{Dim: 2}
	onto := []float64{2, 0, 2}
	got := p.TransferCoarsen([]float64{1, 0, 1}, onto)
	assert.Equal(t, onto, got)
}

func TestMomentumPolicy_RefineAveragesVelocityComponentwise(t *testing.T) {
	p := MomentumPolicy{Dim: 2}
	got := p.TransferRefine([]float64{0, 0}, []float64{2, 4})
	assert.Equal(t, []float64{1, 2}, got)
}

// twoTriMesh is a unit square cut into two triangles sharing a diagonal:
// verts 0=(0,0) 1=(1,0) 2=(1,1) 3=(0,1); cells {0,1,2},{0,2,3}.
func twoTriMesh() *meshmodel.Mesh {
	coords := []float64{0, 0, 1, 0, 1, 1, 0, 1}
	cellVerts := [][]int32{{0, 1, 2}, {0, 2, 3}}
	return meshmodel.New(2, coords, cellVerts)
}

func findEdge(m *meshmodel.Mesh, a, b int32) int {
	ev := m.AskDown(meshmodel.Edge, meshmodel.Vert)
	for e := 0; e < m.NEnts(meshmodel.Edge); e++ {
		tgt := ev.Targets(e)
		if (tgt[0] == a && tgt[1] == b) || (tgt[0] == b && tgt[1] == a) {
			return e
		}
	}
	return -1
}

func TestHasFixedMomentumVelocity_ReflectsTagPresence(t *testing.T) {
	m := twoTriMesh()
	assert.False(t, HasFixedMomentumVelocity(m, "velocity"))
	m.AddTag(meshmodel.Vert, "velocity", 2, meshmodel.XferMomentum, meshmodel.OutF64, meshmodel.Tag{
		Reals: make([]float64, 4*2),
	})
	assert.True(t, HasFixedMomentumVelocity(m, "velocity"))
}

func TestFilterFixedMomentumVelocity_DisallowsDivergentVelocity(t *testing.T) {
	m := twoTriMesh()
	// vertex 0 velocity (5,0) vs vertex 2 velocity (0,0): diff 5 exceeds tol.
	velocity := []float64{5, 0, 0, 0, 0, 0, 0, 0}
	diag := findEdge(m, 0, 2)
	codes := []candidate.CollapseCode{3} // both directions legal going in

	out := FilterFixedMomentumVelocity(m, velocity, 2, []int{diag}, codes, 1.0)
	ev := m.AskDown(meshmodel.Edge, meshmodel.Vert).Targets(diag)
	eev0 := 0
	if ev[1] == 0 {
		eev0 = 1
	}
	assert.False(t, out[0].Collapses(eev0), "collapsing the divergent-velocity vertex away must be disallowed")
}

func TestForXferType_DispatchesToMatchingPolicy(t *testing.T) {
	assert.IsType(t, MetricPolicy{}, ForXferType(meshmodel.XferMetric, 2))
	assert.IsType(t, MomentumPolicy{}, ForXferType(meshmodel.XferMomentum, 2))
	assert.IsType(t, InheritPolicy{}, ForXferType(meshmodel.XferInherit, 2))
	assert.IsType(t, InheritPolicy{}, ForXferType(meshmodel.XferNone, 2))
}

func TestFilterFixedMomentumVelocity_AllowsCloseVelocity(t *testing.T) {
	m := twoTriMesh()
	velocity := []float64{1, 0, 0, 0, 1.05, 0, 0, 0}
	diag := findEdge(m, 0, 2)
	codes := []candidate.CollapseCode{3}

	out := FilterFixedMomentumVelocity(m, velocity, 2, []int{diag}, codes, 1.0)
	assert.Equal(t, candidate.CollapseCode(3), out[0])
}
