package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/meshadapt/internal/meshmodel"
)

// twoTriMesh is a unit square cut into two triangles sharing a diagonal.
func twoTriMesh() *meshmodel.Mesh {
	coords := []float64{0, 0, 1, 0, 1, 1, 0, 1}
	cellVerts := [][]int32{{0, 1, 2}, {0, 2, 3}}
	return meshmodel.New(2, coords, cellVerts)
}

func TestBuildMetisGraph_MatchesDualAdjacency(t *testing.T) {
	m := twoTriMesh()
	xadj, adjncy := buildMetisGraph(m)

	assert.Len(t, xadj, 3) // ncells+1
	assert.Len(t, adjncy, 2)
	assert.Contains(t, adjncy, int32(0))
	assert.Contains(t, adjncy, int32(1))
}

func TestImbalance_PerfectSplitIsOne(t *testing.T) {
	part := []int32{0, 0, 1, 1}
	assert.InDelta(t, 1.0, Imbalance(part, 2), 1e-9)
}

func TestImbalance_SkewedSplitExceedsOne(t *testing.T) {
	part := []int32{0, 0, 0, 1}
	assert.Greater(t, Imbalance(part, 2), 1.0)
}

func TestImbalance_EmptyPartitionIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, Imbalance(nil, 2))
	assert.Equal(t, 1.0, Imbalance([]int32{0, 1}, 0))
}

func TestRebalance_SkipsWhenWithinThreshold(t *testing.T) {
	m := twoTriMesh()
	cfg := DefaultConfig(2)
	current := []int32{0, 1} // perfectly balanced, 1 cell per part

	part, changed, err := Rebalance(m, cfg, current, 1.1)

	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, current, part)
}

func TestDefaultConfig_MatchesGocfdDefaults(t *testing.T) {
	cfg := DefaultConfig(4)
	assert.Equal(t, int32(4), cfg.NumPartitions)
	assert.InDelta(t, 1.05, cfg.ImbalanceFactor, 1e-9)
	assert.Equal(t, "vol", cfg.Objective)
}
