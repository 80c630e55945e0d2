package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/meshadapt/internal/comm"
)

func TestLinearPartitionSize(t *testing.T) {
	assert.Equal(t, 4, LinearPartitionSize(7, 2, 0))
	assert.Equal(t, 3, LinearPartitionSize(7, 2, 1))

	total := 0
	for rank := 0; rank < 3; rank++ {
		total += LinearPartitionSize(10, 3, rank)
	}
	assert.Equal(t, 10, total)
}

func TestGlobalsToLinearOwners(t *testing.T) {
	globals := []int64{6, 5, 4, 3, 2, 1, 0}
	remotes := GlobalsToLinearOwners(globals, 7, 2)
	wantRanks := []int{1, 1, 1, 0, 0, 0, 0}
	wantIdxs := []int32{2, 1, 0, 3, 2, 1, 0}
	for i, r := range remotes {
		assert.Equal(t, wantRanks[i], r.Rank, "rank of global %d", globals[i])
		assert.Equal(t, wantIdxs[i], r.Local, "local index of global %d", globals[i])
	}
}

func TestFindTotalGlobals(t *testing.T) {
	assert.Equal(t, int64(7), FindTotalGlobals(comm.NewSerial(), []int64{3, 0, 6, 2}))
	assert.Equal(t, int64(0), FindTotalGlobals(comm.NewSerial(), nil))
}
