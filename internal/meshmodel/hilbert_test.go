package meshmodel

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The original test from Skilling's paper: the point (5,10,20) in a
// 32x32x32 cube maps to Hilbert integer 7865.
func TestHilbertSkilling(t *testing.T) {
	x := []uint64{5, 10, 20}
	hilbertAxesToTranspose(x, 5)

	var bits string
	for i := 4; i >= 0; i-- {
		for j := 0; j < 3; j++ {
			bits += fmt.Sprintf("%d", x[j]>>uint(i)&1)
		}
	}
	assert.Equal(t, "001111010111001", bits)
	assert.Equal(t, uint64(7865), hilbertKey(x, 5))

	hilbertTransposeToAxes(x, 5)
	assert.Equal(t, []uint64{5, 10, 20}, x)
}

func TestSortCoordsIsAPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, dim := range []int{2, 3} {
		nverts := 100
		coords := make([]float64, nverts*dim)
		for i := range coords {
			coords[i] = rng.Float64()
		}
		perm := SortCoords(dim, coords)
		require.Len(t, perm, nverts)
		seen := make([]bool, nverts)
		for _, old := range perm {
			require.False(t, seen[old], "old id %d appears twice", old)
			seen[old] = true
		}
		inv := UnsortMap(perm)
		for newID, oldID := range perm {
			assert.Equal(t, int32(newID), inv[oldID])
		}
	}
}

func TestSortCoordsGroupsNearbyPoints(t *testing.T) {
	// Two tight clusters far apart: after sorting, each cluster's points
	// must be contiguous in the new order.
	coords := []float64{
		0.01, 0.02, 0.00, 0.01, 0.02, 0.01,
		9.00, 9.01, 9.02, 9.00, 9.01, 9.02,
	}
	perm := SortCoords(2, coords)
	firstHalfLow := perm[0] < 3
	for i := 0; i < 3; i++ {
		assert.Equal(t, firstHalfLow, perm[i] < 3)
		assert.Equal(t, firstHalfLow, perm[3+i] >= 3)
	}
}
