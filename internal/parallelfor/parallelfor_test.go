package parallelfor

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange_VisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 10000
	var counts [n]int32
	Range(n, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})
	for i, c := range counts {
		assert.Equalf(t, int32(1), c, "index %d visited %d times", i, c)
	}
}

func TestRange_SmallNRunsSerially(t *testing.T) {
	out := make([]int, 5)
	Range(5, func(i int) { out[i] = i * i })
	assert.Equal(t, []int{0, 1, 4, 9, 16}, out)
}

func TestSortSegment_GroupsBySourceOrder(t *testing.T) {
	buckets := []int{2, 0, 1, 0, 2}
	offsets, order := SortSegment(3, buckets)
	assert.Equal(t, []int{0, 2, 3, 5}, offsets)
	assert.ElementsMatch(t, []int{1, 3}, order[offsets[0]:offsets[1]])
	assert.ElementsMatch(t, []int{2}, order[offsets[1]:offsets[2]])
	assert.ElementsMatch(t, []int{0, 4}, order[offsets[2]:offsets[3]])
}

func TestAtomicAccumulate_SumsPerBucket(t *testing.T) {
	buckets := []int{0, 1, 0, 1, 0}
	values := []float64{1, 2, 3, 4, 5}
	out := AtomicAccumulate(2, buckets, values)
	assert.InDelta(t, 9.0, out[0], 1e-12)
	assert.InDelta(t, 6.0, out[1], 1e-12)
}
