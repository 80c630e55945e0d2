// Package parallelfor provides the bulk data-parallel kernel primitive:
// a pure per-index function applied across an index space, forbidden from
// allocating or calling back into the mesh container. The range-splitting
// uses contiguous per-worker chunks, remainder spread over the first
// chunks.
package parallelfor

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
)

// Threshold below which Range runs serially: goroutine dispatch overhead
// would dominate the actual work.
const serialThreshold = 1024

// Range calls f(i) for every i in [0,n), distributing the index space over
// a fixed worker pool. f must not allocate mesh-container state or call back
// into anything holding a lock; it reads pre-fetched views and writes
// pre-allocated output buffers, so iteration order never affects the result.
func Range(n int, f func(i int)) {
	if n <= 0 {
		return
	}
	if n <= serialThreshold {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		lo, hi := split1D(n, workers, w)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				f(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// split1D partitions [0,n) into `workers` contiguous chunks, spreading the
// remainder over the first chunks (one item of imbalance at most).
func split1D(n, workers, w int) (lo, hi int) {
	chunk := n / workers
	remainder := n % workers
	var startAdd, endAdd int
	if remainder != 0 {
		if w+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = w
			endAdd = 1
		}
	}
	lo = w*chunk + startAdd
	hi = lo + chunk + endAdd
	return
}

// SortSegment is a sort-then-segment deterministic map-inversion: given, for each of n source indices, a target bucket id,
// it returns a CSR-style (offsets, order) pair such that order[offsets[b]:
// offsets[b+1]] lists the source indices mapping to bucket b, each bucket's
// sublist sorted ascending by source index (so the result is independent of
// the order buckets were produced in).
func SortSegment(nbuckets int, bucketOf []int) (offsets []int, order []int) {
	counts := make([]int, nbuckets+1)
	for _, b := range bucketOf {
		counts[b+1]++
	}
	for i := 0; i < nbuckets; i++ {
		counts[i+1] += counts[i]
	}
	offsets = counts
	cursor := append([]int(nil), offsets...)
	order = make([]int, len(bucketOf))
	for i, b := range bucketOf {
		order[cursor[b]] = i
		cursor[b]++
	}
	return offsets, order
}

// AtomicAccumulate is the alternative map-inversion rule: multiple source indices may add into the same target bucket; each bucket
// receives every contribution, but floating-point addition is not
// associative, so when the adds run in parallel the sum can differ in its
// last bits from one run to the next.
func AtomicAccumulate(nbuckets int, bucketOf []int, values []float64) []float64 {
	bits := make([]atomic.Uint64, nbuckets)
	Range(len(bucketOf), func(i int) {
		addFloat64(&bits[bucketOf[i]], values[i])
	})
	out := make([]float64, nbuckets)
	for i := range out {
		out[i] = math.Float64frombits(bits[i].Load())
	}
	return out
}

// addFloat64 adds delta into *a via compare-and-swap; float64 has no native
// atomic add.
func addFloat64(a *atomic.Uint64, delta float64) {
	for {
		old := a.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.CompareAndSwap(old, next) {
			return
		}
	}
}
