package meshmodel

import (
	"math"
	"sort"
)

/* Hilbert-curve transforms, from:

   Skilling, John. "Programming the Hilbert curve."
   23rd International Workshop on Bayesian Inference and Maximum Entropy
   Methods in Science and Engineering. Vol. 707. No. 1. AIP Publishing, 2004.

   Public-domain software per the author. */

// hilbertAxesToTranspose converts b-bit axis coordinates x[0..n-1] in place
// to the transposed Hilbert-integer form (bit k of the Hilbert integer,
// counting from the most significant, lives at bit b-1-k/n of x[k%n]).
func hilbertAxesToTranspose(x []uint64, b int) {
	n := len(x)
	m := uint64(1) << (b - 1)
	var p, q, t uint64
	for q = m; q > 1; q >>= 1 {
		p = q - 1
		for i := 0; i < n; i++ {
			if x[i]&q != 0 {
				x[0] ^= p
			} else {
				t = (x[0] ^ x[i]) & p
				x[0] ^= t
				x[i] ^= t
			}
		}
	}
	for i := 1; i < n; i++ {
		x[i] ^= x[i-1]
	}
	t = 0
	for q = m; q > 1; q >>= 1 {
		if x[n-1]&q != 0 {
			t ^= q - 1
		}
	}
	for i := 0; i < n; i++ {
		x[i] ^= t
	}
}

// hilbertTransposeToAxes is the inverse of hilbertAxesToTranspose.
func hilbertTransposeToAxes(x []uint64, b int) {
	n := len(x)
	nbig := uint64(2) << (b - 1)
	var p, q, t uint64
	t = x[n-1] >> 1
	for i := n - 1; i > 0; i-- {
		x[i] ^= x[i-1]
	}
	x[0] ^= t
	for q = 2; q != nbig; q <<= 1 {
		p = q - 1
		for i := n - 1; i >= 0; i-- {
			if x[i]&q != 0 {
				x[0] ^= p
			} else {
				t = (x[0] ^ x[i]) & p
				x[0] ^= t
				x[i] ^= t
			}
		}
	}
}

// hilbertKey packs the transposed form into the single Hilbert integer,
// most significant bit first. b*len(x) must be at most 64.
func hilbertKey(x []uint64, b int) uint64 {
	n := len(x)
	var key uint64
	for i := b - 1; i >= 0; i-- {
		for j := 0; j < n; j++ {
			key = key<<1 | (x[j]>>uint(i))&1
		}
	}
	return key
}

// sortCoordsBits is the quantization resolution per axis; 20 bits times 3
// axes stays within hilbertKey's 64-bit budget.
const sortCoordsBits = 20

// SortCoords orders vertices along a Hilbert space-filling curve over their
// bounding box and returns the new-to-old permutation: result[i] is the old
// id of the vertex placed at new position i. Vertices quantized to the same
// curve cell keep their old relative order, so the result is always a
// bijection on [0, nverts).
func SortCoords(dim int, coords []float64) []int32 {
	nverts := len(coords) / dim
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for d := 0; d < dim; d++ {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for v := 0; v < nverts; v++ {
		for d := 0; d < dim; d++ {
			c := coords[v*dim+d]
			if c < lo[d] {
				lo[d] = c
			}
			if c > hi[d] {
				hi[d] = c
			}
		}
	}
	maxQ := float64(uint64(1)<<sortCoordsBits - 1)
	keys := make([]uint64, nverts)
	x := make([]uint64, dim)
	for v := 0; v < nverts; v++ {
		for d := 0; d < dim; d++ {
			extent := hi[d] - lo[d]
			if extent <= 0 {
				x[d] = 0
				continue
			}
			x[d] = uint64((coords[v*dim+d] - lo[d]) / extent * maxQ)
		}
		hilbertAxesToTranspose(x, sortCoordsBits)
		keys[v] = hilbertKey(x, sortCoordsBits)
	}
	perm := make([]int32, nverts)
	for v := range perm {
		perm[v] = int32(v)
	}
	sort.SliceStable(perm, func(i, j int) bool { return keys[perm[i]] < keys[perm[j]] })
	return perm
}

// UnsortMap inverts a new-to-old permutation into old-to-new form, the map
// applied to connectivity when renumbering after SortCoords.
func UnsortMap(perm []int32) []int32 {
	inv := make([]int32, len(perm))
	for newID, oldID := range perm {
		inv[oldID] = int32(newID)
	}
	return inv
}
