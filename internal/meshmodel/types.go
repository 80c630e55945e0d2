// Package meshmodel is the concrete, in-memory mesh container the kernel
// packages are written against. Buffers are flat slices, never
// pointer graphs, and a mesh is immutable once published: a rewrite builds a
// fresh *Mesh and the driver swaps to it.
package meshmodel

// Entity dimension indices. A 2D mesh uses Vert/Edge/Cell (Face coincides
// with Cell); a 3D mesh uses all four.
const (
	Vert = 0
	Edge = 1
	Face = 2
	Cell3D = 3
)

// CellDim returns the top-dimensional entity kind for a mesh of the given
// spatial dimension (Face in 2D, Cell3D in 3D).
func CellDim(dim int) int {
	if dim == 2 {
		return Face
	}
	return Cell3D
}

// Adj is a CSR adjacency table: entity i's neighbors/targets are
// AB2B[A2AB[i]:A2AB[i+1]]. Codes, when non-nil, carries one alignment byte
// per (i, target) pair recording the target's orientation.
type Adj struct {
	A2AB  []int32
	AB2B  []int32
	Codes []uint8
}

// Degree returns the number of targets entity i has.
func (a Adj) Degree(i int) int {
	return int(a.A2AB[i+1] - a.A2AB[i])
}

// Targets returns entity i's adjacency targets.
func (a Adj) Targets(i int) []int32 {
	return a.AB2B[a.A2AB[i]:a.A2AB[i+1]]
}

// AdjFromUniform builds a CSR Adj from a uniform-degree jagged relation
// (every entity has the same number of targets, e.g. cell->vertex).
func AdjFromUniform(rel [][]int32) Adj {
	degree := 0
	if len(rel) > 0 {
		degree = len(rel[0])
	}
	a2ab := make([]int32, len(rel)+1)
	ab2b := make([]int32, 0, len(rel)*degree)
	for i, r := range rel {
		a2ab[i] = int32(len(ab2b))
		ab2b = append(ab2b, r...)
	}
	a2ab[len(rel)] = int32(len(ab2b))
	return Adj{A2AB: a2ab, AB2B: ab2b}
}

// Invert builds the upward adjacency (targets -> sources) of a downward
// relation, given the number of target entities. Ties (duplicate targets
// within one source) are kept; order within each inverted bucket is by
// ascending source id, so the inversion is deterministic.
func Invert(down Adj, ntargets int) Adj {
	counts := make([]int32, ntargets+1)
	for _, t := range down.AB2B {
		counts[t+1]++
	}
	for i := 0; i < ntargets; i++ {
		counts[i+1] += counts[i]
	}
	a2ab := counts
	cursor := append([]int32(nil), a2ab...)
	ab2b := make([]int32, len(down.AB2B))
	nsrc := len(down.A2AB) - 1
	for s := 0; s < nsrc; s++ {
		for _, t := range down.Targets(s) {
			ab2b[cursor[t]] = int32(s)
			cursor[t]++
		}
	}
	return Adj{A2AB: a2ab, AB2B: ab2b}
}

// ReduceOp enumerates the supported reduction operators.
type ReduceOp int

const (
	ReduceSum ReduceOp = iota
	ReduceMax
	ReduceMin
	ReduceAnd
)

// XferType selects how a tag's values are carried through a cavity rewrite.
type XferType int

const (
	XferInherit XferType = iota
	XferMetric
	XferMomentum
	XferNone
)

// OutputType is the element type a tag's values are stored as.
type OutputType int

const (
	OutF64 OutputType = iota
	OutI8
	OutI32
	OutI64
)

// PartingMode selects the ghost layer policy SetParting governs.
type PartingMode int

const (
	PartingElements PartingMode = iota
	PartingGhosted
)

// Remote identifies the owning copy of a non-owned entity.
type Remote struct {
	Rank  int
	Local int32
}

// Tag is a typed, width-stamped buffer attached to entities of one
// dimension.
type Tag struct {
	Name   string
	Width  int
	Xfer   XferType
	Out    OutputType
	Reals  []float64
	I8s    []int8
	I32s   []int32
	I64s   []int64
}

// Len returns the number of entities the tag covers.
func (t Tag) Len() int {
	if t.Width == 0 {
		return 0
	}
	switch t.Out {
	case OutI8:
		return len(t.I8s) / t.Width
	case OutI32:
		return len(t.I32s) / t.Width
	case OutI64:
		return len(t.I64s) / t.Width
	default:
		return len(t.Reals) / t.Width
	}
}
