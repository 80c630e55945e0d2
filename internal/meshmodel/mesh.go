package meshmodel

import (
	"fmt"
	"sort"

	"github.com/notargets/meshadapt/internal/comm"
)

// Mesh is the mesh container: flat buffers, CSR upward adjacency, a
// per-dimension tag map, and remote-ownership records for non-owned
// copies.
type Mesh struct {
	dim    int
	coords []float64 // nverts*dim

	// downward adjacency, keyed by (hi,lo) entity-dimension pair
	down map[[2]int]Adj
	nent map[int]int // entity count per dimension

	tags map[int]map[string]Tag // tags[dim][name]

	remotes map[int][]Remote // non-owned copies per dimension; nil entry means owned

	curve CurveEvaluator
	comm  comm.Comm
}

// New builds a mesh from its top-dimensional connectivity: vertex
// coordinates (flat, nverts*dim) and cell-to-vertex connectivity (each cell
// dim+1 vertex ids). Edge and, in 3D, face connectivity are derived.
func New(dim int, coords []float64, cellVerts [][]int32) *Mesh {
	if dim != 2 && dim != 3 {
		panic(fmt.Sprintf("meshmodel.New: dim must be 2 or 3, got %d", dim))
	}
	nverts := len(coords) / dim
	m := &Mesh{
		dim:     dim,
		coords:  coords,
		down:    map[[2]int]Adj{},
		nent:    map[int]int{Vert: nverts},
		tags:    map[int]map[string]Tag{},
		remotes: map[int][]Remote{},
		curve:   LinearEvaluator{},
		comm:    comm.NewSerial(),
	}
	cellDim := CellDim(dim)
	m.nent[cellDim] = len(cellVerts)
	m.down[[2]int{cellDim, Vert}] = AdjFromUniform(cellVerts)

	edgeVerts, cellEdges := deriveEdges(dim, cellVerts)
	m.nent[Edge] = len(edgeVerts)
	m.down[[2]int{Edge, Vert}] = AdjFromUniform(edgeVerts)
	m.down[[2]int{cellDim, Edge}] = AdjFromUniform(cellEdges)

	if dim == 3 {
		faceVerts, cellFaces := deriveFaces(cellVerts)
		m.nent[Face] = len(faceVerts)
		m.down[[2]int{Face, Vert}] = AdjFromUniform(faceVerts)
		m.down[[2]int{cellDim, Face}] = AdjFromUniform(cellFaces)
	}
	return m
}

func (m *Mesh) Dim() int { return m.dim }

func (m *Mesh) NEnts(dim int) int { return m.nent[dim] }

func (m *Mesh) Coords() []float64 { return m.coords }

// AskDown returns the downward adjacency hi->lo that New derived and stored.
// It builds nothing by composition: asking for a pair New did not store
// panics.
func (m *Mesh) AskDown(hi, lo int) Adj {
	if a, ok := m.down[[2]int{hi, lo}]; ok {
		return a
	}
	panic(fmt.Sprintf("meshmodel.AskDown: no stored relation %d->%d", hi, lo))
}

// AskUp returns the upward adjacency lo->hi, inverting the stored downward
// relation on first use... this implementation computes it fresh each call,
// since a published Mesh is immutable and cheap to query a handful of times
// per pass.
func (m *Mesh) AskUp(lo, hi int) Adj {
	down := m.AskDown(hi, lo)
	return Invert(down, m.nent[lo])
}

// AskStar returns the vertex-to-vertex adjacency at the given dimension via
// shared edges. Gradation limiting and the Laplacian solver walk this.
func (m *Mesh) AskStar(dim int) Adj {
	if dim != Vert {
		panic("meshmodel.AskStar: only vertex stars are supported")
	}
	edgeVerts := m.AskDown(Edge, Vert)
	nverts := m.nent[Vert]
	adjSets := make([]map[int32]bool, nverts)
	for v := range adjSets {
		adjSets[v] = map[int32]bool{}
	}
	nedges := len(edgeVerts.A2AB) - 1
	for e := 0; e < nedges; e++ {
		ev := edgeVerts.Targets(e)
		a, b := ev[0], ev[1]
		adjSets[a][b] = true
		adjSets[b][a] = true
	}
	a2ab := make([]int32, nverts+1)
	var ab2b []int32
	for v := 0; v < nverts; v++ {
		a2ab[v] = int32(len(ab2b))
		neighbors := make([]int32, 0, len(adjSets[v]))
		for n := range adjSets[v] {
			neighbors = append(neighbors, n)
		}
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		ab2b = append(ab2b, neighbors...)
	}
	a2ab[nverts] = int32(len(ab2b))
	return Adj{A2AB: a2ab, AB2B: ab2b}
}

// AskDual returns cell-to-cell adjacency across shared facets (sliver
// marking, indset.CollectBufferedCells and the partitioner's METIS graph
// build on this).
func (m *Mesh) AskDual() Adj {
	cellDim := CellDim(m.dim)
	facetDim := cellDim - 1
	cellFacets := m.AskDown(cellDim, facetDim)
	facetCells := Invert(cellFacets, m.nent[facetDim])

	ncells := m.nent[cellDim]
	a2ab := make([]int32, ncells+1)
	var ab2b []int32
	for c := 0; c < ncells; c++ {
		a2ab[c] = int32(len(ab2b))
		for _, f := range cellFacets.Targets(c) {
			for _, nc := range facetCells.Targets(int(f)) {
				if int(nc) != c {
					ab2b = append(ab2b, nc)
				}
			}
		}
	}
	a2ab[ncells] = int32(len(ab2b))
	return Adj{A2AB: a2ab, AB2B: ab2b}
}

func (m *Mesh) GetArray(dim int, name string) (Tag, bool) {
	t, ok := m.tags[dim][name]
	return t, ok
}

func (m *Mesh) AddTag(dim int, name string, width int, xfer XferType, out OutputType, data Tag) {
	if m.tags[dim] == nil {
		m.tags[dim] = map[string]Tag{}
	}
	data.Name, data.Width, data.Xfer, data.Out = name, width, xfer, out
	m.tags[dim][name] = data
}

func (m *Mesh) RemoveTag(dim int, name string) {
	delete(m.tags[dim], name)
}

func (m *Mesh) HasTag(dim int, name string) bool {
	_, ok := m.tags[dim][name]
	return ok
}

func (m *Mesh) SetParting(mode PartingMode, nlayers int) {
	// Single-rank meshes have no ghost layers to (re)build; recorded for
	// interface conformance and for a future distributed implementation.
}

// SyncArray broadcasts the owner's values to all copies. On a single-rank
// mesh every entity is its own owner, so this is the identity.
func (m *Mesh) SyncArray(dim int, data Tag, width int) Tag {
	if len(m.remotes[dim]) == 0 {
		return data
	}
	panic("meshmodel.SyncArray: multi-rank sync not implemented")
}

func (m *Mesh) SyncSubsetArray(dim int, data Tag, subset []int32, fill float64, width int) Tag {
	if len(m.remotes[dim]) == 0 {
		return data
	}
	panic("meshmodel.SyncSubsetArray: multi-rank sync not implemented")
}

func (m *Mesh) ReduceArray(dim int, data Tag, width int, op ReduceOp) Tag {
	if len(m.remotes[dim]) == 0 {
		return data
	}
	panic("meshmodel.ReduceArray: multi-rank reduce not implemented")
}

func (m *Mesh) OwnersHaveAllUpward(dim int) bool {
	return true
}

func (m *Mesh) Comm() comm.Comm { return m.comm }

// SetComm overrides the mesh's communicator, used when assembling a
// multi-rank mesh under a non-serial Comm implementation.
func (m *Mesh) SetComm(c comm.Comm) { m.comm = c }

// SetCurveEvaluator installs the geometric-classification projector used
// when splitting a classified edge.
func (m *Mesh) SetCurveEvaluator(c CurveEvaluator) { m.curve = c }

func (m *Mesh) CurveEvaluator() CurveEvaluator { return m.curve }
