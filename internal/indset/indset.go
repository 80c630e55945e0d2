// Package indset implements the independent-set cavity scheduler:
// build the conflict graph over a candidate set, then select the
// priority-dominating subset via one round of the Luby/Jones-Plassmann rule.
package indset

import (
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/core"

	"github.com/notargets/meshadapt/internal/comm"
	"github.com/notargets/meshadapt/internal/meshmodel"
)

// Candidate is one entity competing for a cavity slot: ID is the global id
// used as the deterministic tiebreaker, Priority is the cavity/collapse
// quality that ranks it against its conflicts.
type Candidate struct {
	ID       int
	Priority float64
}

func vertexID(id int) string { return strconv.Itoa(id) }

// BuildConflictGraph builds the conflict graph on cands: conflictsOf(i) must
// return the indices into cands of every other candidate whose cavity
// overlaps cands[i]'s: share a cell in the star, or in the buffer-extended
// star for vertex collapses.
func BuildConflictGraph(cands []Candidate, conflictsOf func(i int) []int) *core.Graph {
	g := core.NewGraph()
	for _, c := range cands {
		_ = g.AddVertex(vertexID(c.ID))
	}
	seen := map[[2]int]bool{}
	for i := range cands {
		for _, j := range conflictsOf(i) {
			if i == j {
				continue
			}
			a, b := i, j
			if a > b {
				a, b = b, a
			}
			if seen[[2]int{a, b}] {
				continue
			}
			seen[[2]int{a, b}] = true
			_, _ = g.AddEdge(vertexID(cands[a].ID), vertexID(cands[b].ID), 0)
		}
	}
	return g
}

// Select runs one round of the Luby/Jones-Plassmann priority-domination
// rule: a candidate is selected iff its priority strictly
// dominates (ties broken by the larger id) every conflict-graph neighbor.
// One round suffices because strict domination among the current candidates
// is antisymmetric — the priority-maximum candidate always has no
// higher-priority neighbor and so is always selected.
func Select(g *core.Graph, cands []Candidate) []bool {
	byID := make(map[string]int, len(cands))
	for i, c := range cands {
		byID[vertexID(c.ID)] = i
	}
	out := make([]bool, len(cands))
	for i, c := range cands {
		neighbors, err := g.NeighborIDs(vertexID(c.ID))
		if err != nil {
			panic(err)
		}
		selected := true
		for _, nid := range neighbors {
			if !dominates(c, cands[byID[nid]]) {
				selected = false
				break
			}
		}
		out[i] = selected
	}
	return out
}

func dominates(a, b Candidate) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID > b.ID
}

// MeshView is the subset of meshmodel.Mesh the conflict-relation helpers
// need.
type MeshView interface {
	Dim() int
	AskUp(lo, hi int) meshmodel.Adj
	AskDown(hi, lo int) meshmodel.Adj
}

// EdgeConflicts returns, for each candidate edge (indexed as in cands), the
// indices of every other candidate sharing an incident cell, the conflict
// relation used for refine and swap keys.
func EdgeConflicts(mesh MeshView, cands []int) [][]int {
	cellDim := meshmodel.CellDim(mesh.Dim())
	edgeCells := mesh.AskUp(meshmodel.Edge, cellDim)
	cellEdges := mesh.AskDown(cellDim, meshmodel.Edge)

	idxOf := make(map[int]int, len(cands))
	for i, e := range cands {
		idxOf[e] = i
	}

	out := make([][]int, len(cands))
	for i, e := range cands {
		seen := map[int]bool{}
		for _, c := range edgeCells.Targets(e) {
			for _, e2 := range cellEdges.Targets(int(c)) {
				if int(e2) == e {
					continue
				}
				j, ok := idxOf[int(e2)]
				if ok && !seen[j] {
					seen[j] = true
					out[i] = append(out[i], j)
				}
			}
		}
	}
	return out
}

// VertexCollapseConflicts returns, for each coarsen candidate (indexed as in
// cands, with collapsedVert(i) giving the vertex that candidate i removes),
// the indices of every other candidate sharing a cell in that vertex's full
// star. A collapse's cavity is every cell touching the removed vertex, wider
// than the candidate edge's own two incident cells, so this is a distinct,
// wider conflict relation than EdgeConflicts.
func VertexCollapseConflicts(mesh MeshView, cands []int, collapsedVert func(i int) int) [][]int {
	cellDim := meshmodel.CellDim(mesh.Dim())
	vertCells := mesh.AskUp(meshmodel.Vert, cellDim)

	cellToCands := map[int][]int{}
	for i := range cands {
		v := collapsedVert(i)
		for _, c := range vertCells.Targets(v) {
			cellToCands[int(c)] = append(cellToCands[int(c)], i)
		}
	}
	out := make([][]int, len(cands))
	seen := make([]map[int]bool, len(cands))
	for i := range seen {
		seen[i] = map[int]bool{}
	}
	for _, idxs := range cellToCands {
		for _, i := range idxs {
			for _, j := range idxs {
				if i == j || seen[i][j] {
					continue
				}
				seen[i][j] = true
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}

// CollectBufferedCells returns every cell reachable from seeds within
// nlayers hops of the dual graph, used to extend a conflict relation across a distributed mesh's ghost
// layer before selection.
func CollectBufferedCells(dual meshmodel.Adj, seeds []int, nlayers int) []int {
	in := make(map[int]bool, len(seeds))
	for _, s := range seeds {
		in[s] = true
	}
	frontier := append([]int(nil), seeds...)
	for l := 0; l < nlayers; l++ {
		var next []int
		for _, c := range frontier {
			for _, nb := range dual.Targets(c) {
				if !in[int(nb)] {
					in[int(nb)] = true
					next = append(next, int(nb))
				}
			}
		}
		frontier = next
	}
	out := make([]int, 0, len(in))
	for c := range in {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// SyncBufferedConflicts merges buffer-layer conflicts discovered locally
// with the conflicts visible to neighboring ranks. A single-rank
// communicator has no ghost boundary,
// so every conflict is already local and this is the identity.
func SyncBufferedConflicts(c comm.Comm, conflicts [][]int) [][]int {
	if c.Size() == 1 {
		return conflicts
	}
	panic("indset.SyncBufferedConflicts: multi-rank buffer sync not implemented")
}
