package cavity

import "github.com/notargets/meshadapt/internal/meshmodel"

// CoarsenResult carries the rebuilt mesh and the vertex-level old->new map
// field transfer needs: every surviving vertex's new id,
// and every collapsed vertex's target's new id (so a tag is simply gathered
// through this map with no separate "collapsed" case).
type CoarsenResult struct {
	Mesh        *meshmodel.Mesh
	VertMetrics []float64
	OldToNew    []int32
}

// Coarsen collapses every key in collapses (vCol -> vOnto) by removing cells
// that touch both endpoints and rewiring cells touching only vCol to vOnto
// instead (classification/exposure/overshoot gating and rail choice have
// already fixed each key's direction).
func Coarsen(mesh *meshmodel.Mesh, vertMetrics []float64, collapses map[int]int) CoarsenResult {
	dim := mesh.Dim()
	w := symDofs(dim)
	cellDim := meshmodel.CellDim(dim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	ncells := mesh.NEnts(cellDim)
	coords := mesh.Coords()
	nverts := mesh.NEnts(meshmodel.Vert)

	oldToNewIdx := make([]int32, nverts)
	var newCoords, newVertMetrics []float64
	next := int32(0)
	for v := 0; v < nverts; v++ {
		if _, dead := collapses[v]; dead {
			continue
		}
		oldToNewIdx[v] = next
		newCoords = append(newCoords, coords[v*dim:v*dim+dim]...)
		newVertMetrics = append(newVertMetrics, vertMetrics[v*w:v*w+w]...)
		next++
	}
	resolve := func(v int) int32 {
		if onto, dead := collapses[v]; dead {
			return oldToNewIdx[onto]
		}
		return oldToNewIdx[v]
	}
	for v := 0; v < nverts; v++ {
		if _, dead := collapses[v]; dead {
			oldToNewIdx[v] = resolve(v)
		}
	}

	var newCellVerts [][]int32
	for c := 0; c < ncells; c++ {
		verts := cellVerts.Targets(c)
		mapped := make([]int32, len(verts))
		seen := map[int32]bool{}
		degenerate := false
		for i, v := range verts {
			nv := resolve(int(v))
			mapped[i] = nv
			if seen[nv] {
				degenerate = true
			}
			seen[nv] = true
		}
		if degenerate {
			continue
		}
		newCellVerts = append(newCellVerts, mapped)
	}

	out := meshmodel.New(dim, newCoords, newCellVerts)
	return CoarsenResult{Mesh: out, VertMetrics: newVertMetrics, OldToNew: oldToNewIdx}
}
