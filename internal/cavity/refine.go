// Package cavity implements the local topology-rewrite operators:
// refine (edge split), coarsen (edge collapse), and swap (2D
// edge flip, 3D Klincsek-style link retriangulation). Every operator
// assumes its candidate keys already passed through internal/indset, which
// guarantees selected cavities never share a cell — so each cell is
// rewritten by at most one key, and the operators below can process every
// selected key independently in a single pass before rebuilding the mesh.
package cavity

import (
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/metric"
)

func symDofs(dim int) int { return dim * (dim + 1) / 2 }

func vertMetric(vertMetrics []float64, w, v int) []float64 {
	return vertMetrics[v*w : v*w+w]
}

// triOpposite[localEdge] is the local vertex index opposite triCellEdges'
// localEdge-th edge, mirroring meshmodel's triCellEdges = {0,1},{1,2},{2,0}.
var triOpposite = [3]int{2, 0, 1}

// tetOpposite[localEdge] is the pair of local vertex indices NOT in
// tetCellEdges' localEdge-th edge, mirroring meshmodel's tetCellEdges =
// {0,1},{0,2},{0,3},{1,2},{1,3},{2,3}.
var tetOpposite = [6][2]int{{2, 3}, {1, 3}, {1, 2}, {0, 3}, {0, 2}, {0, 1}}

// triLocalEdge mirrors meshmodel's triCellEdges.
var triLocalEdge = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

// tetLocalEdge mirrors meshmodel's tetCellEdges.
var tetLocalEdge = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

// RefineResult carries the rebuilt mesh and the vertex-level old/new maps
// field transfer needs: survivorMap[v] is old vertex v's
// id in the new mesh (the identity, since refine never renumbers survivors),
// and productOf[e] is the new midpoint vertex id created by splitting edge e.
type RefineResult struct {
	Mesh        *meshmodel.Mesh
	VertMetrics []float64
	SurvivorMap []int32
	ProductOf   map[int]int32
}

// Refine splits every selected edge at its geometric (or classification-
// projected) midpoint and bisects each incident cell along that edge.
func Refine(mesh *meshmodel.Mesh, vertMetrics []float64, selectedEdges []int) RefineResult {
	dim := mesh.Dim()
	w := symDofs(dim)
	cellDim := meshmodel.CellDim(dim)
	coords := mesh.Coords()

	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	cellEdges := mesh.AskDown(cellDim, meshmodel.Edge)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	curve := mesh.CurveEvaluator()
	classDimTag, hasClass := mesh.GetArray(meshmodel.Edge, "class_dim")
	classIDTag, hasClassID := mesh.GetArray(meshmodel.Edge, "class_id")

	selected := make(map[int]bool, len(selectedEdges))
	for _, e := range selectedEdges {
		selected[e] = true
	}

	newCoords := append([]float64(nil), coords...)
	newVertMetrics := append([]float64(nil), vertMetrics...)
	nverts := len(coords) / dim
	midOf := make(map[int]int32, len(selected))

	for e := range selected {
		ev := edgeVerts.Targets(e)
		a, b := int(ev[0]), int(ev[1])
		xa := coords[a*dim : a*dim+dim]
		xb := coords[b*dim : b*dim+dim]
		mid := make([]float64, dim)
		for i := 0; i < dim; i++ {
			mid[i] = 0.5 * (xa[i] + xb[i])
		}
		if hasClass && int(classDimTag.I8s[e]) < dim {
			var cid int32
			if hasClassID && classIDTag.I32s != nil {
				cid = classIDTag.I32s[e]
			}
			var p3 [3]float64
			copy(p3[:dim], mid)
			proj := curve.Project(cid, p3)
			copy(mid, proj[:dim])
		}
		newCoords = append(newCoords, mid...)
		avg := metric.AverageMetric(dim, [][]float64{vertMetric(vertMetrics, w, a), vertMetric(vertMetrics, w, b)})
		newVertMetrics = append(newVertMetrics, avg...)
		midOf[e] = int32(nverts)
		nverts++
	}

	ncells := mesh.NEnts(cellDim)
	var newCellVerts [][]int32
	for c := 0; c < ncells; c++ {
		verts := cellVerts.Targets(c)
		edges := cellEdges.Targets(c)
		splitLocal := -1
		for i, e := range edges {
			if selected[int(e)] {
				splitLocal = i
				break
			}
		}
		if splitLocal < 0 {
			newCellVerts = append(newCellVerts, append([]int32(nil), verts...))
			continue
		}
		m := midOf[int(edges[splitLocal])]
		if dim == 2 {
			ij := triLocalEdge[splitLocal]
			k := triOpposite[splitLocal]
			newCellVerts = append(newCellVerts,
				[]int32{verts[ij[0]], m, verts[k]},
				[]int32{m, verts[ij[1]], verts[k]},
			)
		} else {
			ij := tetLocalEdge[splitLocal]
			kl := tetOpposite[splitLocal]
			newCellVerts = append(newCellVerts,
				[]int32{verts[ij[0]], m, verts[kl[0]], verts[kl[1]]},
				[]int32{m, verts[ij[1]], verts[kl[0]], verts[kl[1]]},
			)
		}
	}

	survivorMap := make([]int32, len(coords)/dim)
	for v := range survivorMap {
		survivorMap[v] = int32(v)
	}

	out := meshmodel.New(dim, newCoords, newCellVerts)
	return RefineResult{Mesh: out, VertMetrics: newVertMetrics, SurvivorMap: survivorMap, ProductOf: midOf}
}
