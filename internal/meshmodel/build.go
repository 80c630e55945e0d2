package meshmodel

// edgeKey canonically orders a vertex pair so shared edges across cells
// collapse to one entry.
func edgeKey(a, b int32) [2]int32 {
	if a < b {
		return [2]int32{a, b}
	}
	return [2]int32{b, a}
}

// triCellEdges lists the 3 local edges of a triangle in a fixed order.
var triCellEdges = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

// tetCellEdges lists the 6 local edges of a tet in a fixed order.
var tetCellEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

// tetCellFaces lists the 4 local faces of a tet, each 3 local vertex ids.
var tetCellFaces = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}

// deriveEdges builds the global edge list and each cell's local->global edge
// ids, deduplicating shared edges by canonical vertex-pair key.
func deriveEdges(dim int, cellVerts [][]int32) (edgeVerts [][]int32, cellEdges [][]int32) {
	var locals [][2]int
	if dim == 3 {
		locals = tetCellEdges[:]
	} else {
		locals = triCellEdges[:]
	}
	index := map[[2]int32]int32{}
	cellEdges = make([][]int32, len(cellVerts))
	for c, verts := range cellVerts {
		cellEdges[c] = make([]int32, len(locals))
		for i, lv := range locals {
			a, b := verts[lv[0]], verts[lv[1]]
			key := edgeKey(a, b)
			id, ok := index[key]
			if !ok {
				id = int32(len(edgeVerts))
				index[key] = id
				edgeVerts = append(edgeVerts, []int32{key[0], key[1]})
			}
			cellEdges[c][i] = id
		}
	}
	return edgeVerts, cellEdges
}

// faceKey canonically orders a vertex triple.
func faceKey(a, b, c int32) [3]int32 {
	v := [3]int32{a, b, c}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2-i; j++ {
			if v[j] > v[j+1] {
				v[j], v[j+1] = v[j+1], v[j]
			}
		}
	}
	return v
}

// deriveFaces builds the global triangular-face list and each tet's
// local->global face ids (3D only).
func deriveFaces(cellVerts [][]int32) (faceVerts [][]int32, cellFaces [][]int32) {
	index := map[[3]int32]int32{}
	cellFaces = make([][]int32, len(cellVerts))
	for c, verts := range cellVerts {
		cellFaces[c] = make([]int32, 4)
		for i, lf := range tetCellFaces {
			a, b, cc := verts[lf[0]], verts[lf[1]], verts[lf[2]]
			key := faceKey(a, b, cc)
			id, ok := index[key]
			if !ok {
				id = int32(len(faceVerts))
				index[key] = id
				faceVerts = append(faceVerts, []int32{key[0], key[1], key[2]})
			}
			cellFaces[c][i] = id
		}
	}
	return faceVerts, cellFaces
}
