package cavity

import (
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/quality"
)

func otherVertex2D(verts []int32, a, b int32) int32 {
	for _, v := range verts {
		if v != a && v != b {
			return v
		}
	}
	panic("cavity.otherVertex2D: edge not found in cell")
}

func triQualityMetric(mesh *meshmodel.Mesh, vertMetrics []float64, verts [3]int32) float64 {
	dim := 2
	w := symDofs(dim)
	coords := mesh.Coords()
	var p [3][2]float64
	var m [3][]float64
	for i, v := range verts {
		x := coords[int(v)*dim : int(v)*dim+dim]
		p[i] = [2]float64{x[0], x[1]}
		m[i] = vertMetric(vertMetrics, w, int(v))
	}
	return quality.TriangleQualityMetric(p, m)
}

// orientTri2D flips a triangle's vertex order if needed so its signed area
// is positive.
func orientTri2D(mesh *meshmodel.Mesh, verts [3]int32) [3]int32 {
	coords := mesh.Coords()
	p := func(v int32) [2]float64 {
		x := coords[int(v)*2 : int(v)*2+2]
		return [2]float64{x[0], x[1]}
	}
	if quality.TriangleSignedArea(p(verts[0]), p(verts[1]), p(verts[2])) < 0 {
		return [3]int32{verts[0], verts[2], verts[1]}
	}
	return verts
}

// Swap2D flips every selected interior edge to the quad's other diagonal,
// provided the new minimum quality strictly improves on both the old
// minimum and minQualityAllowed. An edge that fails
// the improvement test, or is not interior (exactly 2 incident triangles),
// is left unswapped. fired reports whether at least one edge actually
// flipped, the adapt driver's pass-level "fired" contract.
func Swap2D(mesh *meshmodel.Mesh, vertMetrics []float64, candidateEdges []int, minQualityAllowed float64) (out *meshmodel.Mesh, fired bool) {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	edgeCells := mesh.AskUp(meshmodel.Edge, meshmodel.Face)
	cellVerts := mesh.AskDown(meshmodel.Face, meshmodel.Vert)
	ncells := mesh.NEnts(meshmodel.Face)
	coords := mesh.Coords()

	dead := make([]bool, ncells)
	var extra [][]int32

	for _, e := range candidateEdges {
		cells := edgeCells.Targets(e)
		if len(cells) != 2 {
			continue
		}
		c0, c1 := int(cells[0]), int(cells[1])
		if dead[c0] || dead[c1] {
			continue
		}
		ev := edgeVerts.Targets(e)
		a, b := ev[0], ev[1]
		apex0 := otherVertex2D(cellVerts.Targets(c0), a, b)
		apex1 := otherVertex2D(cellVerts.Targets(c1), a, b)

		oldMin := triQualityMetric(mesh, vertMetrics, orientTri2D(mesh, [3]int32{a, apex0, b}))
		if q := triQualityMetric(mesh, vertMetrics, orientTri2D(mesh, [3]int32{apex1, a, b})); q < oldMin {
			oldMin = q
		}

		t1 := orientTri2D(mesh, [3]int32{a, apex0, apex1})
		t2 := orientTri2D(mesh, [3]int32{apex0, b, apex1})
		newMin := triQualityMetric(mesh, vertMetrics, t1)
		if q := triQualityMetric(mesh, vertMetrics, t2); q < newMin {
			newMin = q
		}

		if newMin <= oldMin || newMin <= minQualityAllowed {
			continue
		}
		dead[c0], dead[c1] = true, true
		fired = true
		extra = append(extra, []int32{t1[0], t1[1], t1[2]}, []int32{t2[0], t2[1], t2[2]})
	}

	if !fired {
		return mesh, false
	}

	var newCellVerts [][]int32
	for c := 0; c < ncells; c++ {
		if dead[c] {
			continue
		}
		newCellVerts = append(newCellVerts, append([]int32(nil), cellVerts.Targets(c)...))
	}
	newCellVerts = append(newCellVerts, extra...)

	return meshmodel.New(2, coords, newCellVerts), true
}
