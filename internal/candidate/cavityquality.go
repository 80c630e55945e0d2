package candidate

import (
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/quality"
)

// cavityCells returns the cells surviving a collapse of vCol onto vOnto:
// every cell incident to vCol except the ones that also touch vOnto (those
// collapse to lower dimension and die).
func cavityCells(mesh MeshView, cellDim, vCol, vOnto int) []int32 {
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	var out []int32
	for _, c := range mesh.AskUp(meshmodel.Vert, cellDim).Targets(vCol) {
		verts := cellVerts.Targets(int(c))
		dies := false
		for _, v := range verts {
			if int(v) == vOnto {
				dies = true
				break
			}
		}
		if !dies {
			out = append(out, c)
		}
	}
	return out
}

// cellQualityWithReplacement evaluates a cell's metric quality with vCol's
// position/metric swapped for vOnto's.
func cellQualityWithReplacement(mesh MeshView, vertMetrics []float64, cellDim, c, vCol, vOnto int) float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	coords := mesh.Coords()
	verts := mesh.AskDown(cellDim, meshmodel.Vert).Targets(c)

	point := func(v int) []float64 {
		if v == vCol {
			v = vOnto
		}
		return coords[v*dim : v*dim+dim]
	}
	metricOf := func(v int) []float64 {
		if v == vCol {
			v = vOnto
		}
		return vertMetric(vertMetrics, w, v)
	}

	if dim == 2 {
		var p [3][2]float64
		var m [3][]float64
		for i, v := range verts {
			x := point(int(v))
			p[i] = [2]float64{x[0], x[1]}
			m[i] = metricOf(int(v))
		}
		return quality.TriangleQualityMetric(p, m)
	}
	var p [4][3]float64
	var m [4][]float64
	for i, v := range verts {
		x := point(int(v))
		p[i] = [3]float64{x[0], x[1], x[2]}
		m[i] = metricOf(int(v))
	}
	return quality.TetQualityMetric(p, m)
}

// minCavityQuality returns the worst cell quality in vCol's cavity, both
// before the collapse (as the cavity stands today) and after collapsing
// vCol onto vOnto.
func minCavityQuality(mesh MeshView, vertMetrics []float64, vCol, vOnto int) (before, after float64) {
	dim := mesh.Dim()
	cellDim := meshmodel.CellDim(dim)
	cells := cavityCells(mesh, cellDim, vCol, vOnto)
	before, after = 1, 1
	for _, c := range cells {
		b := cellQualityWithReplacement(mesh, vertMetrics, cellDim, int(c), vCol, vCol)
		a := cellQualityWithReplacement(mesh, vertMetrics, cellDim, int(c), vCol, vOnto)
		if b < before {
			before = b
		}
		if a < after {
			after = a
		}
	}
	return before, after
}

// CollapseQuality returns edge e's resulting cavity quality in whichever
// single direction code still allows (after ChooseRails has left at most one
// direction legal), for use as an independent-set selection priority.
// ok is false if
// code disallows both directions.
func CollapseQuality(mesh MeshView, vertMetrics []float64, e int, code CollapseCode) (vCol, vOnto int, quality float64, ok bool) {
	ev := mesh.AskDown(meshmodel.Edge, meshmodel.Vert).Targets(e)
	for eev := 0; eev < 2; eev++ {
		if !code.Collapses(eev) {
			continue
		}
		vCol, vOnto = int(ev[eev]), int(ev[1-eev])
		_, after := minCavityQuality(mesh, vertMetrics, vCol, vOnto)
		return vCol, vOnto, after, true
	}
	return 0, 0, 0, false
}

// FilterCoarsenMinQuality disallows a collapse direction whenever the
// resulting cavity's worst element quality would fall below minQuality.
func FilterCoarsenMinQuality(mesh MeshView, vertMetrics []float64, cands []int, codes []CollapseCode, minQuality float64) []CollapseCode {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]CollapseCode, len(codes))
	for i, e := range cands {
		code := codes[i]
		ev := edgeVerts.Targets(e)
		for eev := 0; eev < 2; eev++ {
			if !code.Collapses(eev) {
				continue
			}
			vCol, vOnto := int(ev[eev]), int(ev[1-eev])
			_, after := minCavityQuality(mesh, vertMetrics, vCol, vOnto)
			if after < minQuality {
				code = dontCollapseDir(code, eev)
			}
		}
		out[i] = code
	}
	return out
}

// FilterCoarsenImprove disallows a collapse direction unless it does not
// make the cavity's worst element quality any worse than it already is —
// used for the sliver-coarsening pass, where a collapse is only wanted if
// it helps.
func FilterCoarsenImprove(mesh MeshView, vertMetrics []float64, cands []int, codes []CollapseCode) []CollapseCode {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]CollapseCode, len(codes))
	for i, e := range cands {
		code := codes[i]
		ev := edgeVerts.Targets(e)
		for eev := 0; eev < 2; eev++ {
			if !code.Collapses(eev) {
				continue
			}
			vCol, vOnto := int(ev[eev]), int(ev[1-eev])
			before, after := minCavityQuality(mesh, vertMetrics, vCol, vOnto)
			if after < before {
				code = dontCollapseDir(code, eev)
			}
		}
		out[i] = code
	}
	return out
}
