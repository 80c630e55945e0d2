// Package smooth provides the geometric-smoothing half of the adaptation
// pipeline: a Laplacian field solver over the vertex star and a
// quality-gated vertex-position smoother bounded by the MaxMotionAllowed
// option.
package smooth

import (
	"math"

	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/quality"
)

func symDofs(dim int) int { return dim * (dim + 1) / 2 }

// interiorVerts marks the vertices classified to the model interior (the
// mesh's top dimension). Meshes with no "class_dim" tag are treated as
// wholly interior, matching internal/candidate's convention.
func interiorVerts(mesh *meshmodel.Mesh) []bool {
	dim := mesh.Dim()
	nverts := mesh.NEnts(meshmodel.Vert)
	out := make([]bool, nverts)
	tag, ok := mesh.GetArray(meshmodel.Vert, "class_dim")
	for v := 0; v < nverts; v++ {
		out[v] = !ok || int(tag.I8s[v]) == dim
	}
	return out
}

// areClose reports whether two equally-sized buffers agree entrywise to
// within tol absolute plus floor-scaled relative tolerance.
func areClose(a, b []float64, tol, floor float64) bool {
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > tol+floor*math.Abs(b[i]) {
			return false
		}
	}
	return true
}

// SolveLaplacian iterates width-component vertex values toward the
// star-average fixed point, holding boundary (non-interior-classified)
// vertices at their initial values, until successive states agree to within
// tol/floor across all ranks. Returns the converged state and the iteration
// count.
func SolveLaplacian(mesh *meshmodel.Mesh, initial []float64, width int, tol, floor float64) ([]float64, int) {
	nverts := mesh.NEnts(meshmodel.Vert)
	star := mesh.AskStar(meshmodel.Vert)
	interior := interiorVerts(mesh)
	c := mesh.Comm()

	state := append([]float64(nil), initial...)
	niters := 0
	for {
		next := make([]float64, len(state))
		for v := 0; v < nverts; v++ {
			if !interior[v] || star.Degree(v) == 0 {
				copy(next[v*width:v*width+width], state[v*width:v*width+width])
				continue
			}
			for _, u := range star.Targets(v) {
				for k := 0; k < width; k++ {
					next[v*width+k] += state[int(u)*width+k]
				}
			}
			inv := 1.0 / float64(star.Degree(v))
			for k := 0; k < width; k++ {
				next[v*width+k] *= inv
			}
		}
		synced := mesh.SyncArray(meshmodel.Vert, meshmodel.Tag{Reals: next, Width: width}, width)
		next = synced.Reals
		done := c.ReduceAnd(areClose(state, next, tol, floor))
		state = next
		niters++
		if done {
			return state, niters
		}
	}
}

// worstStarQuality returns the minimum metricized quality over the cells
// incident to vertex v, evaluating vertex v at the candidate position pos
// instead of its stored coordinate.
func worstStarQuality(mesh *meshmodel.Mesh, vertMetrics, coords []float64, vertCells meshmodel.Adj, cellVerts meshmodel.Adj, v int, pos []float64) float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	worst := math.Inf(1)
	point := func(u int32) []float64 {
		if int(u) == v {
			return pos
		}
		return coords[int(u)*dim : int(u)*dim+dim]
	}
	for _, c := range vertCells.Targets(v) {
		verts := cellVerts.Targets(int(c))
		var q float64
		if dim == 2 {
			var p [3][2]float64
			var ms [3][]float64
			for i, u := range verts {
				x := point(u)
				p[i] = [2]float64{x[0], x[1]}
				ms[i] = vertMetrics[int(u)*w : int(u)*w+w]
			}
			q = quality.TriangleQualityMetric(p, ms)
		} else {
			var p [4][3]float64
			var ms [4][]float64
			for i, u := range verts {
				x := point(u)
				p[i] = [3]float64{x[0], x[1], x[2]}
				ms[i] = vertMetrics[int(u)*w : int(u)*w+w]
			}
			q = quality.TetQualityMetric(p, ms)
		}
		if q < worst {
			worst = q
		}
	}
	return worst
}

// SmoothPositions moves interior vertices toward their star-average
// position, one sweep in ascending vertex order, clamping each displacement
// to maxMotion and keeping a move only when it strictly improves the worst
// quality of the vertex's cell star. Only vertices touching a cell below
// qualityTrigger are considered, so the sweep quiesces once the mesh is good
// enough. Returns the rebuilt mesh and whether any vertex moved.
func SmoothPositions(mesh *meshmodel.Mesh, vertMetrics []float64, maxMotion, qualityTrigger float64) (*meshmodel.Mesh, bool) {
	dim := mesh.Dim()
	cellDim := meshmodel.CellDim(dim)
	nverts := mesh.NEnts(meshmodel.Vert)
	star := mesh.AskStar(meshmodel.Vert)
	vertCells := mesh.AskUp(meshmodel.Vert, cellDim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	interior := interiorVerts(mesh)

	coords := append([]float64(nil), mesh.Coords()...)
	moved := false
	target := make([]float64, dim)
	for v := 0; v < nverts; v++ {
		if !interior[v] || star.Degree(v) == 0 {
			continue
		}
		old := coords[v*dim : v*dim+dim]
		before := worstStarQuality(mesh, vertMetrics, coords, vertCells, cellVerts, v, old)
		if before >= qualityTrigger {
			continue
		}
		for d := range target {
			target[d] = 0
		}
		for _, u := range star.Targets(v) {
			for d := 0; d < dim; d++ {
				target[d] += coords[int(u)*dim+d]
			}
		}
		inv := 1.0 / float64(star.Degree(v))
		motion := 0.0
		for d := 0; d < dim; d++ {
			target[d] = target[d]*inv - old[d]
			motion += target[d] * target[d]
		}
		motion = math.Sqrt(motion)
		scale := 1.0
		if motion > maxMotion && motion > 0 {
			scale = maxMotion / motion
		}
		pos := make([]float64, dim)
		for d := 0; d < dim; d++ {
			pos[d] = old[d] + scale*target[d]
		}
		after := worstStarQuality(mesh, vertMetrics, coords, vertCells, cellVerts, v, pos)
		if after > before {
			copy(old, pos)
			moved = true
		}
	}
	if !moved {
		return mesh, false
	}

	ncells := mesh.NEnts(cellDim)
	newCellVerts := make([][]int32, ncells)
	for c := 0; c < ncells; c++ {
		newCellVerts[c] = append([]int32(nil), cellVerts.Targets(c)...)
	}
	out := meshmodel.New(dim, coords, newCellVerts)
	out.SetComm(mesh.Comm())
	out.SetCurveEvaluator(mesh.CurveEvaluator())
	return out, true
}
