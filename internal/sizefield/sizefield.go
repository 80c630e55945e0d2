// Package sizefield implements the size-field services:
// element-center/vertex metric projection, gradation limiting, and
// target-element-count scaling.
package sizefield

import (
	"math"

	"github.com/notargets/meshadapt/internal/comm"
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/metric"
	"github.com/notargets/meshadapt/internal/quality"
)

// MeshView is the subset of meshmodel.Mesh the size-field services need.
type MeshView interface {
	Dim() int
	NEnts(dim int) int
	Coords() []float64
	AskDown(hi, lo int) meshmodel.Adj
	AskUp(lo, hi int) meshmodel.Adj
	AskStar(dim int) meshmodel.Adj
	Comm() comm.Comm
}

func symDofs(dim int) int { return dim * (dim + 1) / 2 }

func gatherSym(buf []float64, w, i int) []float64 { return buf[i*w : i*w+w] }

// Mident computes the element-center metric for every cell by gathering its
// dim+1 vertex metrics, linearizing, averaging, and delinearizing.
func Mident(mesh MeshView, vertMetrics []float64) []float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	cellDim := meshmodel.CellDim(dim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	ncells := mesh.NEnts(cellDim)
	out := make([]float64, ncells*w)
	for c := 0; c < ncells; c++ {
		verts := cellVerts.Targets(c)
		ms := make([][]float64, len(verts))
		for i, v := range verts {
			ms[i] = gatherSym(vertMetrics, w, int(v))
		}
		copy(out[c*w:c*w+w], metric.AverageMetric(dim, ms))
	}
	return out
}

// elementSize returns the unsigned volume (3D) or area (2D) of cell c, used
// as ProjectMetrics' averaging weight.
func elementSize(mesh MeshView, dim, c int, cellVerts meshmodel.Adj) float64 {
	coords := mesh.Coords()
	verts := cellVerts.Targets(c)
	point := func(v int32) []float64 { return coords[int(v)*dim : int(v)*dim+dim] }
	if dim == 2 {
		p0, p1, p2 := point(verts[0]), point(verts[1]), point(verts[2])
		a := quality.TriangleSignedArea([2]float64{p0[0], p0[1]}, [2]float64{p1[0], p1[1]}, [2]float64{p2[0], p2[1]})
		return math.Abs(a)
	}
	p0, p1, p2, p3 := point(verts[0]), point(verts[1]), point(verts[2]), point(verts[3])
	v := quality.TetSignedVolume(
		[3]float64{p0[0], p0[1], p0[2]}, [3]float64{p1[0], p1[1], p1[2]},
		[3]float64{p2[0], p2[1], p2[2]}, [3]float64{p3[0], p3[1], p3[2]})
	return math.Abs(v)
}

// ProjectMetrics projects a per-cell metric field down to vertices: each
// vertex's metric is the element-size-weighted average (in the log domain)
// of its incident cells' metrics.
func ProjectMetrics(mesh MeshView, cellMetrics []float64) []float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	cellDim := meshmodel.CellDim(dim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	vertCells := mesh.AskUp(meshmodel.Vert, cellDim)
	nverts := mesh.NEnts(meshmodel.Vert)

	linear := metric.LinearizeMetrics(dim, cellMetrics)

	out := make([]float64, nverts*w)
	for v := 0; v < nverts; v++ {
		cells := vertCells.Targets(v)
		acc := make([]float64, w)
		totalWeight := 0.0
		for _, c := range cells {
			weight := elementSize(mesh, dim, int(c), cellVerts)
			lm := gatherSym(linear, w, int(c))
			for i := range acc {
				acc[i] += weight * lm[i]
			}
			totalWeight += weight
		}
		if totalWeight > 0 {
			for i := range acc {
				acc[i] /= totalWeight
			}
		}
		copy(out[v*w:v*w+w], metric.DelinearizeMetric(dim, acc))
	}
	return out
}

// SmoothMetricOnce is the round trip Mident -> ProjectMetrics, used to
// smooth a per-vertex metric field by one element-averaging pass.
func SmoothMetricOnce(mesh MeshView, vertMetrics []float64) []float64 {
	return ProjectMetrics(mesh, Mident(mesh, vertMetrics))
}

// convergenceAbsTol/RelTol bound the gradation-limiting fixed point: a
// full pass must produce no change larger than the absolute+relative
// tolerance.
const (
	convergenceAbsTol = 1e-9
	convergenceRelTol = 1e-6
)

// LimitGradation repeatedly intersects each vertex's metric with every star
// neighbor's distance-limited metric until a full pass makes no further
// change, then returns the fixed point.
func LimitGradation(mesh MeshView, vertMetrics []float64, maxRate float64) []float64 {
	if maxRate < 1.0 {
		panic("sizefield.LimitGradation: maxRate must be >= 1")
	}
	current := vertMetrics
	for {
		next := limitOnce(mesh, current, maxRate)
		converged := mesh.Comm().ReduceAnd(closeEnough(current, next))
		current = next
		if converged {
			return current
		}
	}
}

func limitOnce(mesh MeshView, vertMetrics []float64, maxRate float64) []float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	coords := mesh.Coords()
	star := mesh.AskStar(meshmodel.Vert)
	nverts := mesh.NEnts(meshmodel.Vert)
	logRate := math.Log(maxRate)

	out := make([]float64, len(vertMetrics))
	copy(out, vertMetrics)
	for v := 0; v < nverts; v++ {
		m := gatherSym(vertMetrics, w, v)
		x := coords[v*dim : v*dim+dim]
		acc := append([]float64(nil), m...)
		for _, u := range star.Targets(v) {
			um := gatherSym(vertMetrics, w, int(u))
			ux := coords[int(u)*dim : int(u)*dim+dim]
			d := distance(dim, x, ux)
			limitM := metric.FormLimitingMetric(dim, um, d, logRate)
			acc = metric.IntersectMetrics(dim, acc, limitM)
		}
		copy(out[v*w:v*w+w], acc)
	}
	return out
}

func distance(dim int, a, b []float64) float64 {
	s := 0.0
	for i := 0; i < dim; i++ {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func closeEnough(a, b []float64) bool {
	for i := range a {
		tol := convergenceAbsTol + convergenceRelTol*math.Abs(a[i])
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// nelemsTolerance/maxScaleIters bound TargetNelemsScale's Newton-like
// iteration.
const (
	nelemsTolerance = 1e-3
	maxScaleIters   = 8
)

// TargetNelemsScale finds a scalar s such that scaling the metric field M by
// s produces approximately targetNelems elements: current
// element count is estimated as an integral of sqrt(det(M)) * element
// volume over the reference simplex volume under a unit metric, and
// s^(dim/2) * current = target is solved for s, iterating since the
// estimator is only locally linear in log(s).
func TargetNelemsScale(mesh MeshView, vertMetrics []float64, targetNelems float64) float64 {
	if targetNelems <= 0 {
		panic("sizefield.TargetNelemsScale: targetNelems must be > 0")
	}
	dim := mesh.Dim()
	s := 1.0
	for iter := 0; iter < maxScaleIters; iter++ {
		current := estimateNelems(mesh, vertMetrics, s)
		if current <= 0 {
			return s
		}
		ratio := targetNelems / current
		if math.Abs(ratio-1) < nelemsTolerance {
			break
		}
		s *= math.Pow(ratio, 2.0/float64(dim))
	}
	return s
}

// estimateNelems sums, over every cell, sqrt(det(s*M)) * cell size, using
// the cell-center metric from Mident and the cell's plain geometric size,
// and divides the sum by the volume of the unit-edge equilateral simplex
// (the element a unit metric asks for).
func estimateNelems(mesh MeshView, vertMetrics []float64, s float64) float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	cellDim := meshmodel.CellDim(dim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	ncells := mesh.NEnts(cellDim)
	cellMetrics := Mident(mesh, vertMetrics)

	total := 0.0
	for c := 0; c < ncells; c++ {
		m := gatherSym(cellMetrics, w, c)
		scaled := make([]float64, w)
		for i := range scaled {
			scaled[i] = s * m[i]
		}
		total += math.Sqrt(detSym(dim, scaled)) * elementSize(mesh, dim, c, cellVerts)
	}
	refVolume := math.Sqrt(3) / 4 // unit-edge equilateral triangle
	if dim == 3 {
		refVolume = math.Sqrt(2) / 12 // unit-edge regular tetrahedron
	}
	return total / refVolume
}

func detSym(dim int, m []float64) float64 {
	if dim == 2 {
		return m[0]*m[1] - m[2]*m[2]
	}
	return m[0]*(m[1]*m[2]-m[5]*m[5]) -
		m[3]*(m[3]*m[2]-m[5]*m[4]) +
		m[4]*(m[3]*m[5]-m[1]*m[4])
}
