// Package candidate implements the candidate-selection stage: mark
// edges for refinement/collapse by metric length, gate collapse directions
// by classification and surface exposure, prevent overshoot, and score
// cavities so the independent-set scheduler (internal/indset) has
// priorities to work with.
package candidate

import (
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/metric"
)

// MeshView is the subset of meshmodel.Mesh candidate selection needs.
type MeshView interface {
	Dim() int
	NEnts(dim int) int
	Coords() []float64
	AskDown(hi, lo int) meshmodel.Adj
	AskUp(lo, hi int) meshmodel.Adj
	GetArray(dim int, name string) (meshmodel.Tag, bool)
}

func symDofs(dim int) int { return dim * (dim + 1) / 2 }

func vertMetric(vertMetrics []float64, w, v int) []float64 {
	return vertMetrics[v*w : v*w+w]
}

func edgeLength(mesh MeshView, vertMetrics []float64, e int) float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	ev := mesh.AskDown(meshmodel.Edge, meshmodel.Vert).Targets(e)
	a, b := int(ev[0]), int(ev[1])
	coords := mesh.Coords()
	xa := coords[a*dim : a*dim+dim]
	xb := coords[b*dim : b*dim+dim]
	return metric.EdgeLengthUnderMetric(dim, vertMetric(vertMetrics, w, a), vertMetric(vertMetrics, w, b), xa, xb)
}

// MarkRefineCandidates flags every edge whose metric length exceeds
// maxLengthDesired.
func MarkRefineCandidates(mesh MeshView, vertMetrics []float64, maxLengthDesired float64) []bool {
	nedges := mesh.NEnts(meshmodel.Edge)
	out := make([]bool, nedges)
	for e := 0; e < nedges; e++ {
		out[e] = edgeLength(mesh, vertMetrics, e) > maxLengthDesired
	}
	return out
}

// MarkCoarsenCandidates flags every edge whose metric length is below
// minLengthDesired.
func MarkCoarsenCandidates(mesh MeshView, vertMetrics []float64, minLengthDesired float64) []bool {
	nedges := mesh.NEnts(meshmodel.Edge)
	out := make([]bool, nedges)
	for e := 0; e < nedges; e++ {
		out[e] = edgeLength(mesh, vertMetrics, e) < minLengthDesired
	}
	return out
}

// MarkSliverCandidates flags every top-dimensional cell whose plain-metric
// quality is below minQualityDesired. The nlayers parameter extends the
// mark outward along the dual graph.
func MarkSliverCandidates(mesh MeshView, dual meshmodel.Adj, cellQuality []float64, minQualityDesired float64, nlayers int) []bool {
	ncells := len(cellQuality)
	marked := make([]bool, ncells)
	for c, q := range cellQuality {
		marked[c] = q < minQualityDesired
	}
	for l := 0; l < nlayers; l++ {
		next := append([]bool(nil), marked...)
		for c := 0; c < ncells; c++ {
			if marked[c] {
				continue
			}
			for _, nb := range dual.Targets(c) {
				if marked[nb] {
					next[c] = true
					break
				}
			}
		}
		marked = next
	}
	return marked
}
