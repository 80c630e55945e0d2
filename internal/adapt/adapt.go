// Package adapt is the adaptation driver: it alternates the operator
// families (refine by length, coarsen by length, swap to improve quality,
// coarsen slivers, smooth), rebalancing the partition between passes when
// load imbalance exceeds a threshold, until no family fires or a
// max-iterations cap is reached.
package adapt

import (
	"log"
	"math"

	"github.com/notargets/meshadapt/internal/candidate"
	"github.com/notargets/meshadapt/internal/cavity"
	"github.com/notargets/meshadapt/internal/indset"
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/options"
	"github.com/notargets/meshadapt/internal/partition"
	"github.com/notargets/meshadapt/internal/quality"
	"github.com/notargets/meshadapt/internal/smooth"
)

func symDofs(dim int) int { return dim * (dim + 1) / 2 }

func vertMetric(vertMetrics []float64, w, v int) []float64 {
	return vertMetrics[v*w : v*w+w]
}

// cellQualities computes the metricized quality of every cell, the basis
// for both sliver detection and the refine/swap independent-set priority.
func cellQualities(mesh *meshmodel.Mesh, vertMetrics []float64) []float64 {
	dim := mesh.Dim()
	w := symDofs(dim)
	cellDim := meshmodel.CellDim(dim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	coords := mesh.Coords()
	ncells := mesh.NEnts(cellDim)
	out := make([]float64, ncells)
	for c := 0; c < ncells; c++ {
		verts := cellVerts.Targets(c)
		if dim == 2 {
			var p [3][2]float64
			var m [3][]float64
			for i, v := range verts {
				x := coords[int(v)*2 : int(v)*2+2]
				p[i] = [2]float64{x[0], x[1]}
				m[i] = vertMetric(vertMetrics, w, int(v))
			}
			out[c] = quality.TriangleQualityMetric(p, m)
		} else {
			var p [4][3]float64
			var m [4][]float64
			for i, v := range verts {
				x := coords[int(v)*3 : int(v)*3+3]
				p[i] = [3]float64{x[0], x[1], x[2]}
				m[i] = vertMetric(vertMetrics, w, int(v))
			}
			out[c] = quality.TetQualityMetric(p, m)
		}
	}
	return out
}

func worstIncidentQuality(cq []float64, edgeCells meshmodel.Adj, e int) float64 {
	worst := math.Inf(1)
	for _, c := range edgeCells.Targets(e) {
		if cq[int(c)] < worst {
			worst = cq[int(c)]
		}
	}
	if math.IsInf(worst, 1) {
		return 0
	}
	return worst
}

// RefinePass splits every edge longer than MaxLengthDesired under the
// current metric, selected through one independent-set round, priority =
// the worst quality among the edge's incident cells so the most urgently
// needed splits win conflicts first.
func RefinePass(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions) (*meshmodel.Mesh, []float64, bool) {
	marks := candidate.MarkRefineCandidates(mesh, vertMetrics, opts.MaxLengthDesired)
	var edges []int
	for e, m := range marks {
		if m {
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		return mesh, vertMetrics, false
	}

	cq := cellQualities(mesh, vertMetrics)
	edgeCells := mesh.AskUp(meshmodel.Edge, meshmodel.CellDim(mesh.Dim()))

	cands := make([]indset.Candidate, len(edges))
	for i, e := range edges {
		cands[i] = indset.Candidate{ID: e, Priority: worstIncidentQuality(cq, edgeCells, e)}
	}
	conflicts := indset.EdgeConflicts(mesh, edges)
	g := indset.BuildConflictGraph(cands, func(i int) []int { return conflicts[i] })
	sel := indset.Select(g, cands)

	var chosen []int
	for i, ok := range sel {
		if ok {
			chosen = append(chosen, edges[i])
		}
	}
	if len(chosen) == 0 {
		return mesh, vertMetrics, false
	}

	result := cavity.Refine(mesh, vertMetrics, chosen)
	return result.Mesh, result.VertMetrics, true
}

// SwapPass flips/retriangulates every edge whose incident cavity quality is
// below MinQualityDesired, worst quality first.
func SwapPass(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions) (*meshmodel.Mesh, []float64, bool) {
	dim := mesh.Dim()
	cq := cellQualities(mesh, vertMetrics)
	edgeCells := mesh.AskUp(meshmodel.Edge, meshmodel.CellDim(dim))
	nedges := mesh.NEnts(meshmodel.Edge)

	var edges []int
	for e := 0; e < nedges; e++ {
		if edgeCells.Degree(e) != 2 {
			continue
		}
		if worstIncidentQuality(cq, edgeCells, e) < opts.MinQualityDesired {
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		return mesh, vertMetrics, false
	}

	cands := make([]indset.Candidate, len(edges))
	for i, e := range edges {
		cands[i] = indset.Candidate{ID: e, Priority: -worstIncidentQuality(cq, edgeCells, e)}
	}
	conflicts := indset.EdgeConflicts(mesh, edges)
	g := indset.BuildConflictGraph(cands, func(i int) []int { return conflicts[i] })
	sel := indset.Select(g, cands)

	var chosen []int
	for i, ok := range sel {
		if ok {
			chosen = append(chosen, edges[i])
		}
	}
	if len(chosen) == 0 {
		return mesh, vertMetrics, false
	}

	var newMesh *meshmodel.Mesh
	var fired bool
	if dim == 2 {
		newMesh, fired = cavity.Swap2D(mesh, vertMetrics, chosen, opts.MinQualityAllowed)
	} else {
		newMesh, fired = cavity.Swap3D(mesh, vertMetrics, chosen, opts.MinQualityAllowed)
	}
	return newMesh, vertMetrics, fired
}

// vertMarksFromEdgeMarks lifts an edge-indexed mark (e.g.
// candidate.MarkCoarsenCandidates's "too short") to a vertex-indexed one: a
// vertex is marked if it is an endpoint of at least one marked edge, the
// shape candidate.CodesFromVertMarks expects.
func vertMarksFromEdgeMarks(mesh *meshmodel.Mesh, edgeMarks []bool) []bool {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]bool, mesh.NEnts(meshmodel.Vert))
	for e, marked := range edgeMarks {
		if !marked {
			continue
		}
		ev := edgeVerts.Targets(e)
		out[ev[0]] = true
		out[ev[1]] = true
	}
	return out
}

// coarsenWithMarks runs the full collapse-gating pipeline
// (classification, exposure, overshoot, min-quality, optionally improve,
// rail choice) over every edge with at least one endpoint marked in
// vertMarks, then the independent-set selection and rewrite.
func coarsenWithMarks(mesh *meshmodel.Mesh, vertMetrics []float64, vertMarks []bool, opts options.AdaptOptions, requireImprove bool) (*meshmodel.Mesh, []float64, bool) {
	codes := candidate.CodesFromVertMarks(mesh, vertMarks)
	var cands []int
	for e, c := range codes {
		if c != candidate.DontCollapse {
			cands = append(cands, e)
		}
	}
	if len(cands) == 0 {
		return mesh, vertMetrics, false
	}
	active := make([]candidate.CollapseCode, len(cands))
	for i, e := range cands {
		active[i] = codes[e]
	}

	active = candidate.CheckCollapseClass(mesh, cands, active)
	active = candidate.CheckCollapseExposure(mesh, cands, active)
	active = candidate.PreventOvershoot(mesh, vertMetrics, cands, active, opts.MaxLengthDesired)
	active = candidate.FilterCoarsenMinQuality(mesh, vertMetrics, cands, active, opts.MinQualityAllowed)
	if requireImprove {
		active = candidate.FilterCoarsenImprove(mesh, vertMetrics, cands, active)
	}
	active = candidate.ChooseRails(mesh, vertMetrics, cands, active)

	type liveCand struct {
		edge, vCol, vOnto int
		priority          float64
	}
	var live []liveCand
	for i, e := range cands {
		vCol, vOnto, q, ok := candidate.CollapseQuality(mesh, vertMetrics, e, active[i])
		if !ok {
			continue
		}
		live = append(live, liveCand{edge: e, vCol: vCol, vOnto: vOnto, priority: q})
	}
	if len(live) == 0 {
		return mesh, vertMetrics, false
	}

	icands := make([]indset.Candidate, len(live))
	for i, lc := range live {
		icands[i] = indset.Candidate{ID: lc.edge, Priority: lc.priority}
	}
	conflicts := indset.VertexCollapseConflicts(mesh, make([]int, len(live)), func(i int) int { return live[i].vCol })
	g := indset.BuildConflictGraph(icands, func(i int) []int { return conflicts[i] })
	sel := indset.Select(g, icands)

	collapses := map[int]int{}
	for i, ok := range sel {
		if ok {
			collapses[live[i].vCol] = live[i].vOnto
		}
	}
	if len(collapses) == 0 {
		return mesh, vertMetrics, false
	}

	result := cavity.Coarsen(mesh, vertMetrics, collapses)
	return result.Mesh, result.VertMetrics, true
}

// CoarsenPass collapses every edge shorter than MinLengthDesired under the
// current metric.
func CoarsenPass(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions) (*meshmodel.Mesh, []float64, bool) {
	edgeMarks := candidate.MarkCoarsenCandidates(mesh, vertMetrics, opts.MinLengthDesired)
	vertMarks := vertMarksFromEdgeMarks(mesh, edgeMarks)
	return coarsenWithMarks(mesh, vertMetrics, vertMarks, opts, false)
}

// vertMarksFromCellMarks lifts a cell-indexed mark (e.g.
// candidate.MarkSliverCandidates's "below quality") to a vertex-indexed one:
// a vertex is marked if it is incident to at least one marked cell.
func vertMarksFromCellMarks(mesh *meshmodel.Mesh, cellMarks []bool) []bool {
	cellDim := meshmodel.CellDim(mesh.Dim())
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	out := make([]bool, mesh.NEnts(meshmodel.Vert))
	for c, marked := range cellMarks {
		if !marked {
			continue
		}
		for _, v := range cellVerts.Targets(c) {
			out[v] = true
		}
	}
	return out
}

// SliverCoarsenPass collapses vertices within NSliverLayers of a
// below-MinQualityDesired cell, only where doing so does not make the local
// cavity worse.
func SliverCoarsenPass(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions) (*meshmodel.Mesh, []float64, bool) {
	cq := cellQualities(mesh, vertMetrics)
	dual := mesh.AskDual()
	cellMarks := candidate.MarkSliverCandidates(mesh, dual, cq, opts.MinQualityDesired, opts.NSliverLayers)
	vertMarks := vertMarksFromCellMarks(mesh, cellMarks)
	return coarsenWithMarks(mesh, vertMetrics, vertMarks, opts, true)
}

// SmoothPass nudges interior vertices touching a below-MinQualityDesired
// cell toward their star-average position, clamped to MaxMotionAllowed and
// kept only when the local worst quality strictly improves.
func SmoothPass(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions) (*meshmodel.Mesh, []float64, bool) {
	newMesh, moved := smooth.SmoothPositions(mesh, vertMetrics, opts.MaxMotionAllowed, opts.MinQualityDesired)
	return newMesh, vertMetrics, moved
}

// Pass runs one named operator family and reports whether it fired.
type Pass func(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions) (*meshmodel.Mesh, []float64, bool)

// Passes is the driver's fixed alternation order.
var Passes = []struct {
	Name string
	Run  Pass
}{
	{"refine", RefinePass},
	{"coarsen", CoarsenPass},
	{"swap", SwapPass},
	{"sliver-coarsen", SliverCoarsenPass},
	{"smooth", SmoothPass},
}

// Result is the outcome of a full Adapt run.
type Result struct {
	Mesh        *meshmodel.Mesh
	VertMetrics []float64
	Partition   []int32
	Iterations  int
}

// Adapt runs the driver loop: each iteration executes every pass in order,
// rebalancing the partition if its imbalance exceeds
// opts.ImbalanceThreshold, until no pass fires or opts.MaxIterations is
// reached.
func Adapt(mesh *meshmodel.Mesh, vertMetrics []float64, opts options.AdaptOptions, part []int32) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	iter := 0
	for ; iter < opts.MaxIterations; iter++ {
		anyFired := false
		for _, p := range Passes {
			newMesh, newVertMetrics, fired := p.Run(mesh, vertMetrics, opts)
			if fired {
				anyFired = true
				mesh, vertMetrics = newMesh, newVertMetrics
				if opts.Verbosity >= options.VerbosityEachRebuild {
					log.Printf("meshadapt: pass %q fired (%d verts, %d cells)",
						p.Name, mesh.NEnts(meshmodel.Vert), mesh.NEnts(meshmodel.CellDim(mesh.Dim())))
				}
			}
		}

		if opts.NumPartitions > 1 {
			newPart, changed, err := partition.Rebalance(mesh, partition.Config{
				NumPartitions:   opts.NumPartitions,
				ImbalanceFactor: float32(opts.ImbalanceThreshold),
				Objective:       "vol",
			}, part, opts.ImbalanceThreshold)
			if err != nil {
				return Result{}, err
			}
			if changed && opts.Verbosity >= options.VerbosityEachAdapt {
				log.Printf("meshadapt: rebalanced across %d partitions", opts.NumPartitions)
			}
			part = newPart
		}

		if opts.Verbosity >= options.VerbosityEachAdapt {
			log.Printf("meshadapt: iteration %d complete, fired=%v", iter, anyFired)
		}
		if !anyFired {
			break
		}
	}

	return Result{Mesh: mesh, VertMetrics: vertMetrics, Partition: part, Iterations: iter}, nil
}
