package candidate

import (
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/metric"
)

// PreventOvershoot disallows a collapse direction whenever it would produce
// an edge longer than maxLengthDesired: for the still-legal endpoint of each
// candidate edge, every other edge incident to that endpoint is resimulated
// with the endpoint moved to the collapse target, and the direction is
// dropped if any resulting edge's metric length would meet or exceed the
// threshold.
func PreventOvershoot(mesh MeshView, vertMetrics []float64, cands []int, codes []CollapseCode, maxLengthDesired float64) []CollapseCode {
	dim := mesh.Dim()
	w := symDofs(dim)
	coords := mesh.Coords()
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	vertEdges := mesh.AskUp(meshmodel.Vert, meshmodel.Edge)

	out := make([]CollapseCode, len(codes))
	for i, e := range cands {
		code := codes[i]
		ev := edgeVerts.Targets(e)
		for eev := 0; eev < 2; eev++ {
			if !code.Collapses(eev) {
				continue
			}
			vCol := int(ev[eev])
			vOnto := int(ev[1-eev])
			ontoX := coords[vOnto*dim : vOnto*dim+dim]
			ontoM := vertMetric(vertMetrics, w, vOnto)

			overshoots := false
			for _, e2 := range vertEdges.Targets(vCol) {
				if int(e2) == e {
					continue
				}
				ev2 := edgeVerts.Targets(int(e2))
				var vOther int
				if int(ev2[0]) == vCol {
					vOther = int(ev2[1])
				} else {
					vOther = int(ev2[0])
				}
				if vOther == vOnto {
					continue
				}
				otherX := coords[vOther*dim : vOther*dim+dim]
				otherM := vertMetric(vertMetrics, w, vOther)
				if metric.EdgeLengthUnderMetric(dim, ontoM, otherM, ontoX, otherX) >= maxLengthDesired {
					overshoots = true
					break
				}
			}
			if overshoots {
				code = dontCollapseDir(code, eev)
			}
		}
		out[i] = code
	}
	return out
}
