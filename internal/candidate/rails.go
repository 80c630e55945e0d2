package candidate

import "github.com/notargets/meshadapt/internal/meshmodel"

// ChooseRails resolves each candidate edge still legal in both directions
// down to a single chosen direction: the one whose resulting cavity has the
// better worst-element quality, ties broken by collapsing the lower-id vertex
// onto the higher-id one for determinism (a single rank's local id doubles as a global id here).
func ChooseRails(mesh MeshView, vertMetrics []float64, cands []int, codes []CollapseCode) []CollapseCode {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]CollapseCode, len(codes))
	for i, e := range cands {
		code := codes[i]
		if !code.Collapses(0) || !code.Collapses(1) {
			out[i] = code
			continue
		}
		ev := edgeVerts.Targets(e)
		v0, v1 := int(ev[0]), int(ev[1])
		_, q0 := minCavityQuality(mesh, vertMetrics, v0, v1)
		_, q1 := minCavityQuality(mesh, vertMetrics, v1, v0)
		switch {
		case q0 > q1:
			code = doCollapse(DontCollapse, 0)
		case q1 > q0:
			code = doCollapse(DontCollapse, 1)
		case v1 < v0:
			code = doCollapse(DontCollapse, 1)
		default:
			code = doCollapse(DontCollapse, 0)
		}
		out[i] = code
	}
	return out
}
