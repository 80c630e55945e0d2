package candidate

import "github.com/notargets/meshadapt/internal/meshmodel"

// CollapseCode is a 2-bit per-edge mask: bit eev is set iff
// endpoint eev may be collapsed onto the edge's other endpoint.
type CollapseCode uint8

const DontCollapse CollapseCode = 0

func (c CollapseCode) Collapses(eev int) bool { return c&(1<<uint(eev)) != 0 }

func doCollapse(c CollapseCode, eev int) CollapseCode { return c | (1 << uint(eev)) }

func dontCollapseDir(c CollapseCode, eev int) CollapseCode { return c &^ (1 << uint(eev)) }

// CodesFromVertMarks builds an edge's collapse code from which of its
// endpoints are individually marked collapsible: both endpoints marked allows either
// direction; the rewrite stage later picks one via rails.
func CodesFromVertMarks(mesh MeshView, vertMarks []bool) []CollapseCode {
	nedges := mesh.NEnts(meshmodel.Edge)
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]CollapseCode, nedges)
	for e := 0; e < nedges; e++ {
		ev := edgeVerts.Targets(e)
		var code CollapseCode
		for eev, v := range ev {
			if vertMarks[v] {
				code = doCollapse(code, eev)
			}
		}
		out[e] = code
	}
	return out
}

func classDim(mesh MeshView, dim int, id int, fallback int8) int8 {
	tag, ok := mesh.GetArray(dim, "class_dim")
	if !ok {
		return fallback
	}
	return int8(tag.I8s[id])
}

// CheckCollapseClass gates each candidate edge's code by classification
// compatibility: a vertex may only be
// collapsed away if its classification dimension is no less than the
// edge's classification dimension, so a feature vertex is never absorbed
// into a cruder one. Meshes with no "class_dim" tag are treated as wholly
// interior (top-dimension classified), where every direction is legal.
func CheckCollapseClass(mesh MeshView, cands []int, codes []CollapseCode) []CollapseCode {
	dim := mesh.Dim()
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]CollapseCode, len(codes))
	for i, e := range cands {
		code := codes[i]
		edgeClass := classDim(mesh, meshmodel.Edge, e, int8(dim))
		ev := edgeVerts.Targets(e)
		for eev, v := range ev {
			if !code.Collapses(eev) {
				continue
			}
			vClass := classDim(mesh, meshmodel.Vert, int(v), int8(dim))
			if vClass < edgeClass {
				code = dontCollapseDir(code, eev)
			}
		}
		out[i] = code
	}
	return out
}

// CheckCollapseExposure gates each candidate edge's code by surface
// exposure: a vertex may only be
// collapsed onto a target whose classification dimension is no greater
// than its own, so the collapse never "exposes" the removed vertex's
// feature onto a cruder one than it already bordered.
func CheckCollapseExposure(mesh MeshView, cands []int, codes []CollapseCode) []CollapseCode {
	dim := mesh.Dim()
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]CollapseCode, len(codes))
	for i, e := range cands {
		code := codes[i]
		ev := edgeVerts.Targets(e)
		for eev := 0; eev < 2; eev++ {
			if !code.Collapses(eev) {
				continue
			}
			vCol := ev[eev]
			vOnto := ev[1-eev]
			colClass := classDim(mesh, meshmodel.Vert, int(vCol), int8(dim))
			ontoClass := classDim(mesh, meshmodel.Vert, int(vOnto), int8(dim))
			if ontoClass > colClass {
				code = dontCollapseDir(code, eev)
			}
		}
		out[i] = code
	}
	return out
}
