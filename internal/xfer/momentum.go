package xfer

import (
	"math"

	"github.com/notargets/meshadapt/internal/candidate"
	"github.com/notargets/meshadapt/internal/meshmodel"
)

// MomentumPolicy is the velocity transfer rule for a momentum-conserving
// field: refine averages the
// two endpoints' velocity for the new midpoint; coarsen keeps the surviving
// vertex's velocity (momentum conservation proper — rescaling by the
// absorbed mass is a cell-centered concern this vertex-velocity transfer
// does not model).
type MomentumPolicy struct {
	Dim int
}

func (MomentumPolicy) TransferSame(value []float64) []float64 { return value }

func (p MomentumPolicy) TransferRefine(a, b []float64) []float64 {
	out := make([]float64, p.Dim)
	for i := range out {
		out[i] = 0.5 * (a[i] + b[i])
	}
	return out
}

func (MomentumPolicy) TransferCoarsen(collapsed, onto []float64) []float64 {
	return append([]float64(nil), onto...)
}

// HasFixedMomentumVelocity reports whether the mesh carries a momentum
// velocity tag, gating whether FilterFixedMomentumVelocity need run at all.
func HasFixedMomentumVelocity(mesh candidate.MeshView, name string) bool {
	_, ok := mesh.GetArray(meshmodel.Vert, name)
	return ok
}

// FilterFixedMomentumVelocity disallows collapsing a vertex whose momentum
// velocity differs from its target's by more than tol, in any component:
// collapsing would otherwise silently discard a non-negligible momentum
// component instead of transferring it.
func FilterFixedMomentumVelocity(mesh candidate.MeshView, velocity []float64, dim int, cands []int, codes []candidate.CollapseCode, tol float64) []candidate.CollapseCode {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	out := make([]candidate.CollapseCode, len(codes))
	row := func(v int32) []float64 { return velocity[int(v)*dim : int(v)*dim+dim] }
	for i, e := range cands {
		code := codes[i]
		ev := edgeVerts.Targets(e)
		for eev := 0; eev < 2; eev++ {
			if !code.Collapses(eev) {
				continue
			}
			vCol, vOnto := row(ev[eev]), row(ev[1-eev])
			diff := 0.0
			for k := range vCol {
				d := math.Abs(vCol[k] - vOnto[k])
				if d > diff {
					diff = d
				}
			}
			if diff > tol {
				code = disallow(code, eev)
			}
		}
		out[i] = code
	}
	return out
}

// disallow clears collapse direction eev from code. candidate.CollapseCode's
// own clearing helper is unexported, so this mirrors it bit for bit.
func disallow(code candidate.CollapseCode, eev int) candidate.CollapseCode {
	return code &^ (1 << uint(eev))
}
