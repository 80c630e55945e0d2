package meshadapt

import (
	"fmt"

	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/quality"
)

// meshStats is the worst/mean plain-shape quality of every top-dimensional
// cell, unweighted by any metric — a quick health readout for the CLI's
// "stats" command and for before/after reporting in "adapt".
type meshStats struct {
	NVerts, NCells int
	MinQuality     float64
	MeanQuality    float64
}

func computeStats(mesh *meshmodel.Mesh) meshStats {
	dim := mesh.Dim()
	cellDim := meshmodel.CellDim(dim)
	cellVerts := mesh.AskDown(cellDim, meshmodel.Vert)
	coords := mesh.Coords()
	ncells := mesh.NEnts(cellDim)

	s := meshStats{NVerts: mesh.NEnts(meshmodel.Vert), NCells: ncells, MinQuality: 1}
	var sum float64
	for c := 0; c < ncells; c++ {
		verts := cellVerts.Targets(c)
		var q float64
		if dim == 2 {
			p := func(i int) [2]float64 {
				x := coords[int(verts[i])*2 : int(verts[i])*2+2]
				return [2]float64{x[0], x[1]}
			}
			q = quality.TriangleQuality(p(0), p(1), p(2))
		} else {
			p := func(i int) [3]float64 {
				x := coords[int(verts[i])*3 : int(verts[i])*3+3]
				return [3]float64{x[0], x[1], x[2]}
			}
			q = quality.TetQuality(p(0), p(1), p(2), p(3))
		}
		if q < s.MinQuality {
			s.MinQuality = q
		}
		sum += q
	}
	if ncells > 0 {
		s.MeanQuality = sum / float64(ncells)
	}
	return s
}

func (s meshStats) Print(label string) {
	fmt.Printf("%s: %d verts, %d cells, min quality %.4f, mean quality %.4f\n",
		label, s.NVerts, s.NCells, s.MinQuality, s.MeanQuality)
}

