// Package partition assigns mesh cells to ranks via METIS weighted k-way
// partitioning and rebalances that assignment as adaptation changes the
// cell count. Cell weight tracks the mesh's own cell count rather than a
// per-element-type compute-cost table, since an adapted mesh's cells are
// homogeneous simplices.
package partition

import (
	"fmt"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/meshadapt/internal/meshmodel"
)

// Config holds the partitioner knobs meaningful for an adapting mesh.
type Config struct {
	NumPartitions   int32
	ImbalanceFactor float32 // e.g. 1.05 for 5% allowed imbalance
	Objective       string  // "cut" or "vol"
}

// DefaultConfig allows 5% imbalance and optimizes communication volume.
func DefaultConfig(nparts int32) Config {
	return Config{
		NumPartitions:   nparts,
		ImbalanceFactor: 1.05,
		Objective:       "vol",
	}
}

// buildMetisGraph converts the mesh's dual (cell-cell) adjacency into
// METIS's CSR graph format.
func buildMetisGraph(mesh *meshmodel.Mesh) (xadj, adjncy []int32) {
	dual := mesh.AskDual()
	ncells := mesh.NEnts(meshmodel.CellDim(mesh.Dim()))
	xadj = make([]int32, ncells+1)
	for c := 0; c <= ncells; c++ {
		xadj[c] = dual.A2AB[c]
	}
	adjncy = append(adjncy, dual.AB2B...)
	return xadj, adjncy
}

// Partition assigns every cell of mesh to one of cfg.NumPartitions ranks
// via METIS weighted k-way partitioning.
func Partition(mesh *meshmodel.Mesh, cfg Config) ([]int32, error) {
	xadj, adjncy := buildMetisGraph(mesh)

	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("partition: set default options: %w", err)
	}
	if cfg.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}

	ubvec := []float32{cfg.ImbalanceFactor}
	part, _, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, nil, nil, cfg.NumPartitions, nil, ubvec, opts)
	if err != nil {
		return nil, fmt.Errorf("partition: metis partitioning failed: %w", err)
	}
	return part, nil
}

// Imbalance returns the ratio of the largest part's cell count to the
// average part size: 1.0 is perfectly balanced, values above
// cfg.ImbalanceFactor indicate a rebalance is due.
func Imbalance(part []int32, nparts int32) float64 {
	if nparts == 0 || len(part) == 0 {
		return 1
	}
	counts := make([]int, nparts)
	for _, p := range part {
		counts[p]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	avg := float64(len(part)) / float64(nparts)
	return float64(max) / avg
}

// Rebalance re-partitions mesh only if its current assignment's imbalance
// exceeds threshold, the adapt driver's "rebalance if imbalance exceeds
// threshold" step. currentPart may be nil (no assignment yet),
// which always triggers a fresh partition.
func Rebalance(mesh *meshmodel.Mesh, cfg Config, currentPart []int32, threshold float64) ([]int32, bool, error) {
	if currentPart != nil && Imbalance(currentPart, cfg.NumPartitions) <= threshold {
		return currentPart, false, nil
	}
	part, err := Partition(mesh, cfg)
	if err != nil {
		return nil, false, err
	}
	return part, true, nil
}
