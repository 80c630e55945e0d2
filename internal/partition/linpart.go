package partition

import (
	"github.com/notargets/meshadapt/internal/comm"
	"github.com/notargets/meshadapt/internal/meshmodel"
)

// LinearPartitionSize returns how many of `total` globally-numbered entities
// the linear (block-contiguous) partition assigns to `rank` out of
// `commSize` ranks: the first total%commSize ranks get one extra entity.
func LinearPartitionSize(total int64, commSize, rank int) int {
	quot := total / int64(commSize)
	rem := total % int64(commSize)
	if int64(rank) < rem {
		return int(quot) + 1
	}
	return int(quot)
}

// GlobalsToLinearOwners maps each global entity number to its owner under
// the linear partition of `total` entities across `commSize` ranks,
// returning the owning rank and the entity's local index on that rank.
func GlobalsToLinearOwners(globals []int64, total int64, commSize int) []meshmodel.Remote {
	quot := total / int64(commSize)
	rem := total % int64(commSize)
	split := (quot + 1) * rem
	out := make([]meshmodel.Remote, len(globals))
	for i, g := range globals {
		if g < split {
			out[i] = meshmodel.Remote{Rank: int(g / (quot + 1)), Local: int32(g % (quot + 1))}
		} else {
			out[i] = meshmodel.Remote{
				Rank:  int(rem + (g-split)/quot),
				Local: int32((g - split) % quot),
			}
		}
	}
	return out
}

// FindTotalGlobals returns one past the largest global number present on any
// rank, the `total` the two functions above expect.
func FindTotalGlobals(c comm.Comm, globals []int64) int64 {
	var localMax int64 = -1
	for _, g := range globals {
		if g > localMax {
			localMax = g
		}
	}
	return c.AllreduceInt(localMax, comm.ReduceMax) + 1
}
