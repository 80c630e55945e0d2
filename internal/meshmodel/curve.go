package meshmodel

// CurveEvaluator projects a point onto the geometric feature a mesh entity
// is classified against, so a split midpoint on a classified edge lands on
// its curve/surface. CAD evaluation is out of scope; cid is an opaque
// classification id a concrete evaluator interprets however it likes.
type CurveEvaluator interface {
	Project(cid int32, p [3]float64) [3]float64
}

// LinearEvaluator is the default: no geometric model is wired, so a split
// midpoint stays at the straight-line midpoint.
type LinearEvaluator struct{}

func (LinearEvaluator) Project(cid int32, p [3]float64) [3]float64 { return p }
