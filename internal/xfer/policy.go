// Package xfer carries per-tag field values across the topology rewrites
// of internal/cavity: when a vertex
// survives unchanged it keeps its row; when an edge splits, the new midpoint
// vertex needs a value derived from the edge's two endpoints; when an edge
// collapses, the surviving vertex's row must account for whatever the
// collapsed vertex carried. Different tags want different rules, hence the
// Policy interface rather than one hardcoded behavior.
package xfer

import (
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/metric"
)

// Policy defines how one tag's values move across a mesh rewrite. Every
// method operates on a single row (a tag's width-many components for one
// vertex), not a whole buffer, so a Policy stays agnostic of the tag's width.
type Policy interface {
	// TransferSame returns the value a surviving vertex keeps. Implementations
	// that never alter surviving rows may just return value unchanged.
	TransferSame(value []float64) []float64
	// TransferRefine returns the new midpoint vertex's value given the split
	// edge's two endpoint values a, b.
	TransferRefine(a, b []float64) []float64
	// TransferCoarsen returns onto's new value after absorbing the collapsed
	// vertex's row collapsed.
	TransferCoarsen(collapsed, onto []float64) []float64
}

// InheritPolicy is a plain-copy transfer: refine inherits the first
// endpoint's value, coarsen keeps the surviving vertex's value untouched.
// This is the default for tags with no special transfer rule:
// classification tags (class_dim/class_id) and arbitrary user scalars.
type InheritPolicy struct{}

func (InheritPolicy) TransferSame(value []float64) []float64 { return value }

func (InheritPolicy) TransferRefine(a, b []float64) []float64 {
	return append([]float64(nil), a...)
}

func (InheritPolicy) TransferCoarsen(collapsed, onto []float64) []float64 {
	return append([]float64(nil), onto...)
}

// ClassInheritPolicy is InheritPolicy's refinement for classification tags:
// a midpoint should inherit the more specific (numerically smaller) of its
// two endpoints' classification dimensions, since splitting an edge must
// never make a feature point look more interior than it is. width must be 1
// (class_dim is a scalar per vertex).
type ClassInheritPolicy struct{}

func (ClassInheritPolicy) TransferSame(value []float64) []float64 { return value }

func (ClassInheritPolicy) TransferRefine(a, b []float64) []float64 {
	if a[0] <= b[0] {
		return append([]float64(nil), a...)
	}
	return append([]float64(nil), b...)
}

func (ClassInheritPolicy) TransferCoarsen(collapsed, onto []float64) []float64 {
	return append([]float64(nil), onto...)
}

// MetricPolicy transfers a metric tensor tag the way the rest of the
// kernel combines metrics: linearize to log-space, average, delinearize,
// so a midpoint's metric is the geometric mean of its parents' rather
// than their arithmetic mean. A coarsen keeps the surviving
// vertex's metric unchanged — the collapsed vertex's local size request is
// simply dropped, matching internal/cavity's own vertex-metrics handling.
type MetricPolicy struct {
	Dim int
}

func (p MetricPolicy) TransferSame(value []float64) []float64 { return value }

func (p MetricPolicy) TransferRefine(a, b []float64) []float64 {
	return metric.AverageMetric(p.Dim, [][]float64{a, b})
}

func (p MetricPolicy) TransferCoarsen(collapsed, onto []float64) []float64 {
	return append([]float64(nil), onto...)
}

// ForXferType picks the Policy matching a tag's meshmodel.XferType, giving
// every tag added via Mesh.AddTag a concrete transfer rule by construction:
// metric tags get MetricPolicy, momentum tags get MomentumPolicy,
// everything else inherits.
func ForXferType(xt meshmodel.XferType, dim int) Policy {
	switch xt {
	case meshmodel.XferMetric:
		return MetricPolicy{Dim: dim}
	case meshmodel.XferMomentum:
		return MomentumPolicy{Dim: dim}
	default:
		return InheritPolicy{}
	}
}
