// Package options defines the adaptation kernel's configuration surface,
// loaded from a YAML input file.
package options

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Verbosity selects the adapt driver's logging level.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityEachAdapt
	VerbosityEachRebuild
)

// AdaptOptions holds every recognized key of the adapt input file.
type AdaptOptions struct {
	Title string `yaml:"Title"`

	MinLengthDesired  float64 `yaml:"MinLengthDesired"`
	MaxLengthDesired  float64 `yaml:"MaxLengthDesired"`
	MinQualityAllowed float64 `yaml:"MinQualityAllowed"`
	MinQualityDesired float64 `yaml:"MinQualityDesired"`
	MaxLengthAllowed  float64 `yaml:"MaxLengthAllowed"`
	NSliverLayers     int     `yaml:"NSliverLayers"`
	MaxMotionAllowed  float64 `yaml:"MaxMotionAllowed"`
	MaxIterations     int     `yaml:"MaxIterations"`

	Verbosity Verbosity `yaml:"Verbosity"`

	NumPartitions       int32   `yaml:"NumPartitions"`
	ImbalanceThreshold  float64 `yaml:"ImbalanceThreshold"`
	VelocityMomentumTag string  `yaml:"VelocityMomentumTag"`
}

// Default is the usual defaults for an isotropic unit-metric
// adaptation pass, scaled in units of the metric's own desired edge length
// (1.0 = exactly on target).
func Default() AdaptOptions {
	return AdaptOptions{
		MinLengthDesired:   1.0 / 2.0,
		MaxLengthDesired:   2.0,
		MinQualityAllowed:  0.2,
		MinQualityDesired:  0.3,
		MaxLengthAllowed:   4.0,
		NSliverLayers:      4,
		MaxMotionAllowed:   0.2,
		MaxIterations:      10,
		Verbosity:          VerbosityEachAdapt,
		NumPartitions:      1,
		ImbalanceThreshold: 1.1,
	}
}

func (o *AdaptOptions) Parse(data []byte) error {
	return yaml.Unmarshal(data, o)
}

func (o *AdaptOptions) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", o.Title)
	fmt.Printf("%8.5f\t\t= MinLengthDesired\n", o.MinLengthDesired)
	fmt.Printf("%8.5f\t\t= MaxLengthDesired\n", o.MaxLengthDesired)
	fmt.Printf("%8.5f\t\t= MinQualityAllowed\n", o.MinQualityAllowed)
	fmt.Printf("%8.5f\t\t= MinQualityDesired\n", o.MinQualityDesired)
	fmt.Printf("%8.5f\t\t= MaxLengthAllowed\n", o.MaxLengthAllowed)
	fmt.Printf("[%d]\t\t\t= NSliverLayers\n", o.NSliverLayers)
	fmt.Printf("%8.5f\t\t= MaxMotionAllowed\n", o.MaxMotionAllowed)
	fmt.Printf("[%d]\t\t\t= MaxIterations\n", o.MaxIterations)
	fmt.Printf("[%d]\t\t\t= NumPartitions\n", o.NumPartitions)
	fmt.Printf("%8.5f\t\t= ImbalanceThreshold\n", o.ImbalanceThreshold)
	if o.VelocityMomentumTag != "" {
		fmt.Printf("[%s]\t\t\t= VelocityMomentumTag\n", o.VelocityMomentumTag)
	}
}

// Validate enforces precondition checks on options that would
// otherwise let a degenerate pass through silently.
func (o *AdaptOptions) Validate() error {
	if o.MinLengthDesired <= 0 {
		return fmt.Errorf("options: MinLengthDesired must be positive, got %g", o.MinLengthDesired)
	}
	if o.MaxLengthDesired <= o.MinLengthDesired {
		return fmt.Errorf("options: MaxLengthDesired (%g) must exceed MinLengthDesired (%g)", o.MaxLengthDesired, o.MinLengthDesired)
	}
	if o.MaxLengthAllowed < o.MaxLengthDesired {
		return fmt.Errorf("options: MaxLengthAllowed (%g) must be at least MaxLengthDesired (%g)", o.MaxLengthAllowed, o.MaxLengthDesired)
	}
	if o.MinQualityAllowed < 0 || o.MinQualityAllowed > 1 {
		return fmt.Errorf("options: MinQualityAllowed must be in [0,1], got %g", o.MinQualityAllowed)
	}
	if o.MinQualityDesired < o.MinQualityAllowed {
		return fmt.Errorf("options: MinQualityDesired (%g) must be at least MinQualityAllowed (%g)", o.MinQualityDesired, o.MinQualityAllowed)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("options: MaxIterations must be positive, got %d", o.MaxIterations)
	}
	return nil
}
