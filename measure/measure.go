// Package measure estimates anthropometric measurements, either by slicing
// a triangulated 3D skeleton into ellipse cross sections or by scaling 2D
// keypoint distances with the subject's known height.
package measure

import (
	"math"

	"github.com/edaniels/golog"

	"go.viam.com/bodyscan/keypoint"
)

// Strategy selects how measurements are derived.
type Strategy int

const (
	// StrategySliceCircumferences fits ellipses to horizontal bands of a 3D
	// skeleton and reports their perimeters.
	StrategySliceCircumferences Strategy = iota
	// StrategyProportions2D scales 2D keypoint distances by the subject's
	// reference height.
	StrategyProportions2D
)

// Slice measurement slots, all circumferences in centimeters.
const (
	SliceWaist = iota
	SliceChest
	SliceHips
	SliceLeftThigh
	SliceRightThigh
	SliceLeftArm
	SliceRightArm
	// SliceCount is the length of a slice measurement vector.
	SliceCount
)

// Proportion measurement slots, widths and lengths in centimeters.
const (
	ProportionShoulderWidth = iota
	ProportionArmLength
	ProportionLegLength
	ProportionHipWidth
	ProportionUpperBody
	ProportionLowerBody
	ProportionNeckWidth
	ProportionThighWidth
	// ProportionCount is the length of a proportion measurement vector.
	ProportionCount
)

// Request bundles the inputs for one estimate. Only the fields the chosen
// strategy reads need to be set.
type Request struct {
	Strategy Strategy

	// Skeleton feeds StrategySliceCircumferences.
	Skeleton keypoint.Skeleton

	// The remaining fields feed StrategyProportions2D.
	Frame       keypoint.Keypoints2D
	RefHeightCm float64
	ImageWidth  int
	ImageHeight int
	Mask        *Mask
}

// Estimator computes measurement vectors. Zero slots mean "could not be
// measured"; estimators never return errors for bad body data, only for
// bad configuration.
type Estimator struct {
	cfg    Config
	logger golog.Logger
}

// NewEstimator returns an Estimator with the given tuning.
func NewEstimator(cfg Config, logger golog.Logger) *Estimator {
	return &Estimator{cfg: cfg, logger: logger}
}

// Estimate dispatches on the request strategy. The returned vector length
// is SliceCount or ProportionCount; an unknown strategy returns nil.
func (e *Estimator) Estimate(req Request) []float64 {
	switch req.Strategy {
	case StrategySliceCircumferences:
		return e.sliceCircumferences(req.Skeleton)
	case StrategyProportions2D:
		return e.proportions(req.Frame, req.RefHeightCm, req.ImageWidth, req.ImageHeight, req.Mask)
	default:
		e.logger.Warnw("unknown measurement strategy", "strategy", req.Strategy)
		return nil
	}
}

// Range is an inclusive plausibility window in centimeters.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Apply returns v unchanged when it is finite and inside the range, and 0
// otherwise.
func (r Range) Apply(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < r.Min || v > r.Max {
		return 0
	}
	return v
}
