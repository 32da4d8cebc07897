// Package scan composes the full body reconstruction pipeline: triangulate
// keypoint views into a skeleton, build a body mesh, encode it as binary
// glTF, and estimate measurements.
package scan

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/bodyscan/bodymesh"
	"go.viam.com/bodyscan/gltf"
	"go.viam.com/bodyscan/keypoint"
	"go.viam.com/bodyscan/measure"
	"go.viam.com/bodyscan/multiview"
)

// Config collects the tuning of every pipeline stage.
type Config struct {
	Intrinsics       multiview.CameraIntrinsics `json:"intrinsics"`
	CameraDistanceCm float64                    `json:"camera_distance_cm"`
	Mesh             bodymesh.Config            `json:"mesh"`
	Measure          measure.Config             `json:"measure"`
}

// DefaultConfig returns the production pipeline tuning.
func DefaultConfig() Config {
	return Config{
		Intrinsics: multiview.IntrinsicsFromFOV(
			multiview.DefaultImageWidth, multiview.DefaultImageHeight, multiview.DefaultFOVDeg),
		CameraDistanceCm: multiview.DefaultDistanceCm,
		Mesh:             bodymesh.DefaultConfig(),
		Measure:          measure.DefaultConfig(),
	}
}

// Result is everything one scan produces. Measurements are indexed by the
// measure package's slice or proportion slots depending on which entry
// point ran; zero slots mean "could not be measured".
type Result struct {
	// Skeleton is the triangulated skeleton in centimeters, y up. Single
	// view scans leave it zero-filled.
	Skeleton keypoint.Skeleton
	// Scale is the centimeters-per-unit factor applied while triangulating.
	Scale float64
	// Mesh is the reconstructed body, empty when reconstruction was not
	// possible.
	Mesh *bodymesh.Mesh
	// ModelGLB is the mesh encoded as binary glTF, empty when the mesh is.
	ModelGLB []byte
	// Measurements in centimeters.
	Measurements []float64
}

// Scanner runs body scans. Immutable after construction and safe for
// concurrent use.
type Scanner struct {
	rig       *multiview.Rig
	builder   *bodymesh.Builder
	estimator *measure.Estimator
	logger    golog.Logger
}

// NewScanner returns a Scanner with production defaults.
func NewScanner(logger golog.Logger) (*Scanner, error) {
	return NewScannerFromConfig(DefaultConfig(), logger)
}

// NewScannerFromConfig validates cfg and builds a Scanner from it.
func NewScannerFromConfig(cfg Config, logger golog.Logger) (*Scanner, error) {
	if err := cfg.Mesh.Validate("mesh"); err != nil {
		return nil, err
	}
	if err := cfg.Measure.Validate("measure"); err != nil {
		return nil, err
	}
	rig, err := multiview.NewRig(cfg.Intrinsics, cfg.CameraDistanceCm)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build camera rig")
	}
	return &Scanner{
		rig:       rig,
		builder:   bodymesh.NewBuilder(cfg.Mesh, logger),
		estimator: measure.NewEstimator(cfg.Measure, logger),
		logger:    logger,
	}, nil
}

// ProcessViews runs the three view pipeline: triangulate the frames, build
// a mesh, encode it, and measure circumferences by slicing the skeleton.
// Bad input degrades to zero-filled results rather than errors.
func (s *Scanner) ProcessViews(views []keypoint.Keypoints2D, refHeightCm float64) *Result {
	skeleton, scale := s.rig.Triangulate(views, refHeightCm)
	mesh := s.builder.Build(skeleton)
	measurements := s.estimator.Estimate(measure.Request{
		Strategy: measure.StrategySliceCircumferences,
		Skeleton: skeleton,
	})
	s.logger.Debugw("multi view scan done",
		"valid_points", skeleton.CountValid(),
		"scale", scale,
		"vertices", mesh.VertexCount())
	return &Result{
		Skeleton:     skeleton,
		Scale:        scale,
		Mesh:         mesh,
		ModelGLB:     gltf.Encode(mesh),
		Measurements: measurements,
	}
}

// ProcessView runs the single view pipeline: proportion measurements scaled
// by the subject's reference height, with an optional segmentation mask for
// the thigh scan. No mesh is reconstructed.
func (s *Scanner) ProcessView(
	view keypoint.Keypoints2D,
	refHeightCm float64,
	imgWidth, imgHeight int,
	mask *measure.Mask,
) *Result {
	measurements := s.estimator.Estimate(measure.Request{
		Strategy:    measure.StrategyProportions2D,
		Frame:       view,
		RefHeightCm: refHeightCm,
		ImageWidth:  imgWidth,
		ImageHeight: imgHeight,
		Mask:        mask,
	})
	s.logger.Debugw("single view scan done", "measured", countNonZero(measurements))
	return &Result{
		Skeleton:     make(keypoint.Skeleton, keypoint.FrameSize),
		Scale:        1,
		Mesh:         &bodymesh.Mesh{},
		Measurements: measurements,
	}
}

func countNonZero(vals []float64) int {
	n := 0
	for _, v := range vals {
		if v != 0 {
			n++
		}
	}
	return n
}
