package multiview

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	bsutils "go.viam.com/bodyscan/utils"
)

// Rig geometry defaults. Three cameras sit on a circle around the subject at
// equal angles, 200 cm out, modeled on a phone camera with a ~60 degree
// horizontal field of view over a 640 px wide frame.
const (
	ViewCount          = 3
	DefaultDistanceCm  = 200.0
	DefaultFOVDeg      = 60.0
	DefaultImageWidth  = 640
	DefaultImageHeight = 480
)

// angleStepDeg separates neighboring rig cameras.
const angleStepDeg = 120.0

// Camera is one rig viewpoint given by its rotation and translation from the
// subject frame, X_cam = R*X + t.
type Camera struct {
	Rotation    *mat.Dense
	Translation *mat.Dense
}

// NewCamera places a camera on the rig circle at the given angle about the
// vertical axis, aimed at the subject. Every camera ends up the same
// distance out along its own optical axis, so the translation is always
// (0, 0, distance).
func NewCamera(angleDeg, distance float64) Camera {
	a := bsutils.DegToRad(angleDeg)
	sin, cos := math.Sin(a), math.Cos(a)
	rot := mat.NewDense(3, 3, []float64{
		cos, 0, -sin,
		0, 1, 0,
		sin, 0, cos,
	})
	trans := mat.NewDense(3, 1, []float64{0, 0, distance})
	return Camera{Rotation: rot, Translation: trans}
}

// Center returns the camera's optical center in the subject frame.
func (c *Camera) Center() r3.Vector {
	var rt mat.Dense
	rt.Mul(c.Rotation.T(), c.Translation)
	return r3.Vector{X: -rt.At(0, 0), Y: -rt.At(1, 0), Z: -rt.At(2, 0)}
}

// poseMat returns the 3x4 [R|t] matrix.
func (c *Camera) poseMat() *mat.Dense {
	var pose mat.Dense
	pose.Augment(c.Rotation, c.Translation)
	return &pose
}

// Rig is a fixed arrangement of cameras sharing one set of intrinsics.
// Immutable after construction and safe for concurrent use.
type Rig struct {
	intrinsics  CameraIntrinsics
	distance    float64
	cameras     []Camera
	projections []*mat.Dense
}

// NewRig builds a rig of ViewCount cameras spread at equal angles on a
// circle of the given radius, all sharing the given intrinsics.
func NewRig(intrinsics CameraIntrinsics, distanceCm float64) (*Rig, error) {
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	if distanceCm <= 0 {
		return nil, errors.Errorf("camera distance must be positive, got %f", distanceCm)
	}
	k := intrinsics.CameraMatrix()
	angles := []float64{0, angleStepDeg, -angleStepDeg}
	cameras := make([]Camera, 0, ViewCount)
	projections := make([]*mat.Dense, 0, ViewCount)
	for _, angle := range angles {
		cam := NewCamera(angle, distanceCm)
		var p mat.Dense
		p.Mul(k, cam.poseMat())
		cameras = append(cameras, cam)
		projections = append(projections, &p)
	}
	return &Rig{
		intrinsics:  intrinsics,
		distance:    distanceCm,
		cameras:     cameras,
		projections: projections,
	}, nil
}

// DefaultRig returns the standard capture arrangement: front, back-left and
// back-right views at 200 cm.
func DefaultRig() *Rig {
	intrinsics := IntrinsicsFromFOV(DefaultImageWidth, DefaultImageHeight, DefaultFOVDeg)
	rig, err := NewRig(intrinsics, DefaultDistanceCm)
	if err != nil {
		// the default parameters are always valid
		panic(err)
	}
	return rig
}

// Intrinsics returns the shared camera intrinsics.
func (r *Rig) Intrinsics() CameraIntrinsics {
	return r.intrinsics
}

// Projection returns a copy of the 3x4 projection matrix K[R|t] of one view.
func (r *Rig) Projection(view int) (*mat.Dense, error) {
	if view < 0 || view >= len(r.projections) {
		return nil, errors.Errorf("view %d out of range, rig has %d cameras", view, len(r.projections))
	}
	return mat.DenseCopyOf(r.projections[view]), nil
}

// Project maps a 3D subject-frame point onto one view's normalized image
// plane. The second return is false when the point projects behind the
// camera.
func (r *Rig) Project(view int, pt r3.Vector) (r2.Point, bool) {
	if view < 0 || view >= len(r.projections) {
		return r2.Point{}, false
	}
	hom := mat.NewDense(4, 1, []float64{pt.X, pt.Y, pt.Z, 1})
	var px mat.Dense
	px.Mul(r.projections[view], hom)
	w := px.At(2, 0)
	if w <= 0 {
		return r2.Point{}, false
	}
	return r2.Point{
		X: px.At(0, 0) / w / float64(r.intrinsics.Width),
		Y: px.At(1, 0) / w / float64(r.intrinsics.Height),
	}, true
}
