package bodymesh

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/bodyscan/keypoint"
)

// Builder turns triangulated skeletons into watertight-enough body meshes.
// It is stateless apart from its configuration and safe for concurrent use.
type Builder struct {
	cfg    Config
	logger golog.Logger
}

// NewBuilder returns a Builder with the given tuning.
func NewBuilder(cfg Config, logger golog.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logger}
}

// Build assembles a body mesh from a triangulated skeleton. Skeletons that
// are too short or too sparse produce an empty mesh; skeletons whose solids
// all collapse produce the placeholder humanoid.
func (b *Builder) Build(skeleton keypoint.Skeleton) *Mesh {
	mesh := &Mesh{}
	if len(skeleton) < b.cfg.MinSkeletonSize || skeleton.CountValid() < b.cfg.MinValidPoints {
		b.logger.Debugw("skeleton too sparse for a body mesh",
			"size", len(skeleton), "valid", skeleton.CountValid())
		return mesh
	}
	b.appendBody(mesh, skeleton)
	b.normalize(mesh)
	return mesh
}

func jointAt(skeleton keypoint.Skeleton, idx int) (r3.Vector, bool) {
	if !skeleton.Valid(idx) {
		return r3.Vector{}, false
	}
	return skeleton[idx], true
}

func midJoint(skeleton keypoint.Skeleton, i, j int) (r3.Vector, bool) {
	a, ok := jointAt(skeleton, i)
	if !ok {
		return r3.Vector{}, false
	}
	c, ok := jointAt(skeleton, j)
	if !ok {
		return r3.Vector{}, false
	}
	return a.Add(c).Mul(0.5), true
}

// appendBody adds the twelve body solids that have usable anchors: three
// ellipsoid bulks (head, torso, pelvis) sized from empirical proportions,
// a neck cylinder, and eight limb cylinders between adjacent joints.
func (b *Builder) appendBody(mesh *Mesh, skeleton keypoint.Skeleton) {
	nose, noseOK := jointAt(skeleton, keypoint.Nose)
	shoulderMid, shouldersOK := midJoint(skeleton, keypoint.LeftShoulder, keypoint.RightShoulder)
	hipMid, hipsOK := midJoint(skeleton, keypoint.LeftHip, keypoint.RightHip)

	if noseOK && shouldersOK {
		headRadius := b.cfg.HeadRadiusFraction * nose.Sub(shoulderMid).Norm()
		if headRadius > 0 {
			mesh.appendEllipsoid(nose, r3.Vector{
				X: headRadius,
				Y: headRadius * b.cfg.HeadVerticalStretch,
				Z: headRadius,
			}, b.cfg.Rings, b.cfg.Sectors)
		} else {
			b.logger.Debugw("skipping head, nose coincides with shoulders")
		}
		neckRadius := b.cfg.NeckRadiusFraction * nose.Sub(shoulderMid).Norm()
		mesh.appendCappedCylinder(shoulderMid, nose, neckRadius, b.cfg.Sectors)
	} else {
		b.logger.Debugw("skipping head and neck, anchors not detected")
	}

	if shouldersOK && hipsOK {
		leftShoulder := skeleton[keypoint.LeftShoulder]
		rightShoulder := skeleton[keypoint.RightShoulder]
		torsoHalfHeight := shoulderMid.Sub(hipMid).Norm() / 2
		torsoHalfWidth := b.cfg.TorsoWidthFraction * leftShoulder.Sub(rightShoulder).Norm()
		if torsoHalfHeight > 0 && torsoHalfWidth > 0 {
			mesh.appendEllipsoid(shoulderMid.Add(hipMid).Mul(0.5), r3.Vector{
				X: torsoHalfWidth,
				Y: torsoHalfHeight,
				Z: b.cfg.TorsoDepthRatio * torsoHalfWidth,
			}, b.cfg.Rings, b.cfg.Sectors)
		} else {
			b.logger.Debugw("skipping torso, degenerate span")
		}
	} else {
		b.logger.Debugw("skipping torso, anchors not detected")
	}

	if hipsOK {
		leftHip := skeleton[keypoint.LeftHip]
		rightHip := skeleton[keypoint.RightHip]
		hipSpan := leftHip.Sub(rightHip).Norm()
		if hipSpan > 0 {
			pelvisHalfWidth := b.cfg.PelvisWidthFraction * hipSpan
			mesh.appendEllipsoid(hipMid, r3.Vector{
				X: pelvisHalfWidth,
				Y: b.cfg.PelvisHeightFraction * hipSpan,
				Z: b.cfg.PelvisDepthRatio * pelvisHalfWidth,
			}, b.cfg.Rings, b.cfg.Sectors)
		} else {
			b.logger.Debugw("skipping pelvis, degenerate span")
		}
	} else {
		b.logger.Debugw("skipping pelvis, anchors not detected")
	}

	limbs := []struct {
		name     string
		from, to int
		fraction float64
	}{
		{"left thigh", keypoint.LeftHip, keypoint.LeftKnee, b.cfg.ThighRadiusFraction},
		{"right thigh", keypoint.RightHip, keypoint.RightKnee, b.cfg.ThighRadiusFraction},
		{"left shin", keypoint.LeftKnee, keypoint.LeftAnkle, b.cfg.ShinRadiusFraction},
		{"right shin", keypoint.RightKnee, keypoint.RightAnkle, b.cfg.ShinRadiusFraction},
		{"left upper arm", keypoint.LeftShoulder, keypoint.LeftElbow, b.cfg.UpperArmRadiusFraction},
		{"right upper arm", keypoint.RightShoulder, keypoint.RightElbow, b.cfg.UpperArmRadiusFraction},
		{"left forearm", keypoint.LeftElbow, keypoint.LeftWrist, b.cfg.ForearmRadiusFraction},
		{"right forearm", keypoint.RightElbow, keypoint.RightWrist, b.cfg.ForearmRadiusFraction},
	}
	for _, limb := range limbs {
		start, ok := jointAt(skeleton, limb.from)
		if !ok {
			b.logger.Debugw("skipping limb, joint not detected", "limb", limb.name)
			continue
		}
		end, ok := jointAt(skeleton, limb.to)
		if !ok {
			b.logger.Debugw("skipping limb, joint not detected", "limb", limb.name)
			continue
		}
		length := end.Sub(start).Norm()
		if length <= 0 {
			b.logger.Debugw("skipping limb, zero length", "limb", limb.name)
			continue
		}
		mesh.appendCappedCylinder(start, end, limb.fraction*length, b.cfg.Sectors)
	}
}

// normalize recenters the mesh on its bounding box and rescales it so the
// output is plausibly meter-sized. A model wider than CentimeterExtent is
// taken to be in centimeters; one smaller than MinUnitExtent is inflated
// to TargetHeightM. A degenerate mesh is replaced by the placeholder, which
// is already centered and sized and is returned untouched.
func (b *Builder) normalize(mesh *Mesh) {
	if mesh.VertexCount() == 0 || mesh.largestExtent() < b.cfg.DegenerateExtent {
		b.logger.Debugw("degenerate body mesh, substituting placeholder humanoid")
		*mesh = *b.placeholder()
		return
	}
	extent := mesh.largestExtent()
	scale := 1.0
	switch {
	case extent > b.cfg.CentimeterExtent:
		scale = 0.01
	case extent < b.cfg.MinUnitExtent:
		scale = b.cfg.TargetHeightM / extent
	}
	mesh.recenterAndScale(float32(scale))
}

// placeholder returns the fallback humanoid: a torso and head ellipsoid
// stacked to span exactly 1.5 units of height around the origin.
func (b *Builder) placeholder() *Mesh {
	mesh := &Mesh{}
	mesh.appendEllipsoid(
		r3.Vector{Y: -0.3},
		r3.Vector{X: 0.25, Y: 0.45, Z: 0.2},
		b.cfg.Rings, b.cfg.Sectors)
	mesh.appendEllipsoid(
		r3.Vector{Y: 0.45},
		r3.Vector{X: 0.18, Y: 0.3, Z: 0.18},
		b.cfg.Rings, b.cfg.Sectors)
	return mesh
}
