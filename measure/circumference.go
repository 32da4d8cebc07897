package measure

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/bodyscan/keypoint"
)

// sliceCircumferences measures waist, chest, hips, thighs, and upper arms
// by collecting skeleton points inside horizontal bands, fitting an ellipse
// to their XZ projection, and reporting the Ramanujan perimeter. Bands are
// placed as fractions of the vertical extent measured down from the top.
func (e *Estimator) sliceCircumferences(skeleton keypoint.Skeleton) []float64 {
	out := make([]float64, SliceCount)
	valid := skeleton.CountValid()
	if valid < e.cfg.MinValidPoints {
		e.logger.Debugw("too few valid skeleton points for slice measurements",
			"valid", valid, "needed", e.cfg.MinValidPoints)
		return out
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range skeleton {
		if !skeleton.Valid(i) {
			continue
		}
		minY = math.Min(minY, skeleton[i].Y)
		maxY = math.Max(maxY, skeleton[i].Y)
	}
	extent := maxY - minY
	if extent <= 0 {
		e.logger.Debugw("skeleton has no vertical extent")
		return out
	}
	tolerance := e.cfg.BandTolerance * extent

	slice := func(fraction float64, side func(r3.Vector) bool) []r2.Point {
		bandY := maxY - fraction*extent
		var pts []r2.Point
		for i := range skeleton {
			if !skeleton.Valid(i) {
				continue
			}
			p := skeleton[i]
			if math.Abs(p.Y-bandY) > tolerance {
				continue
			}
			if side != nil && !side(p) {
				continue
			}
			pts = append(pts, r2.Point{X: p.X, Y: p.Z})
		}
		return pts
	}
	circumference := func(band string, pts []r2.Point) float64 {
		if len(pts) < e.cfg.MinBandPoints {
			e.logger.Debugw("not enough points in band", "band", band, "points", len(pts))
			return 0
		}
		a, b, err := fitEllipse(pts)
		if err != nil {
			e.logger.Debugw("ellipse fit failed", "band", band, "error", err)
			return 0
		}
		return ramanujanCircumference(a, b)
	}
	left := func(p r3.Vector) bool { return p.X < 0 }
	right := func(p r3.Vector) bool { return p.X > 0 }

	out[SliceWaist] = e.cfg.WaistRange.Apply(circumference("waist", slice(e.cfg.WaistFraction, nil)))
	out[SliceChest] = e.cfg.ChestRange.Apply(circumference("chest", slice(e.cfg.ChestFraction, nil)))
	out[SliceHips] = e.cfg.HipsRange.Apply(circumference("hips", slice(e.cfg.HipsFraction, nil)))
	out[SliceLeftThigh] = e.cfg.ThighGirthRange.Apply(circumference("left thigh", slice(e.cfg.ThighFraction, left)))
	out[SliceRightThigh] = e.cfg.ThighGirthRange.Apply(circumference("right thigh", slice(e.cfg.ThighFraction, right)))
	out[SliceLeftArm] = e.cfg.ArmGirthRange.Apply(circumference("left arm", slice(e.cfg.ArmFraction, left)))
	out[SliceRightArm] = e.cfg.ArmGirthRange.Apply(circumference("right arm", slice(e.cfg.ArmFraction, right)))
	return out
}
