package measure

import (
	"math"

	"go.viam.com/bodyscan/keypoint"
	bsutils "go.viam.com/bodyscan/utils"
)

// proportions measures widths and lengths from a single 2D keypoint frame.
// The subject's reference height converts normalized image distances to
// centimeters: cmPerPixel = refHeight / bodyHeightPixels, where body height
// runs from the nose to the lowest foot landmark.
func (e *Estimator) proportions(
	frame keypoint.Keypoints2D,
	refHeightCm float64,
	imgWidth, imgHeight int,
	mask *Mask,
) []float64 {
	out := make([]float64, ProportionCount)
	if len(frame) < keypoint.LandmarkCount {
		e.logger.Debugw("keypoint frame too short for proportions", "len", len(frame))
		return out
	}
	if refHeightCm <= 0 || refHeightCm > e.cfg.MaxRefHeightCm {
		e.logger.Debugw("reference height out of range", "height_cm", refHeightCm)
		return out
	}
	if imgWidth <= 0 || imgHeight <= 0 {
		e.logger.Debugw("invalid image dimensions", "width", imgWidth, "height", imgHeight)
		return out
	}
	if !frame.Valid(keypoint.Nose) {
		e.logger.Debugw("nose not detected, cannot scale proportions")
		return out
	}

	// lowest foot landmark, falling back to the lowest valid point anywhere
	footY := math.Inf(-1)
	for i := keypoint.LeftAnkle; i <= keypoint.RightFootIndex; i++ {
		if frame.Valid(i) && frame[i].Y > footY {
			footY = frame[i].Y
		}
	}
	if math.IsInf(footY, -1) {
		for i := range frame {
			if frame.Valid(i) && frame[i].Y > footY {
				footY = frame[i].Y
			}
		}
	}

	bodyHeightPx := (footY - frame[keypoint.Nose].Y) * float64(imgHeight)
	if bodyHeightPx <= 0 {
		e.logger.Debugw("non-positive body pixel height", "pixels", bodyHeightPx)
		return out
	}
	cmPerPixel := refHeightCm / bodyHeightPx

	// direct widths between landmark pairs, per-axis pixel scaling
	pixelDist := func(i, j int) (float64, bool) {
		if !frame.Valid(i) || !frame.Valid(j) {
			return 0, false
		}
		dx := (frame[i].X - frame[j].X) * float64(imgWidth)
		dy := (frame[i].Y - frame[j].Y) * float64(imgHeight)
		return math.Hypot(dx, dy), true
	}
	if d, ok := pixelDist(keypoint.LeftShoulder, keypoint.RightShoulder); ok {
		out[ProportionShoulderWidth] = e.cfg.ShoulderWidthRange.Apply(d * cmPerPixel)
	}
	if d, ok := pixelDist(keypoint.LeftHip, keypoint.RightHip); ok {
		out[ProportionHipWidth] = e.cfg.HipWidthRange.Apply(d * cmPerPixel)
	}
	if d, ok := pixelDist(keypoint.LeftEar, keypoint.RightEar); ok {
		out[ProportionNeckWidth] = e.cfg.NeckWidthRange.Apply(d * cmPerPixel)
	}

	// limb chains, scaled by the dominant image dimension and averaged
	// over whichever sides are fully detected
	maxDim := float64(bsutils.MaxInt(imgWidth, imgHeight))
	chainPixels := func(a, b, c int) (float64, bool) {
		if !frame.Valid(a) || !frame.Valid(b) || !frame.Valid(c) {
			return 0, false
		}
		d1 := math.Hypot(frame[a].X-frame[b].X, frame[a].Y-frame[b].Y)
		d2 := math.Hypot(frame[b].X-frame[c].X, frame[b].Y-frame[c].Y)
		return (d1 + d2) * maxDim, true
	}
	averageSides := func(l, r float64, okL, okR bool) (float64, bool) {
		switch {
		case okL && okR:
			return (l + r) / 2, true
		case okL:
			return l, true
		case okR:
			return r, true
		default:
			return 0, false
		}
	}
	leftArm, okLA := chainPixels(keypoint.LeftShoulder, keypoint.LeftElbow, keypoint.LeftWrist)
	rightArm, okRA := chainPixels(keypoint.RightShoulder, keypoint.RightElbow, keypoint.RightWrist)
	if px, ok := averageSides(leftArm, rightArm, okLA, okRA); ok {
		out[ProportionArmLength] = e.cfg.ArmLengthRange.Apply(px * cmPerPixel)
	}
	leftLeg, okLL := chainPixels(keypoint.LeftHip, keypoint.LeftKnee, keypoint.LeftAnkle)
	rightLeg, okRL := chainPixels(keypoint.RightHip, keypoint.RightKnee, keypoint.RightAnkle)
	if px, ok := averageSides(leftLeg, rightLeg, okLL, okRL); ok {
		out[ProportionLegLength] = e.cfg.LegLengthRange.Apply(px * cmPerPixel)
	}

	if frame.Valid(keypoint.LeftHip) && frame.Valid(keypoint.RightHip) {
		hipMidY := (frame[keypoint.LeftHip].Y + frame[keypoint.RightHip].Y) / 2

		topY := math.Inf(1)
		for i := range frame {
			if frame.Valid(i) && frame[i].Y < topY {
				topY = frame[i].Y
			}
		}
		if hipMidY > topY {
			out[ProportionUpperBody] = e.cfg.UpperBodyRange.Apply(
				(hipMidY - topY) * float64(imgHeight) * cmPerPixel)
		}

		ankleSum, ankleCount := 0.0, 0
		for _, idx := range []int{keypoint.LeftAnkle, keypoint.RightAnkle} {
			if frame.Valid(idx) {
				ankleSum += frame[idx].Y
				ankleCount++
			}
		}
		if ankleCount > 0 {
			ankleMidY := ankleSum / float64(ankleCount)
			if ankleMidY > hipMidY {
				out[ProportionLowerBody] = e.cfg.LowerBodyRange.Apply(
					(ankleMidY - hipMidY) * float64(imgHeight) * cmPerPixel)
			}
		}
	}

	out[ProportionThighWidth] = e.cfg.ThighWidthRange.Apply(
		e.thighWidthCm(frame, imgWidth, imgHeight, mask, cmPerPixel))
	return out
}

// thighWidthCm measures thigh width in the image plane, averaging the left
// and right thighs when both can be measured and taking whichever side
// succeeded otherwise. With a mask it scans the row at each thigh's hip-knee
// midpoint for silhouette edges; without a mask, or when a scan finds no
// edges, that side's width is estimated from the hip's offset to the body
// centerline.
func (e *Estimator) thighWidthCm(
	frame keypoint.Keypoints2D,
	imgWidth, imgHeight int,
	mask *Mask,
	cmPerPixel float64,
) float64 {
	centerX := 0.5
	if frame.Valid(keypoint.LeftHip) && frame.Valid(keypoint.RightHip) {
		centerX = (frame[keypoint.LeftHip].X + frame[keypoint.RightHip].X) / 2
	}
	aligned := mask.AlignTo(imgWidth, imgHeight)

	measureSide := func(hipIdx, kneeIdx int, scan thighRowScan) (float64, bool) {
		if !frame.Valid(hipIdx) || !frame.Valid(kneeIdx) {
			return 0, false
		}
		hip := frame[hipIdx]
		if aligned != nil {
			row := int((hip.Y + frame[kneeIdx].Y) / 2 * float64(imgHeight))
			hipX := int(hip.X * float64(imgWidth))
			centerPx := int(centerX * float64(imgWidth))
			if px, ok := scan(aligned, row, hipX, centerPx, float32(e.cfg.MaskThreshold)); ok {
				return float64(px) * cmPerPixel, true
			}
			e.logger.Debugw("thigh mask scan found no edges, falling back to hip offset", "row", row)
		}
		halfWidth := math.Abs(hip.X-centerX) * e.cfg.ThighExpansionFactor
		return 2 * halfWidth * float64(imgWidth) * cmPerPixel, true
	}

	left, okLeft := measureSide(keypoint.LeftHip, keypoint.LeftKnee, scanLeftThighRow)
	right, okRight := measureSide(keypoint.RightHip, keypoint.RightKnee, scanRightThighRow)
	switch {
	case okLeft && okRight:
		return (left + right) / 2
	case okLeft:
		return left
	case okRight:
		return right
	default:
		return 0
	}
}

type thighRowScan func(mask *Mask, row, hipX, centerX int, threshold float32) (int, bool)

// scanLeftThighRow locates the left thigh's horizontal extent on one mask
// row. The outer edge comes in from the image's left border; the inner edge
// comes back from the centerline bound expanded past the hip, so the scan
// cannot start on the other leg.
func scanLeftThighRow(mask *Mask, row, hipX, centerX int, threshold float32) (int, bool) {
	if row < 0 || row >= mask.Height {
		return 0, false
	}
	outer := -1
	for x := 0; x < mask.Width; x++ {
		if mask.At(x, row) > threshold {
			outer = x
			break
		}
	}
	inner := -1
	searchEnd := bsutils.MinInt(hipX+(centerX-hipX)*2, mask.Width-1)
	for x := searchEnd; x >= hipX && x >= 0; x-- {
		if mask.At(x, row) > threshold {
			inner = x
			break
		}
	}
	if outer < 0 || inner < 0 || inner <= outer {
		return 0, false
	}
	return inner - outer, true
}

// scanRightThighRow mirrors scanLeftThighRow. The inner edge walks out from
// the body centerline; the outer edge comes back from the image's right
// border down to the hip.
func scanRightThighRow(mask *Mask, row, hipX, centerX int, threshold float32) (int, bool) {
	if row < 0 || row >= mask.Height {
		return 0, false
	}
	inner := -1
	for x := bsutils.MaxInt(centerX, 0); x < mask.Width; x++ {
		if mask.At(x, row) > threshold {
			inner = x
			break
		}
	}
	outer := -1
	for x := mask.Width - 1; x >= hipX && x >= 0; x-- {
		if mask.At(x, row) > threshold {
			outer = x
			break
		}
	}
	if inner < 0 || outer < 0 || outer <= inner {
		return 0, false
	}
	return outer - inner, true
}
