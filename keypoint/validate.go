package keypoint

import (
	"go.viam.com/bodyscan/utils"
)

// minLandmarksForPerson is the detection count below which a frame is
// considered to contain no person.
const minLandmarksForPerson = 10

// Validation reports whether a keypoint frame captures a person and, for
// capture flows that need the whole body in view, whether every body region
// is visible. Message carries guidance for repositioning when it is not.
type Validation struct {
	HasPerson  bool
	IsFullBody bool
	Confidence float64
	Message    string
}

// Validate inspects the landmark portion of a frame. Frames shorter than
// LandmarkCount never validate. Confidence grows with the detected landmark
// count and gets a bonus when the full body is in view.
func Validate(landmarks Keypoints2D) Validation {
	var result Validation
	if len(landmarks) < LandmarkCount {
		result.Message = "No person detected"
		return result
	}

	valid := 0
	for i := 0; i < LandmarkCount; i++ {
		if Detected(landmarks[i]) {
			valid++
		}
	}
	if valid < minLandmarksForPerson {
		result.Message = "No person detected"
		return result
	}
	result.HasPerson = true
	result.Confidence = utils.Clamp(float64(valid)/LandmarkCount, 0, 1)

	has := func(i int) bool { return Detected(landmarks[i]) }

	hasNose := has(Nose)
	hasAnEye := has(LeftEye) || has(LeftEyeInner) || has(LeftEyeOuter) ||
		has(RightEye) || has(RightEyeInner) || has(RightEyeOuter)
	hasAnEar := has(LeftEar) || has(RightEar)
	hasHead := hasNose && hasAnEye && hasAnEar

	hasShoulders := has(LeftShoulder) && has(RightShoulder)
	hasElbows := has(LeftElbow) && has(RightElbow)
	hasWrists := has(LeftWrist) && has(RightWrist)
	hasUpperBody := hasShoulders && hasElbows && hasWrists

	hasLeftHand := has(LeftWrist) && (has(LeftPinky) || has(LeftIndex) || has(LeftThumb))
	hasRightHand := has(RightWrist) && (has(RightPinky) || has(RightIndex) || has(RightThumb))

	hasHips := has(LeftHip) && has(RightHip)
	hasKnees := has(LeftKnee) && has(RightKnee)
	hasAnkles := has(LeftAnkle) && has(RightAnkle)
	hasLowerBody := hasHips && hasKnees && hasAnkles

	hasLeftFoot := has(LeftAnkle) && (has(LeftHeel) || has(LeftFootIndex))
	hasRightFoot := has(RightAnkle) && (has(RightHeel) || has(RightFootIndex))

	if hasHead && hasUpperBody && hasLeftHand && hasRightHand &&
		hasLowerBody && hasLeftFoot && hasRightFoot {
		result.IsFullBody = true
		result.Confidence = utils.Clamp(result.Confidence+0.2, 0, 1)
		return result
	}

	switch {
	case !hasHead:
		switch {
		case !hasNose:
			result.Message = "Head not fully visible - nose not detected"
		case !hasAnEye:
			result.Message = "Face not clearly visible - eyes not detected"
		case !hasAnEar:
			result.Message = "Head not fully visible - ears not detected"
		default:
			result.Message = "Head not fully visible"
		}
	case !hasUpperBody:
		switch {
		case !has(LeftShoulder) && !has(RightShoulder):
			result.Message = "Upper body not visible - shoulders not detected"
		case !has(LeftElbow) && !has(RightElbow):
			result.Message = "Arms not fully visible - elbows not detected"
		case !has(LeftWrist) && !has(RightWrist):
			result.Message = "Arms not fully visible - wrists not detected"
		default:
			result.Message = "Upper body not fully visible"
		}
	case !hasLeftHand:
		result.Message = "Left hand not fully visible"
	case !hasRightHand:
		result.Message = "Right hand not fully visible"
	case !hasLowerBody:
		switch {
		case !has(LeftHip) && !has(RightHip):
			result.Message = "Lower body not visible - hips not detected"
		case !has(LeftKnee) && !has(RightKnee):
			result.Message = "Legs not fully visible - knees not detected"
		case !has(LeftAnkle) && !has(RightAnkle):
			result.Message = "Legs not fully visible - ankles not detected"
		default:
			result.Message = "Lower body not fully visible"
		}
	case !hasLeftFoot:
		result.Message = "Left foot not fully visible"
	case !hasRightFoot:
		result.Message = "Right foot not fully visible"
	default:
		result.Message = "Full body not clearly visible"
	}
	return result
}
