// Package keypoint defines the 135-slot body keypoint frame produced by pose
// detection and the 3D skeleton derived from it. Slots 0-32 follow the
// MediaPipe pose landmark order; slots 33-134 hold synthesized limb midpoints
// followed by padding.
package keypoint

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const (
	// FrameSize is the number of slots in a keypoint frame.
	FrameSize = 135
	// LandmarkCount is the number of directly detected pose landmarks.
	LandmarkCount = 33
)

// MediaPipe pose landmark indices.
const (
	Nose = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
)

type (
	// Keypoints2D is an ordered keypoint frame in normalized image
	// coordinates, origin top-left, y down.
	Keypoints2D []r2.Point
	// Skeleton is an ordered set of 3D body points in centimeters, y up.
	// Slot indices correspond to the Keypoints2D layout.
	Skeleton []r3.Vector
)

// Landmarks may sit slightly outside the frame for partially visible
// subjects; anything past this margin is treated as undetected.
const (
	minNormalized = -0.1
	maxNormalized = 1.1
	originEpsilon = 1e-3
)

// Detected reports whether a normalized point represents a real detection.
// Detectors emit (0,0) for landmarks they could not find.
func Detected(p r2.Point) bool {
	inRange := p.X >= minNormalized && p.X <= maxNormalized &&
		p.Y >= minNormalized && p.Y <= maxNormalized
	notOrigin := math.Abs(p.X) > originEpsilon || math.Abs(p.Y) > originEpsilon
	return inRange && notOrigin
}

// Valid reports whether slot i holds a detected point.
func (kps Keypoints2D) Valid(i int) bool {
	return i >= 0 && i < len(kps) && Detected(kps[i])
}

// CountValid returns the number of detected points in the frame.
func (kps Keypoints2D) CountValid() int {
	n := 0
	for _, p := range kps {
		if Detected(p) {
			n++
		}
	}
	return n
}

// ValidPoint reports whether a 3D point is usable, meaning finite and not
// the zero vector reserved for failed slots.
func ValidPoint(v r3.Vector) bool {
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) ||
		math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0) {
		return false
	}
	return v.X != 0 || v.Y != 0 || v.Z != 0
}

// Valid reports whether slot i holds a usable 3D point.
func (s Skeleton) Valid(i int) bool {
	return i >= 0 && i < len(s) && ValidPoint(s[i])
}

// CountValid returns the number of usable points in the skeleton.
func (s Skeleton) CountValid() int {
	n := 0
	for _, v := range s {
		if ValidPoint(v) {
			n++
		}
	}
	return n
}

func midpoint(a, b r2.Point) r2.Point {
	return r2.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// midpointPairs lists the landmark pairs whose midpoints fill slots 33+,
// in order: arms then legs, left side first.
var midpointPairs = [8][2]int{
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftWrist},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
}

// Expand maps a detector output of exactly LandmarkCount landmarks onto the
// FrameSize frame layout. The landmarks copy over directly, limb midpoints
// are synthesized for pairs where both ends were detected, and the remainder
// pads with the last synthesized point, defaulting to frame center. Input of
// any other length yields an all-zero frame.
func Expand(landmarks []r2.Point) Keypoints2D {
	out := make(Keypoints2D, FrameSize)
	if len(landmarks) != LandmarkCount {
		return out
	}
	copy(out, landmarks)

	idx := LandmarkCount
	for _, pair := range midpointPairs {
		a, b := landmarks[pair[0]], landmarks[pair[1]]
		if Detected(a) && Detected(b) {
			out[idx] = midpoint(a, b)
			idx++
		}
	}
	for ; idx < FrameSize; idx++ {
		if prev := out[idx-1]; Detected(prev) {
			out[idx] = prev
		} else {
			out[idx] = r2.Point{X: 0.5, Y: 0.5}
		}
	}
	return out
}
