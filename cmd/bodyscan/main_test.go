package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/bodyscan/gltf"
	"go.viam.com/bodyscan/keypoint"
	"go.viam.com/bodyscan/measure"
	"go.viam.com/bodyscan/multiview"
)

// writeInput marshals input to a JSON file under dir and returns its path.
func writeInput(t *testing.T, dir, name string, input *scanInput) string {
	t.Helper()
	data, err := json.Marshal(input)
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(dir, name)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)
	return path
}

// fullBodyLandmarks is a frontal detection of a standing subject with every
// body region in view.
func fullBodyLandmarks() []inputPoint {
	pts := make([]inputPoint, keypoint.LandmarkCount)
	set := func(i int, x, y float64) { pts[i] = inputPoint{X: x, Y: y} }
	set(keypoint.Nose, 0.50, 0.10)
	set(keypoint.LeftEyeInner, 0.49, 0.08)
	set(keypoint.LeftEye, 0.48, 0.08)
	set(keypoint.LeftEyeOuter, 0.47, 0.08)
	set(keypoint.RightEyeInner, 0.51, 0.08)
	set(keypoint.RightEye, 0.52, 0.08)
	set(keypoint.RightEyeOuter, 0.53, 0.08)
	set(keypoint.LeftEar, 0.46, 0.09)
	set(keypoint.RightEar, 0.54, 0.09)
	set(keypoint.MouthLeft, 0.49, 0.12)
	set(keypoint.MouthRight, 0.51, 0.12)
	set(keypoint.LeftShoulder, 0.35, 0.25)
	set(keypoint.RightShoulder, 0.65, 0.25)
	set(keypoint.LeftElbow, 0.32, 0.38)
	set(keypoint.RightElbow, 0.68, 0.38)
	set(keypoint.LeftWrist, 0.30, 0.50)
	set(keypoint.RightWrist, 0.70, 0.50)
	set(keypoint.LeftPinky, 0.29, 0.53)
	set(keypoint.RightPinky, 0.71, 0.53)
	set(keypoint.LeftIndex, 0.30, 0.54)
	set(keypoint.RightIndex, 0.70, 0.54)
	set(keypoint.LeftThumb, 0.31, 0.52)
	set(keypoint.RightThumb, 0.69, 0.52)
	set(keypoint.LeftHip, 0.40, 0.50)
	set(keypoint.RightHip, 0.60, 0.50)
	set(keypoint.LeftKnee, 0.40, 0.70)
	set(keypoint.RightKnee, 0.60, 0.70)
	set(keypoint.LeftAnkle, 0.40, 0.85)
	set(keypoint.RightAnkle, 0.60, 0.85)
	set(keypoint.LeftHeel, 0.39, 0.88)
	set(keypoint.RightHeel, 0.61, 0.88)
	set(keypoint.LeftFootIndex, 0.42, 0.90)
	set(keypoint.RightFootIndex, 0.58, 0.90)
	return pts
}

// projectedViews captures a 120 cm standing figure from all three rig
// cameras. Triangulation negates Y, so joints are stored flipped.
func projectedViews(t *testing.T) [][]inputPoint {
	t.Helper()
	world := make(keypoint.Skeleton, keypoint.FrameSize)
	set := func(i int, x, y, z float64) {
		world[i] = r3.Vector{X: x, Y: -y, Z: z}
	}
	set(keypoint.Nose, 0, 80, 0)
	set(keypoint.LeftShoulder, -20, 60, 0)
	set(keypoint.RightShoulder, 20, 60, 0)
	set(keypoint.LeftElbow, -25, 35, 0)
	set(keypoint.RightElbow, 25, 35, 0)
	set(keypoint.LeftWrist, -28, 10, 0)
	set(keypoint.RightWrist, 28, 10, 0)
	set(keypoint.LeftHip, -15, 0, 5)
	set(keypoint.RightHip, 15, 0, 5)
	set(keypoint.LeftKnee, -15, -20, 0)
	set(keypoint.RightKnee, 15, -20, 0)
	set(keypoint.LeftAnkle, -15, -40, 0)
	set(keypoint.RightAnkle, 15, -40, 0)

	rig := multiview.DefaultRig()
	views := make([][]inputPoint, multiview.ViewCount)
	for v := range views {
		views[v] = make([]inputPoint, keypoint.FrameSize)
		for i, pt := range world {
			if !keypoint.ValidPoint(pt) {
				continue
			}
			px, ok := rig.Project(v, pt)
			test.That(t, ok, test.ShouldBeTrue)
			views[v][i] = inputPoint{X: px.X, Y: px.Y}
		}
	}
	return views
}

func TestMainMain(t *testing.T) {
	tmp := t.TempDir()

	singlePath := writeInput(t, tmp, "single.json", &scanInput{
		Views:       [][]inputPoint{fullBodyLandmarks()},
		ImageWidth:  1000,
		ImageHeight: 1000,
	})
	multiInput := &scanInput{
		Views:       projectedViews(t),
		ImageWidth:  multiview.DefaultImageWidth,
		ImageHeight: multiview.DefaultImageHeight,
		HeightCm:    170,
	}
	multiPath := writeInput(t, tmp, "multi.json", multiInput)
	twoViewPath := writeInput(t, tmp, "twoviews.json", &scanInput{
		Views:       multiInput.Views[:2],
		ImageWidth:  multiview.DefaultImageWidth,
		ImageHeight: multiview.DefaultImageHeight,
	})
	shortViewPath := writeInput(t, tmp, "short.json", &scanInput{
		Views:       [][]inputPoint{fullBodyLandmarks()[:10]},
		ImageWidth:  1000,
		ImageHeight: 1000,
	})
	emptyPath := writeInput(t, tmp, "empty.json", &scanInput{})

	badJSONPath := filepath.Join(tmp, "bad.json")
	test.That(t, os.WriteFile(badJSONPath, []byte("{"), 0o600), test.ShouldBeNil)
	badTuningPath := filepath.Join(tmp, "badtuning.json")
	test.That(t, os.WriteFile(badTuningPath, []byte(`{"min_valid_points": 0}`), 0o600), test.ShouldBeNil)

	tuning := measure.DefaultConfig()
	tuning.ShoulderWidthRange = measure.Range{Min: 1, Max: 500}
	tuningData, err := json.Marshal(tuning)
	test.That(t, err, test.ShouldBeNil)
	tuningPath := filepath.Join(tmp, "tuning.json")
	test.That(t, os.WriteFile(tuningPath, tuningData, 0o600), test.ShouldBeNil)

	outPath := filepath.Join(tmp, "body.glb")
	plotPath := filepath.Join(tmp, "skeleton.png")

	testutils.TestMain(t, mainWithArgs, []testutils.MainTestCase{
		// parsing
		{Name: "no args", Args: nil, Err: "flag required"},
		{Name: "unknown named arg", Args: []string{"--unknown"}, Err: "not defined"},
		{Name: "missing keypoints file", Args: []string{"--keypoints=" + filepath.Join(tmp, "nope.json")}, Err: "no such file"},

		// input validation
		{Name: "malformed keypoints", Args: []string{"--keypoints=" + badJSONPath}, Err: "cannot parse keypoints JSON"},
		{Name: "no views", Args: []string{"--keypoints=" + emptyPath}, Err: "no views"},
		{Name: "short view", Args: []string{"--keypoints=" + shortViewPath}, Err: "want 33 or 135"},
		{Name: "two views", Args: []string{"--keypoints=" + twoViewPath}, Err: "expected 1 or 3 views"},
		{Name: "bad tuning", Args: []string{"--keypoints=" + singlePath, "--measure-config=" + badTuningPath}, Err: "cannot load measurement tuning"},

		// scanning
		{Name: "single view", Args: []string{"--keypoints=" + singlePath, "--height=165"}, Err: "",
			After: func(t *testing.T, logs *observer.ObservedLogs) {
				t.Helper()
				test.That(t, logs.FilterMessageSnippet("measurement").All(), test.ShouldHaveLength, measure.ProportionCount)
				test.That(t, logs.FilterMessageSnippet("wrote model").All(), test.ShouldHaveLength, 0)
				test.That(t, logs.FilterMessageSnippet("incomplete").All(), test.ShouldHaveLength, 0)
			}},
		{Name: "single view with tuning", Args: []string{"--keypoints=" + singlePath, "--measure-config=" + tuningPath}, Err: "",
			After: func(t *testing.T, logs *observer.ObservedLogs) {
				t.Helper()
				test.That(t, logs.FilterMessageSnippet("measurement").All(), test.ShouldHaveLength, measure.ProportionCount)
			}},
		{Name: "three views", Args: []string{"--keypoints=" + multiPath, "--out=" + outPath, "--plot=" + plotPath}, Err: "",
			After: func(t *testing.T, logs *observer.ObservedLogs) {
				t.Helper()
				test.That(t, logs.FilterMessageSnippet("measurement").All(), test.ShouldHaveLength, measure.SliceCount)
				test.That(t, logs.FilterMessageSnippet("wrote model").All(), test.ShouldHaveLength, 1)
				test.That(t, logs.FilterMessageSnippet("wrote plot").All(), test.ShouldHaveLength, 1)
				// the synthesized frames have no hand landmarks
				test.That(t, logs.FilterMessageSnippet("incomplete").All(), test.ShouldHaveLength, 1)

				data, err := os.ReadFile(outPath)
				test.That(t, err, test.ShouldBeNil)
				doc, _, err := gltf.Decode(data)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, doc.Asset.Version, test.ShouldEqual, "2.0")

				info, err := os.Stat(plotPath)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
			}},
	})
}
