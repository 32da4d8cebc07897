package bodymesh

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/bodyscan/keypoint"
)

// testSkeleton returns a roughly meter-scaled standing figure with the 13
// joints the builder anchors solids on. The remaining slots stay invalid.
func testSkeleton() keypoint.Skeleton {
	skel := make(keypoint.Skeleton, keypoint.FrameSize)
	joints := map[int]r3.Vector{
		keypoint.Nose:          {X: 0, Y: 1.6, Z: 0},
		keypoint.LeftShoulder:  {X: -0.2, Y: 1.4, Z: 0},
		keypoint.RightShoulder: {X: 0.2, Y: 1.4, Z: 0},
		keypoint.LeftElbow:     {X: -0.25, Y: 1.1, Z: 0},
		keypoint.RightElbow:    {X: 0.25, Y: 1.1, Z: 0},
		keypoint.LeftWrist:     {X: -0.3, Y: 0.85, Z: 0},
		keypoint.RightWrist:    {X: 0.3, Y: 0.85, Z: 0},
		keypoint.LeftHip:       {X: -0.15, Y: 0.9, Z: 0},
		keypoint.RightHip:      {X: 0.15, Y: 0.9, Z: 0},
		keypoint.LeftKnee:      {X: -0.15, Y: 0.5, Z: 0},
		keypoint.RightKnee:     {X: 0.15, Y: 0.5, Z: 0},
		keypoint.LeftAnkle:     {X: -0.15, Y: 0.1, Z: 0},
		keypoint.RightAnkle:    {X: 0.15, Y: 0.1, Z: 0},
	}
	for idx, v := range joints {
		skel[idx] = v
	}
	return skel
}

func scaledSkeleton(factor float64) keypoint.Skeleton {
	skel := testSkeleton()
	for i, v := range skel {
		skel[i] = v.Mul(factor)
	}
	return skel
}

func TestBuildFullSkeleton(t *testing.T) {
	logger := golog.NewTestLogger(t)
	builder := NewBuilder(DefaultConfig(), logger)
	mesh := builder.Build(testSkeleton())

	// 3 ellipsoids and 9 capped cylinders at rings=8, sectors=16.
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 3*153+9*70)
	test.That(t, len(mesh.Indices), test.ShouldEqual, 3*768+9*192)
	test.That(t, len(mesh.Normals), test.ShouldEqual, mesh.VertexCount())
	test.That(t, mesh.TriangleCount(), test.ShouldEqual, len(mesh.Indices)/3)
	test.That(t, mesh.Empty(), test.ShouldBeFalse)

	for _, idx := range mesh.Indices {
		test.That(t, idx, test.ShouldBeLessThan, mesh.VertexCount())
	}
	for _, n := range mesh.Normals {
		test.That(t, float64(n.Len()), test.ShouldAlmostEqual, 1.0, 1e-4)
	}

	// recentering leaves the bounding box symmetric around the origin
	bbMin, bbMax := mesh.BoundingBox()
	for axis := 0; axis < 3; axis++ {
		test.That(t, float64(bbMin[axis]+bbMax[axis]), test.ShouldAlmostEqual, 0, 1e-5)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	logger := golog.NewTestLogger(t)
	builder := NewBuilder(DefaultConfig(), logger)
	first := builder.Build(testSkeleton())
	second := builder.Build(testSkeleton())
	test.That(t, second, test.ShouldResemble, first)
}

func TestBuildMissingJoints(t *testing.T) {
	logger := golog.NewTestLogger(t)
	builder := NewBuilder(DefaultConfig(), logger)

	// an invalid knee drops the thigh and shin on that side
	skel := testSkeleton()
	skel[keypoint.LeftKnee] = r3.Vector{}
	mesh := builder.Build(skel)
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 3*153+7*70)
	test.That(t, len(mesh.Indices), test.ShouldEqual, 3*768+7*192)

	// no nose drops the head and neck
	skel = testSkeleton()
	skel[keypoint.Nose] = r3.Vector{}
	mesh = builder.Build(skel)
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 2*153+8*70)
	test.That(t, len(mesh.Indices), test.ShouldEqual, 2*768+8*192)
}

func TestBuildSparseSkeleton(t *testing.T) {
	logger := golog.NewTestLogger(t)
	builder := NewBuilder(DefaultConfig(), logger)

	t.Run("too short", func(t *testing.T) {
		mesh := builder.Build(make(keypoint.Skeleton, 14))
		test.That(t, mesh.Empty(), test.ShouldBeTrue)
		test.That(t, mesh.VertexCount(), test.ShouldEqual, 0)
	})

	t.Run("too few valid points", func(t *testing.T) {
		skel := make(keypoint.Skeleton, keypoint.FrameSize)
		for i := 0; i < 9; i++ {
			skel[i] = r3.Vector{X: 1, Y: 1, Z: 1}
		}
		mesh := builder.Build(skel)
		test.That(t, mesh.Empty(), test.ShouldBeTrue)
	})

	t.Run("nil skeleton", func(t *testing.T) {
		mesh := builder.Build(nil)
		test.That(t, mesh.Empty(), test.ShouldBeTrue)
	})
}

func TestBuildPlaceholder(t *testing.T) {
	logger := golog.NewTestLogger(t)
	builder := NewBuilder(DefaultConfig(), logger)

	// enough valid points to pass the gate, but every solid collapses
	// because the joints coincide
	skel := make(keypoint.Skeleton, keypoint.FrameSize)
	for _, idx := range []int{
		keypoint.Nose,
		keypoint.LeftShoulder, keypoint.RightShoulder,
		keypoint.LeftElbow, keypoint.RightElbow,
		keypoint.LeftWrist, keypoint.RightWrist,
		keypoint.LeftHip, keypoint.RightHip,
		keypoint.LeftKnee, keypoint.RightKnee,
		keypoint.LeftAnkle, keypoint.RightAnkle,
	} {
		skel[idx] = r3.Vector{X: 1, Y: 1, Z: 1}
	}
	mesh := builder.Build(skel)

	// two placeholder ellipsoids
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 2*153)
	test.That(t, len(mesh.Indices), test.ShouldEqual, 2*768)

	bbMin, bbMax := mesh.BoundingBox()
	test.That(t, bbMax[1]-bbMin[1], test.ShouldEqual, float32(1.5))
	test.That(t, float64(bbMin[1]), test.ShouldAlmostEqual, -0.75)
	test.That(t, float64(bbMax[1]), test.ShouldAlmostEqual, 0.75)
	test.That(t, float64(bbMin[0]), test.ShouldAlmostEqual, -0.25)
	test.That(t, float64(bbMax[0]), test.ShouldAlmostEqual, 0.25)
}

func TestBuildUnitHeuristics(t *testing.T) {
	logger := golog.NewTestLogger(t)
	builder := NewBuilder(DefaultConfig(), logger)

	t.Run("meter scale passes through", func(t *testing.T) {
		mesh := builder.Build(testSkeleton())
		reference := builder.Build(testSkeleton())
		test.That(t, mesh.largestExtent(), test.ShouldAlmostEqual, reference.largestExtent())
		test.That(t, mesh.largestExtent(), test.ShouldBeGreaterThan, 1.0)
		test.That(t, mesh.largestExtent(), test.ShouldBeLessThan, 2.0)
	})

	t.Run("centimeter scale shrinks 100x", func(t *testing.T) {
		meters := builder.Build(testSkeleton())
		centimeters := builder.Build(scaledSkeleton(100))
		test.That(t, centimeters.VertexCount(), test.ShouldEqual, meters.VertexCount())
		test.That(t, centimeters.largestExtent(), test.ShouldAlmostEqual, meters.largestExtent(), 1e-3)
	})

	t.Run("tiny scale inflates to target height", func(t *testing.T) {
		tiny := builder.Build(scaledSkeleton(0.001))
		test.That(t, tiny.largestExtent(), test.ShouldAlmostEqual, 1.5, 1e-3)
	})
}
