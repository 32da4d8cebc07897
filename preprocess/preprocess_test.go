package preprocess

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestDownscale(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 1280, 960))

	t.Run("shrinks wide images", func(t *testing.T) {
		out := Downscale(big, 640)
		test.That(t, out.Bounds().Dx(), test.ShouldEqual, 640)
		test.That(t, out.Bounds().Dy(), test.ShouldEqual, 480)
	})

	t.Run("passes small images through", func(t *testing.T) {
		small := image.NewRGBA(image.Rect(0, 0, 320, 240))
		test.That(t, Downscale(small, 640), test.ShouldEqual, small)
	})

	t.Run("zero limit disables", func(t *testing.T) {
		test.That(t, Downscale(big, 0), test.ShouldEqual, big)
	})
}

func TestProcess(t *testing.T) {
	// left half dim, right half brighter
	img := image.NewRGBA(image.Rect(0, 0, 1280, 960))
	for y := 0; y < 960; y++ {
		for x := 0; x < 1280; x++ {
			level := uint8(110)
			if x >= 640 {
				level = 140
			}
			img.SetRGBA(x, y, color.RGBA{R: level, G: level, B: level, A: 255})
		}
	}

	out := Process(img)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 640)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 480)
	minOut, maxOut := lumaRange(out)
	test.That(t, maxOut-minOut, test.ShouldBeGreaterThanOrEqualTo, 25)

	t.Run("already small", func(t *testing.T) {
		small := image.NewRGBA(image.Rect(0, 0, 320, 240))
		out := Process(small)
		test.That(t, out.Bounds().Dx(), test.ShouldEqual, 320)
		test.That(t, out.Bounds().Dy(), test.ShouldEqual, 240)
	})
}
