// Package preprocess normalizes photos before keypoint detection:
// detector-sized downscaling plus contrast-limited adaptive histogram
// equalization on the luma channel.
package preprocess

import (
	"image"

	"github.com/nfnt/resize"
)

// DefaultMaxWidth is the width images are reduced to before detection.
const DefaultMaxWidth = 640

// Downscale reduces img to at most maxWidth wide, preserving the aspect
// ratio with bilinear filtering. Images at or under the limit pass through
// untouched, as does everything when maxWidth is 0.
func Downscale(img image.Image, maxWidth uint) image.Image {
	if maxWidth == 0 || uint(img.Bounds().Dx()) <= maxWidth {
		return img
	}
	return resize.Resize(maxWidth, 0, img, resize.Bilinear)
}

// Process runs the standard pipeline: downscale to DefaultMaxWidth, then
// equalize contrast with the default tuning.
func Process(img image.Image) *image.RGBA {
	return EqualizeContrast(Downscale(img, DefaultMaxWidth), DefaultCLAHEConfig())
}
