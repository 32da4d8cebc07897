package measure

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	bsutils "go.viam.com/bodyscan/utils"
)

// Mask is a row-major person-segmentation confidence grid. Values are
// expected in [0, 1].
type Mask struct {
	Width  int
	Height int
	Data   []float32
}

// NewMask wraps confidence data in a Mask, checking the dimensions.
func NewMask(width, height int, data []float32) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("mask dimensions %dx%d must be positive", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Errorf("mask data length %d does not match %dx%d", len(data), width, height)
	}
	return &Mask{Width: width, Height: height, Data: data}, nil
}

// At returns the confidence at (x, y). Out-of-bounds reads are 0.
func (m *Mask) At(x, y int) float32 {
	if m == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// AlignTo resizes the mask to the given dimensions with bilinear filtering
// so it can be scanned in image pixel coordinates. A mask that already
// matches is returned as is.
func (m *Mask) AlignTo(width, height int) *Mask {
	if m == nil || width <= 0 || height <= 0 {
		return nil
	}
	if m.Width == width && m.Height == height {
		return m
	}
	src := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := bsutils.Clamp(float64(m.At(x, y)), 0, 1)
			src.SetGray16(x, y, color.Gray16{Y: uint16(v * math.MaxUint16)})
		}
	}
	resized := resize.Resize(uint(width), uint(height), src, resize.Bilinear)
	out := &Mask{Width: width, Height: height, Data: make([]float32, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray, _, _, _ := resized.At(x, y).RGBA()
			out.Data[y*width+x] = float32(gray) / math.MaxUint16
		}
	}
	return out
}
