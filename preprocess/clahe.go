package preprocess

import (
	"errors"
	"image"
	"image/color"
	"math"

	"go.viam.com/utils"

	bsutils "go.viam.com/bodyscan/utils"
)

// CLAHEConfig tunes contrast-limited adaptive histogram equalization.
type CLAHEConfig struct {
	// TilesX and TilesY set the tile grid the image is split into.
	TilesX int `json:"tiles_x"`
	TilesY int `json:"tiles_y"`
	// ClipLimit caps each histogram bin at this multiple of a uniform
	// distribution over the tile; the excess is redistributed.
	ClipLimit float64 `json:"clip_limit"`
}

// DefaultCLAHEConfig returns the equalization tuning used in production.
func DefaultCLAHEConfig() CLAHEConfig {
	return CLAHEConfig{TilesX: 8, TilesY: 8, ClipLimit: 2.0}
}

// Validate ensures all parts of the config are valid.
func (config *CLAHEConfig) Validate(path string) error {
	if config.TilesX < 1 || config.TilesY < 1 {
		return utils.NewConfigValidationError(path, errors.New("tile counts should be >= 1"))
	}
	if config.ClipLimit <= 0 {
		return utils.NewConfigValidationError(path, errors.New("clip_limit should be positive"))
	}
	return nil
}

const histBins = 256

// EqualizeContrast runs CLAHE on the image's luma channel, leaving chroma
// untouched. Per-tile histograms are clipped and their excess redistributed,
// then each pixel's new luma is bilinearly interpolated between the lookup
// tables of the four nearest tiles.
func EqualizeContrast(img image.Image, cfg CLAHEConfig) *image.RGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}

	luma := make([]uint8, width*height)
	cb := make([]uint8, width*height)
	cr := make([]uint8, width*height)
	alpha := make([]uint8, width*height)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			yy, cbv, crv := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			luma[i], cb[i], cr[i], alpha[i] = yy, cbv, crv, uint8(a>>8)
			i++
		}
	}

	luts := tileLUTs(luma, width, height, cfg)

	tileW := float64(width) / float64(cfg.TilesX)
	tileH := float64(height) / float64(cfg.TilesY)
	i = 0
	for y := 0; y < height; y++ {
		ty0, ty1, fy := tileSpan(y, tileH, cfg.TilesY)
		for x := 0; x < width; x++ {
			tx0, tx1, fx := tileSpan(x, tileW, cfg.TilesX)
			v := luma[i]
			top := bsutils.Lerp(
				float64(luts[ty0*cfg.TilesX+tx0][v]),
				float64(luts[ty0*cfg.TilesX+tx1][v]), fx)
			bottom := bsutils.Lerp(
				float64(luts[ty1*cfg.TilesX+tx0][v]),
				float64(luts[ty1*cfg.TilesX+tx1][v]), fx)
			newLuma := uint8(math.Round(bsutils.Lerp(top, bottom, fy)))

			r, g, b := color.YCbCrToRGB(newLuma, cb[i], cr[i])
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: alpha[i]})
			i++
		}
	}
	return out
}

// tileSpan finds the two tile indices bracketing a pixel plus the blend
// factor between them. Pixels past the outermost tile centers clamp to the
// edge tiles.
func tileSpan(p int, tileSize float64, tiles int) (lo, hi int, frac float64) {
	g := (float64(p)+0.5)/tileSize - 0.5
	lo = int(math.Floor(g))
	frac = g - float64(lo)
	if lo < 0 {
		lo, frac = 0, 0
	}
	hi = lo + 1
	if hi >= tiles {
		hi = tiles - 1
	}
	return lo, hi, frac
}

// tileLUTs builds one clipped-equalization lookup table per tile.
func tileLUTs(luma []uint8, width, height int, cfg CLAHEConfig) [][]uint8 {
	luts := make([][]uint8, cfg.TilesX*cfg.TilesY)
	for ty := 0; ty < cfg.TilesY; ty++ {
		y0 := ty * height / cfg.TilesY
		y1 := (ty + 1) * height / cfg.TilesY
		for tx := 0; tx < cfg.TilesX; tx++ {
			x0 := tx * width / cfg.TilesX
			x1 := (tx + 1) * width / cfg.TilesX

			var hist [histBins]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[luma[y*width+x]]++
				}
			}
			luts[ty*cfg.TilesX+tx] = equalizeHist(&hist, (x1-x0)*(y1-y0), cfg.ClipLimit)
		}
	}
	return luts
}

// equalizeHist clips the histogram, spreads the excess back over the bins,
// and returns the cumulative mapping scaled to 0..255. Empty tiles map to
// identity.
func equalizeHist(hist *[histBins]int, area int, clipLimit float64) []uint8 {
	lut := make([]uint8, histBins)
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	limit := int(clipLimit * float64(area) / histBins)
	if limit < 1 {
		limit = 1
	}
	clipped := 0
	for i, n := range hist {
		if n > limit {
			clipped += n - limit
			hist[i] = limit
		}
	}
	batch := clipped / histBins
	residual := clipped % histBins
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := histBins / residual
		if step < 1 {
			step = 1
		}
		for i := 0; i < histBins && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}

	scale := 255.0 / float64(area)
	sum := 0
	for i, n := range hist {
		sum += n
		lut[i] = uint8(math.Round(float64(sum) * scale))
	}
	return lut
}
