// Package preprocess turns a photographed receipt into a clean binary
// raster that an OCR engine can read reliably.
//
// The pipeline is strictly sequential and deterministic:
//
//	Normalize: upscale so the shorter edge reaches scan resolution
//	Binarize: grayscale, illumination flattening, Otsu threshold
//	Close: density-adaptive morphological closing
//
// Every stage is a pure function of its input image; no stage mutates
// its argument.
package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
	"hoadon/internal/logger"
)

const (
	// DefaultTargetDPI is the scan resolution OCR engines work best at.
	DefaultTargetDPI = 300

	// DefaultMinSizeInches is the assumed physical size of the smaller
	// receipt dimension.
	DefaultMinSizeInches = 4
)

// Normalize resizes img so that its shorter dimension covers at least
// minSizeInches of paper at targetDPI. Images already large enough pass
// through unchanged, so the operation is idempotent. Upscaling is
// uniform (aspect ratio preserved) with Lanczos resampling, which keeps
// character edges crisp under magnification.
func Normalize(img image.Image, targetDPI, minSizeInches int) image.Image {
	log := logger.WithComponent("preprocess")

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	minPixels := targetDPI * minSizeInches

	shorter := width
	if height < shorter {
		shorter = height
	}
	if shorter >= minPixels {
		log.Debug().
			Int("width", width).
			Int("height", height).
			Msg("Image large enough, skipping resize")
		return img
	}

	scale := float64(minPixels) / float64(shorter)
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)

	log.Debug().
		Int("width", newWidth).
		Int("height", newHeight).
		Msg("Resized image to reach target scan resolution")
	return resized
}
