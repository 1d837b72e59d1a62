package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

// backgroundWindow is the side of the square mean filter used to
// estimate the illumination background. 55 pixels is large against
// stroke width at 300 DPI, so the estimate follows lighting gradients
// while ignoring text-scale detail.
const backgroundWindow = 55

// Binarize converts a normalized receipt photo into a binary raster
// where ink is foreground (255) and paper is background (0).
//
// Stages: grayscale conversion, background estimation with a large mean
// filter, flattening by dividing the image by its background (cancels
// shadows and uneven lighting), then Otsu thresholding on the flattened
// image. The whole chain is deterministic: identical pixels always
// produce the identical raster.
func Binarize(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	plane := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Grayscale output has R == G == B.
			plane[y*w+x] = gray.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y).R
		}
	}

	background := meanFilter(plane, w, h, backgroundWindow)
	flattened := flatten(plane, background)
	threshold := otsuThreshold(flattened)

	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range flattened {
		// Inverted binarization: dark pixels (ink) become foreground.
		if v <= threshold {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}

// meanFilter computes a window×window box mean at every pixel using a
// summed-area table, clamping the window at the image borders.
func meanFilter(plane []uint8, w, h, window int) []uint8 {
	radius := window / 2

	// Integral image with one extra row/column of zeros.
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(plane[y*w+x])
			integral[(y+1)*(w+1)+(x+1)] = integral[y*(w+1)+(x+1)] + rowSum
		}
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		y0 := max(0, y-radius)
		y1 := min(h-1, y+radius)
		for x := 0; x < w; x++ {
			x0 := max(0, x-radius)
			x1 := min(w-1, x+radius)

			sum := integral[(y1+1)*(w+1)+(x1+1)] -
				integral[y0*(w+1)+(x1+1)] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			area := uint64((y1 - y0 + 1) * (x1 - x0 + 1))
			out[y*w+x] = uint8(sum / area)
		}
	}
	return out
}

// flatten divides the image by its background estimate and rescales to
// the 0–255 range. A zero background pixel cannot crash the division:
// it is clamped to 1, matching the guard the blur makes near-unreachable.
func flatten(plane, background []uint8) []uint8 {
	out := make([]uint8, len(plane))
	for i := range plane {
		bg := uint32(background[i])
		if bg == 0 {
			bg = 1
		}
		v := uint32(plane[i]) * 255 / bg
		if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}

// otsuThreshold selects the threshold that maximizes between-class
// variance of the intensity histogram (the standard bimodal-histogram
// method). Deterministic for a given histogram.
func otsuThreshold(plane []uint8) uint8 {
	var histogram [256]int
	for _, v := range plane {
		histogram[v]++
	}
	total := len(plane)
	if total == 0 {
		return 0
	}

	var sum float64
	for i, count := range histogram {
		sum += float64(i) * float64(count)
	}

	var sumBack, weightBack float64
	var maxVariance float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		weightBack += float64(histogram[t])
		if weightBack == 0 {
			continue
		}
		weightFore := float64(total) - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t) * float64(histogram[t])

		meanBack := sumBack / weightBack
		meanFore := (sum - sumBack) / weightFore
		variance := weightBack * weightFore * (meanBack - meanFore) * (meanBack - meanFore)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(t)
		}
	}
	return threshold
}
