package preprocess

import "image"

// KernelSize picks the structuring-element side for morphological
// closing from the raster's foreground density. Sparse text needs a
// larger kernel to reconnect strokes that sit further apart; dense text
// needs a small one so adjacent characters and lines do not merge. The
// four bands are fixed:
//
//	density > 0.10 → 1 (no-op)
//	density > 0.05 → 3
//	density > 0.01 → 5
//	otherwise      → 7
func KernelSize(density float64) int {
	switch {
	case density > 0.10:
		return 1
	case density > 0.05:
		return 3
	case density > 0.01:
		return 5
	default:
		return 7
	}
}

// Density returns the fraction of foreground (ink) pixels in a binary
// raster.
func Density(bin *image.Gray) float64 {
	total := len(bin.Pix)
	if total == 0 {
		return 0
	}
	var foreground int
	for _, v := range bin.Pix {
		if v != 0 {
			foreground++
		}
	}
	return float64(foreground) / float64(total)
}

// Close applies one morphological closing pass (dilate then erode) with
// a square structuring element sized by the raster's own foreground
// density. A pure function of its input: the same raster always yields
// the same cleaned raster. A blank raster selects the largest kernel
// and comes back unchanged.
func Close(bin *image.Gray) *image.Gray {
	ksize := KernelSize(Density(bin))
	if ksize <= 1 {
		out := image.NewGray(bin.Bounds())
		copy(out.Pix, bin.Pix)
		return out
	}
	radius := ksize / 2
	return erode(dilate(bin, radius), radius)
}

// dilate sets a pixel to foreground when any pixel in its
// (2·radius+1)² neighborhood is foreground.
func dilate(bin *image.Gray, radius int) *image.Gray {
	return morph(bin, radius, true)
}

// erode keeps a pixel foreground only when every pixel in its
// neighborhood is foreground.
func erode(bin *image.Gray, radius int) *image.Gray {
	return morph(bin, radius, false)
}

func morph(bin *image.Gray, radius int, anyHit bool) *image.Gray {
	bounds := bin.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hit := !anyHit
		neighborhood:
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					// Outside the raster counts as background.
					if !anyHit {
						hit = false
						break neighborhood
					}
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						if !anyHit {
							hit = false
							break neighborhood
						}
						continue
					}
					fg := bin.Pix[ny*w+nx] != 0
					if anyHit && fg {
						hit = true
						break neighborhood
					}
					if !anyHit && !fg {
						hit = false
						break neighborhood
					}
				}
			}
			if hit {
				out.Pix[y*w+x] = 255
			}
		}
	}
	return out
}
