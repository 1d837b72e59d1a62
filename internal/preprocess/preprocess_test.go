package preprocess

import (
	"image"
	"image/color"
	"testing"
)

// grayRamp builds a light background with a dark band, a crude stand-in
// for printed text on receipt paper.
func grayRamp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(230)
			if y > h/3 && y < h/3+3 {
				v = 20
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestNormalizeUpscalesSmallImages(t *testing.T) {
	img := grayRamp(300, 600)
	out := Normalize(img, 300, 4)

	minPixels := 300 * 4
	shorter := out.Bounds().Dx()
	if out.Bounds().Dy() < shorter {
		shorter = out.Bounds().Dy()
	}
	if shorter != minPixels {
		t.Errorf("shorter edge = %d, want exactly %d", shorter, minPixels)
	}

	// Aspect ratio is preserved within rounding.
	wantDy := 600 * minPixels / 300
	if dy := out.Bounds().Dy(); dy < wantDy-1 || dy > wantDy+1 {
		t.Errorf("height = %d, want about %d", dy, wantDy)
	}
}

func TestNormalizeLeavesLargeImagesAlone(t *testing.T) {
	img := grayRamp(1500, 2000)
	out := Normalize(img, 300, 4)
	if out.Bounds() != img.Bounds() {
		t.Errorf("bounds changed: %v -> %v", img.Bounds(), out.Bounds())
	}
}

func TestBinarizeInvertsInk(t *testing.T) {
	bin := Binarize(grayRamp(120, 90))

	// The dark band becomes foreground white, the paper background black.
	if v := bin.GrayAt(60, 31).Y; v != 255 {
		t.Errorf("ink pixel = %d, want 255", v)
	}
	if v := bin.GrayAt(60, 5).Y; v != 0 {
		t.Errorf("background pixel = %d, want 0", v)
	}
}

func TestBinarizeIsBinary(t *testing.T) {
	bin := Binarize(grayRamp(80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			if v := bin.GrayAt(x, y).Y; v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestKernelSizeBands(t *testing.T) {
	cases := []struct {
		density float64
		want    int
	}{
		{0.20, 1},
		{0.101, 1},
		{0.10, 3},
		{0.051, 3},
		{0.05, 5},
		{0.011, 5},
		{0.01, 7},
		{0.001, 7},
		{0, 7},
	}
	for _, c := range cases {
		if got := KernelSize(c.density); got != c.want {
			t.Errorf("KernelSize(%v) = %d, want %d", c.density, got, c.want)
		}
	}
}

func TestDensity(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		bin.SetGray(x, 0, color.Gray{Y: 255})
	}
	if got := Density(bin); got != 0.1 {
		t.Errorf("Density = %v, want 0.1", got)
	}
}

func TestCloseFillsGaps(t *testing.T) {
	// A stroke with a one-pixel hole. The sparse raster picks a large
	// kernel, and closing bridges the gap.
	bin := image.NewGray(image.Rect(0, 0, 40, 20))
	for x := 5; x < 35; x++ {
		if x != 20 {
			bin.SetGray(x, 10, color.Gray{Y: 255})
		}
	}

	closed := Close(bin)
	if v := closed.GrayAt(20, 10).Y; v != 255 {
		t.Errorf("gap pixel = %d after closing, want 255", v)
	}
}

func TestCloseDenseRasterUntouched(t *testing.T) {
	// Above 10% density the kernel is 1 and closing is a no-op.
	bin := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 5; x++ {
			bin.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	closed := Close(bin)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if closed.GrayAt(x, y).Y != bin.GrayAt(x, y).Y {
				t.Fatalf("pixel (%d,%d) changed on a dense raster", x, y)
			}
		}
	}
}
