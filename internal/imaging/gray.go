package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
)

// Fixed-point luma weights (16-bit) for R, G and B. They sum to 1<<16 so a
// gray pixel keeps its value.
const (
	lumaR = 19595
	lumaG = 38470
	lumaB = 7471
)

// ToGrid converts img to an 8-bit luma grid using
// (19595R + 38470G + 7471B + 0x8000) >> 16, the fixed-point form of
// 0.299R + 0.587G + 0.114B. On color frames this can differ by one gray level
// from a floating point conversion such as imaging.Grayscale, which matters
// next to the thresholds. Alpha is ignored. An image without pixels is an
// error.
func ToGrid(img image.Image) (*edgefinder.Grid, error) {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	data := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3]
			l := (uint32(p[0])*lumaR + uint32(p[1])*lumaG + uint32(p[2])*lumaB + 0x8000) >> 16
			data = append(data, float64(l))
		}
	}

	g, err := edgefinder.NewGrid(h, w, data)
	if err != nil {
		return nil, fmt.Errorf("convert %dx%d image: %w", w, h, err)
	}
	return g, nil
}

// Preprocess applies a Gaussian blur of the given radius before grid
// conversion, to suppress sensor noise on the droplet outline. A radius of
// zero or less returns img unchanged.
func Preprocess(img image.Image, blurRadius float64) image.Image {
	if blurRadius <= 0 {
		return img
	}
	return blur.Gaussian(img, blurRadius)
}

// Mirror flips img left to right. Analyzing a mirrored frame swaps the left
// and right angles, which is a quick symmetry check on a measurement.
func Mirror(img image.Image) image.Image {
	return imaging.FlipH(img)
}

// LoadGrid loads path through cache, preprocesses it and converts it to a
// grid.
func LoadGrid(cache *ImageCache, path string, blurRadius float64) (*edgefinder.Grid, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	g, err := ToGrid(Preprocess(img, blurRadius))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

// GridImage renders g as an 8-bit grayscale image. Samples are rounded and
// clamped to [0, 255].
func GridImage(g *edgefinder.Grid) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.Cols(), g.Rows()))
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			v := math.Round(g.At(y, x))
			out.Pix[y*out.Stride+x] = uint8(math.Max(0, math.Min(255, v)))
		}
	}
	return out
}
