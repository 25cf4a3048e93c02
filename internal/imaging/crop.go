package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Inset extracts the square of half-width half around center, clipped to
// the image, and scales it by scale. It is used to zoom into a contact
// point. A scale of 1 (or less than or equal to 0) keeps the native size.
func Inset(img image.Image, center image.Point, half int, scale float64) (*image.NRGBA, error) {
	if half <= 0 {
		return nil, fmt.Errorf("inset half-width must be positive, got %d", half)
	}
	bounds := img.Bounds()
	region := image.Rect(center.X-half, center.Y-half, center.X+half, center.Y+half).Intersect(bounds)
	if region.Empty() {
		return nil, fmt.Errorf("inset around (%d,%d) is outside image bounds (%d,%d)-(%d,%d)",
			center.X, center.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	inset := imaging.Crop(img, region)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(inset.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(inset.Bounds().Dy())*scale))
		inset = imaging.Resize(inset, newWidth, newHeight, imaging.NearestNeighbor)
	}

	return inset, nil
}
