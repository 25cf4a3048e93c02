package ocr

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when the binary was built without OCR support.
var ErrUnavailable = errors.New("ocr: not available in this build (requires cgo and tesseract)")

// DefaultLanguage is the Tesseract language code used when none is given.
const DefaultLanguage = "eng"

// Reader reads the label inside Region of each frame. It satisfies the
// batch driver's Labeler interface.
type Reader struct {
	Region   image.Rectangle
	Language string
}

// Label reads the label of img.
func (r *Reader) Label(img image.Image) (string, error) {
	lang := r.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	return ReadLabel(img, r.Region, lang)
}

// ParseRegion parses "x1,y1,x2,y2" into a rectangle.
func ParseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[0] >= v[2] || v[1] >= v[3] {
		return image.Rectangle{}, fmt.Errorf("region %q: x1 must be < x2, y1 must be < y2", s)
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

// checkRegion returns region clipped to img, failing if nothing is left.
func checkRegion(img image.Image, region image.Rectangle) (image.Rectangle, error) {
	bounds := img.Bounds()
	clipped := region.Intersect(bounds)
	if clipped.Empty() {
		return image.Rectangle{}, fmt.Errorf("label region %v outside image bounds %v", region, bounds)
	}
	return clipped, nil
}

// cleanLabel collapses all whitespace runs, including newlines, into single
// spaces.
func cleanLabel(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
