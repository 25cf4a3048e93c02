//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// minLabelHeight is the height small label crops are enlarged to before
// recognition; Tesseract misses glyphs only a few pixels tall.
const minLabelHeight = 48

// ReadLabel recognizes the single line of text inside region and returns it
// with whitespace normalized.
func ReadLabel(img image.Image, region image.Rectangle, language string) (string, error) {
	region, err := checkRegion(img, region)
	if err != nil {
		return "", err
	}

	crop := imaging.Grayscale(imaging.Crop(img, region))
	if h := crop.Bounds().Dy(); h < minLabelHeight {
		crop = imaging.Resize(crop, 0, minLabelHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("failed to encode label region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return cleanLabel(text), nil
}

// Available reports whether OCR is compiled in.
func Available() bool { return true }

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
