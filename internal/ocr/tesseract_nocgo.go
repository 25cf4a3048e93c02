//go:build !cgo

package ocr

import "image"

// ReadLabel validates region and returns ErrUnavailable.
func ReadLabel(img image.Image, region image.Rectangle, language string) (string, error) {
	if _, err := checkRegion(img, region); err != nil {
		return "", err
	}
	return "", ErrUnavailable
}

// Available reports whether OCR is compiled in.
func Available() bool { return false }

// Version returns an empty string.
func Version() string { return "" }
