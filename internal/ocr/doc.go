// Package ocr reads short text labels, such as a timestamp or frame counter
// burned into a video frame, using Tesseract.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The binding (gosseract/v2) needs cgo. Builds without cgo compile a stub
// whose ReadLabel returns ErrUnavailable, so time series runs fall back to
// numbering frames by index.
//
// # Regions
//
// Labels are read from a rectangle of the frame given in pixel coordinates,
// Min inclusive and Max exclusive. Crop tightly around the label: the whole
// frame holds the droplet silhouette, which Tesseract reads as noise.
package ocr
