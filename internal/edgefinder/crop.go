package edgefinder

import (
	"image"

	"gonum.org/v1/gonum/mat"
)

// CropBounds returns the region Crop keeps: the bounding box of every sample
// brighter than cfg.ThresholdLight, grown by cfg.Offset on each side and
// clamped to the grid. X spans columns and Y spans rows; Max is exclusive.
//
// The far edges extend Offset past the last bright row and column, as an
// exclusive bound, but never less than one past them, so every bright
// sample is always kept.
func CropBounds(g *Grid, cfg Config) (image.Rectangle, error) {
	threshold := float64(cfg.ThresholdLight)
	minRow, maxRow, minCol, maxCol, ok := g.brightBounds(threshold)
	if !ok {
		return image.Rectangle{}, &EmptyRegionError{Stage: StageCrop, Threshold: threshold}
	}

	r0 := clamp(minRow-cfg.Offset, 0, g.Rows())
	r1 := clamp(max(maxRow+cfg.Offset, maxRow+1), 0, g.Rows())
	c0 := clamp(minCol-cfg.Offset, 0, g.Cols())
	c1 := clamp(max(maxCol+cfg.Offset, maxCol+1), 0, g.Cols())

	return image.Rect(c0, r0, c1, r1), nil
}

// Crop returns the sub-grid selected by CropBounds. Margins that would run
// past the grid are truncated at the edge, never padded.
func Crop(g *Grid, cfg Config) (*Grid, error) {
	r, err := CropBounds(g, cfg)
	if err != nil {
		return nil, err
	}
	view := g.m.Slice(r.Min.Y, r.Max.Y, r.Min.X, r.Max.X)
	return newGridDense(mat.DenseCopyOf(view)), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
