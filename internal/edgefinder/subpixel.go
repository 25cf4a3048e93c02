package edgefinder

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Subpixel upsamples g by cfg.Pixels per axis with bilinear interpolation.
//
// The output has Rows()*Pixels rows and Cols()*Pixels columns spread evenly
// over the same span as the input, so the first and last output samples
// coincide with the input corners. With Pixels == 1 the input values are
// returned unchanged.
func Subpixel(g *Grid, cfg Config) (*Grid, error) {
	if cfg.Pixels < 1 {
		return nil, &ConfigError{Field: "pixels", Value: cfg.Pixels, Reason: "must be >= 1"}
	}
	rows, cols := g.Rows(), g.Cols()
	if rows < 2 || cols < 2 {
		// Bilinear interpolation needs a neighbour on both axes.
		return nil, &OutOfBoundsError{Stage: StageSubpixel, Row: 1, Col: 1, Rows: rows, Cols: cols}
	}

	outRows, outCols := rows*cfg.Pixels, cols*cfg.Pixels
	rowPos := samplePositions(outRows, rows)
	colPos := samplePositions(outCols, cols)

	// Precompute the column interval and weight once per output column.
	colIdx := make([]int, outCols)
	colFrac := make([]float64, outCols)
	for j, x := range colPos {
		colIdx[j], colFrac[j] = cell(x, cols)
	}

	out := mat.NewDense(outRows, outCols, nil)
	for i, y := range rowPos {
		r0, t := cell(y, rows)
		top := g.m.RawRowView(r0)
		bottom := g.m.RawRowView(r0 + 1)
		dst := out.RawRowView(i)
		for j := range dst {
			c0, s := colIdx[j], colFrac[j]
			upper := (1-s)*top[c0] + s*top[c0+1]
			lower := (1-s)*bottom[c0] + s*bottom[c0+1]
			dst[j] = (1-t)*upper + t*lower
		}
	}
	return newGridDense(out), nil
}

// samplePositions spreads n positions evenly over [0, size-1].
func samplePositions(n, size int) []float64 {
	if n == 1 {
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, float64(size-1))
}

// cell returns the lower index of the interval holding pos and the
// fractional offset inside it. The last interval is closed on the right.
func cell(pos float64, size int) (int, float64) {
	i := int(math.Floor(pos))
	if i > size-2 {
		i = size - 2
	}
	if i < 0 {
		i = 0
	}
	return i, pos - float64(i)
}
