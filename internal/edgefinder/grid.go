package edgefinder

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid is an immutable 2-D field of light-intensity samples indexed
// (row, col). Every stage returns a new Grid.
type Grid struct {
	m *mat.Dense
}

// NewGrid builds a rows x cols grid from row-major data. The slice is
// copied. Both dimensions must be positive and len(data) must equal
// rows*cols.
func NewGrid(rows, cols int, data []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("grid data length %d does not match %dx%d", len(data), rows, cols)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Grid{m: mat.NewDense(rows, cols, buf)}, nil
}

// GridFromRows builds a grid from a slice of equal-length rows.
func GridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d samples, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return NewGrid(len(rows), cols, data)
}

func newGridDense(m *mat.Dense) *Grid { return &Grid{m: m} }

// Rows returns the number of rows (image height).
func (g *Grid) Rows() int {
	r, _ := g.m.Dims()
	return r
}

// Cols returns the number of columns (image width).
func (g *Grid) Cols() int {
	_, c := g.m.Dims()
	return c
}

// At returns the sample at (row, col). It panics outside the grid; use
// Sample for a checked lookup.
func (g *Grid) At(row, col int) float64 {
	return g.m.At(row, col)
}

// Sample returns the sample at (row, col) or an *OutOfBoundsError tagged
// with stage.
func (g *Grid) Sample(stage Stage, row, col int) (float64, error) {
	rows, cols := g.m.Dims()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return 0, &OutOfBoundsError{Stage: stage, Row: row, Col: col, Rows: rows, Cols: cols}
	}
	return g.m.At(row, col), nil
}

// Row returns a copy of one row.
func (g *Grid) Row(row int) []float64 {
	return mat.Row(nil, row, g.m)
}

// brightBounds returns the inclusive bounding box of samples strictly above
// threshold. ok is false when there are none.
func (g *Grid) brightBounds(threshold float64) (minRow, maxRow, minCol, maxCol int, ok bool) {
	rows, cols := g.m.Dims()
	minRow, minCol = rows, cols
	maxRow, maxCol = -1, -1
	for r := 0; r < rows; r++ {
		row := g.m.RawRowView(r)
		for c, v := range row {
			if v > threshold {
				if r < minRow {
					minRow = r
				}
				if r > maxRow {
					maxRow = r
				}
				if c < minCol {
					minCol = c
				}
				if c > maxCol {
					maxCol = c
				}
			}
		}
	}
	return minRow, maxRow, minCol, maxCol, maxRow >= 0
}

// darkEdgeHeights scans every column from the bottom row upward and records
// the first row whose sample exceeds threshold, or 0 when none does.
func (g *Grid) darkEdgeHeights(threshold float64) []float64 {
	rows, cols := g.m.Dims()
	heights := make([]float64, cols)
	for c := 0; c < cols; c++ {
		for r := rows - 1; r >= 0; r-- {
			if g.m.At(r, c) > threshold {
				heights[c] = float64(r)
				break
			}
		}
	}
	return heights
}

// columnAxis returns 0, 1, ..., n-1 as float64.
func columnAxis(n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, float64(n-1))
}
