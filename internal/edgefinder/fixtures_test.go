package edgefinder

import "testing"

const (
	bright = 255.0
	dark   = 20.0
)

// dropletGrid builds a backlit frame with a dark substrate from row surface
// down and a dark triangular droplet standing on it. The left flank climbs
// one column per row from col left; the right flank climbs rightRun columns
// per row from col right.
func dropletGrid(t *testing.T, rows, cols, surface, left, right, rightRun int) *Grid {
	t.Helper()
	data := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := bright
			rise := surface - r
			switch {
			case r >= surface:
				v = dark
			case c >= left+rise && c <= right-rightRun*rise:
				v = dark
			}
			data[r*cols+c] = v
		}
	}
	g, err := NewGrid(rows, cols, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

// symmetricDroplet has 45 degree flanks meeting at col 140, row 110.
func symmetricDroplet(t *testing.T) *Grid {
	return dropletGrid(t, 200, 280, 150, 100, 180, 1)
}

// asymmetricDroplet has a 45 degree left flank and a right flank of slope
// 1/2, meeting at col 130, row 120.
func asymmetricDroplet(t *testing.T) *Grid {
	return dropletGrid(t, 200, 280, 150, 100, 190, 2)
}

func mirror(t *testing.T, g *Grid) *Grid {
	t.Helper()
	rows, cols := g.Rows(), g.Cols()
	data := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := cols - 1; c >= 0; c-- {
			data = append(data, g.At(r, c))
		}
	}
	m, err := NewGrid(rows, cols, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return m
}

func uniformGrid(t *testing.T, rows, cols int, v float64) *Grid {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	g, err := NewGrid(rows, cols, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// tiltedDroplet builds a 220x300 frame whose substrate edge drops slope rows
// per column, crossing row 150 at col 150, under a droplet whose flanks
// spread two columns per row from its top at col 150, row 110. With a
// positive slope the substrate rises toward the left flank and falls away
// from the right one.
func tiltedDroplet(t *testing.T, slope float64) *Grid {
	t.Helper()
	const rows, cols, center, top = 220, 300, 150, 110
	data := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := c - center
			if d < 0 {
				d = -d
			}
			v := bright
			surface := 150 + slope*float64(c-center)
			if float64(r) >= surface || (r >= top && 2*(r-top) >= d) {
				v = dark
			}
			data[r*cols+c] = v
		}
	}
	g, err := NewGrid(rows, cols, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}
