package edgefinder

import (
	"errors"
	"testing"
)

// rampGrid holds v = 10*row + col, which bilinear interpolation
// reproduces exactly at any position.
func rampGrid(t *testing.T, rows, cols int) *Grid {
	t.Helper()
	data := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data[r*cols+c] = float64(10*r + c)
		}
	}
	g, err := NewGrid(rows, cols, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func TestSubpixel_Dimensions(t *testing.T) {
	g := rampGrid(t, 7, 11)
	for _, p := range []int{1, 2, 3, 5} {
		cfg := DefaultConfig()
		cfg.Pixels = p
		out, err := Subpixel(g, cfg)
		if err != nil {
			t.Fatalf("Subpixel(%d) failed: %v", p, err)
		}
		if out.Rows() != 7*p || out.Cols() != 11*p {
			t.Errorf("pixels=%d: got %dx%d, want %dx%d", p, out.Rows(), out.Cols(), 7*p, 11*p)
		}
	}
}

func TestSubpixel_IdentityAtOne(t *testing.T) {
	g := symmetricDroplet(t)
	cfg := DefaultConfig()
	cfg.Pixels = 1

	out, err := Subpixel(g, cfg)
	if err != nil {
		t.Fatalf("Subpixel failed: %v", err)
	}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if out.At(r, c) != g.At(r, c) {
				t.Fatalf("sample (%d,%d): got %v, want %v", r, c, out.At(r, c), g.At(r, c))
			}
		}
	}
}

func TestSubpixel_KeepsCorners(t *testing.T) {
	g := rampGrid(t, 5, 6)
	cfg := DefaultConfig()
	cfg.Pixels = 3

	out, err := Subpixel(g, cfg)
	if err != nil {
		t.Fatalf("Subpixel failed: %v", err)
	}
	corners := []struct{ r, c, or, oc int }{
		{0, 0, 0, 0},
		{0, out.Cols() - 1, 0, 5},
		{out.Rows() - 1, 0, 4, 0},
		{out.Rows() - 1, out.Cols() - 1, 4, 5},
	}
	for _, k := range corners {
		if got, want := out.At(k.r, k.c), g.At(k.or, k.oc); got != want {
			t.Errorf("corner (%d,%d): got %v, want %v", k.r, k.c, got, want)
		}
	}
}

func TestSubpixel_Bilinear(t *testing.T) {
	g := rampGrid(t, 4, 9)
	cfg := DefaultConfig()
	cfg.Pixels = 2

	out, err := Subpixel(g, cfg)
	if err != nil {
		t.Fatalf("Subpixel failed: %v", err)
	}
	rowStep := 3.0 / 7.0
	colStep := 8.0 / 17.0
	for i := 0; i < out.Rows(); i++ {
		for j := 0; j < out.Cols(); j++ {
			want := 10*float64(i)*rowStep + float64(j)*colStep
			if !approxEqual(out.At(i, j), want, 1e-9) {
				t.Fatalf("sample (%d,%d): got %v, want %v", i, j, out.At(i, j), want)
			}
		}
	}
}

func TestSubpixel_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pixels = 0
	if _, err := Subpixel(rampGrid(t, 3, 3), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("pixels=0: got %v, want ErrInvalidConfig", err)
	}

	narrow := rampGrid(t, 1, 5)
	if _, err := Subpixel(narrow, DefaultConfig()); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("single row: got %v, want ErrOutOfBounds", err)
	}
}
