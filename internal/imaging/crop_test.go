package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestInset(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 80))
	img.SetGray(50, 40, color.Gray{Y: 255})

	tests := []struct {
		name   string
		center image.Point
		half   int
		scale  float64
		w, h   int
	}{
		{"native", image.Pt(50, 40), 10, 1, 20, 20},
		{"zoomed", image.Pt(50, 40), 10, 4, 80, 80},
		{"clipped at corner", image.Pt(2, 3), 10, 1, 12, 13},
		{"non-positive scale keeps size", image.Pt(50, 40), 5, 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Inset(img, tt.center, tt.half, tt.scale)
			if err != nil {
				t.Fatalf("Inset failed: %v", err)
			}
			if out.Bounds().Dx() != tt.w || out.Bounds().Dy() != tt.h {
				t.Errorf("dimensions: got %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestInset_Content(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 80))
	img.SetGray(50, 40, color.Gray{Y: 255})

	out, err := Inset(img, image.Pt(50, 40), 10, 1)
	if err != nil {
		t.Fatalf("Inset failed: %v", err)
	}
	if got := out.NRGBAAt(10, 10); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("center pixel: got %v, want white", got)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("corner pixel: got %v, want black", got)
	}
}

func TestInset_Errors(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	if _, err := Inset(img, image.Pt(500, 500), 5, 1); err == nil {
		t.Error("inset outside the image should fail")
	}
	if _, err := Inset(img, image.Pt(5, 5), 0, 1); err == nil {
		t.Error("zero half-width should fail")
	}
}
