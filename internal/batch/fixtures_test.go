package batch

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
)

// dropletImage draws a dark 45 degree triangle standing on a dark substrate
// at row 150 of a bright 280x200 frame, with its foot between columns 100
// and 180.
func dropletImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 280, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 280; x++ {
			v := uint8(255)
			rise := 150 - y
			if y >= 150 || (x >= 100+rise && x <= 180-rise) {
				v = 20
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func exactConfig() edgefinder.Config {
	cfg := edgefinder.DefaultConfig()
	cfg.Pixels = 1
	return cfg
}
