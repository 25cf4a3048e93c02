package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
	"github.com/ironsheep/edgefinder/internal/imaging"
)

type fakeFetcher struct {
	images map[string]image.Image
}

func (f *fakeFetcher) FetchImage(_ context.Context, url string) (image.Image, error) {
	img, ok := f.images[url]
	if !ok {
		return nil, fmt.Errorf("client error: status code 404")
	}
	return img, nil
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", dropletImage())
	dark := writePNG(t, dir, "dark.png", image.NewGray(image.Rect(0, 0, 50, 50)))
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	paths := []string{good, dark, broken, filepath.Join(dir, "missing.png"), good}
	cache := imaging.NewImageCache()
	r := &Runner{Workers: 3, Config: exactConfig(), Cache: cache}

	results := r.Run(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("results: got %d, want %d", len(results), len(paths))
	}

	for i, res := range results {
		if res.Index != i || res.Path != paths[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
	}

	for _, i := range []int{0, 4} {
		res := results[i]
		if res.Err != nil {
			t.Fatalf("image %d failed: %v", i, res.Err)
		}
		if math.Abs(res.Left-45) > 1e-9 || math.Abs(res.Right-45) > 1e-9 {
			t.Errorf("image %d angles: got %v/%v, want 45/45", i, res.Left, res.Right)
		}
		if res.BaseWidth != 80 {
			t.Errorf("image %d base width: got %v, want 80", i, res.BaseWidth)
		}
		if res.Label != fmt.Sprint(i) {
			t.Errorf("image %d label: got %q", i, res.Label)
		}
	}

	if !errors.Is(results[1].Err, edgefinder.ErrEmptyRegion) {
		t.Errorf("dark frame: got %v, want ErrEmptyRegion", results[1].Err)
	}
	for _, i := range []int{2, 3} {
		if results[i].Err == nil {
			t.Errorf("image %d should fail", i)
		}
	}

	if cache.Len() != 0 {
		t.Errorf("cache holds %d images after the run, want 0", cache.Len())
	}
}

func TestRunner_Labeler(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", dropletImage())
	b := writePNG(t, dir, "b.png", dropletImage())

	r := &Runner{
		Workers: 2,
		Config:  exactConfig(),
		Labeler: LabelerFunc(func(img image.Image) (string, error) {
			if img.Bounds().Dx() != 280 {
				return "", errors.New("unexpected frame")
			}
			return "00:01.5", nil
		}),
	}
	for _, res := range r.Run(context.Background(), []string{a, b}) {
		if res.Label != "00:01.5" {
			t.Errorf("label: got %q, want 00:01.5", res.Label)
		}
	}

	r.Labeler = LabelerFunc(func(image.Image) (string, error) { return "", errors.New("no text") })
	results := r.Run(context.Background(), []string{a, b})
	if results[1].Label != "1" || results[1].Err != nil {
		t.Errorf("failed labelling should fall back to the index: %+v", results[1])
	}
}

func TestRunner_Remote(t *testing.T) {
	r := &Runner{
		Workers: 1,
		Config:  exactConfig(),
		Fetcher: &fakeFetcher{images: map[string]image.Image{
			"https://example.com/frame.png": dropletImage(),
		}},
	}
	results := r.Run(context.Background(), []string{"https://example.com/frame.png", "https://example.com/gone.png"})
	if results[0].Err != nil || math.Abs(results[0].Left-45) > 1e-9 {
		t.Errorf("remote frame: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("missing remote frame should fail")
	}

	r.Fetcher = nil
	if res := r.Run(context.Background(), []string{"http://example.com/x.png"}); res[0].Err == nil {
		t.Error("remote input without a fetcher should fail")
	}
}

func TestRunner_Cancelled(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", dropletImage())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Workers: 2, Config: exactConfig()}
	results := r.Run(ctx, []string{good, good, good})
	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("result %d: got %v, want context.Canceled", i, res.Err)
		}
		if res.Index != i {
			t.Errorf("result %d has index %d", i, res.Index)
		}
	}
}

func TestRunner_InvalidConfig(t *testing.T) {
	cfg := exactConfig()
	cfg.TangentFit = 0
	r := &Runner{Config: cfg}
	for _, res := range r.Run(context.Background(), []string{"a.png", "b.png"}) {
		if !errors.Is(res.Err, edgefinder.ErrInvalidConfig) {
			t.Errorf("got %v, want ErrInvalidConfig", res.Err)
		}
	}
}
