// Package batch runs the contact angle pipeline over many frames, such as a
// time series captured while a droplet spreads or evaporates.
package batch

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
	"github.com/ironsheep/edgefinder/internal/imaging"
	"github.com/ironsheep/edgefinder/internal/logger"
)

// Labeler reads a label, typically a timestamp burned into the frame.
type Labeler interface {
	Label(img image.Image) (string, error)
}

// LabelerFunc adapts a function to Labeler.
type LabelerFunc func(img image.Image) (string, error)

func (f LabelerFunc) Label(img image.Image) (string, error) { return f(img) }

// Fetcher loads images addressed by URL.
type Fetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// Result is the outcome for one input. Exactly one of the angle fields or
// Err is meaningful.
type Result struct {
	Index int
	Path  string
	Label string

	Left      float64
	Right     float64
	BaseWidth float64 // in source pixels

	Duration time.Duration
	Err      error
}

// Runner analyzes images concurrently. Each image runs its own pipeline;
// nothing is shared between images except the read-only configuration.
type Runner struct {
	// Workers is the number of images analyzed at once; <= 0 means one per
	// CPU.
	Workers int

	Config     edgefinder.Config
	BlurRadius float64

	// Labeler is optional. Without it, or when it fails, the label is the
	// input index.
	Labeler Labeler

	// Fetcher is optional and handles http:// and https:// inputs.
	Fetcher Fetcher

	// Cache is optional; a private cache is used when nil. Each image is
	// evicted once analyzed.
	Cache *imaging.ImageCache
}

// Run analyzes paths and returns one Result per path, in input order.
//
// Cancelling ctx stops scheduling: images already running finish, and the
// rest report ctx.Err().
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	if err := r.Config.Validate(); err != nil {
		results := make([]Result, len(paths))
		for i, p := range paths {
			results[i] = Result{Index: i, Path: p, Label: strconv.Itoa(i), Err: err}
		}
		return results
	}

	cache := r.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}

	pool := NewWorkerPool(r.Workers)
	pool.Start()
	defer pool.Close()

	logger.WithFields(logrus.Fields{
		"images":  len(paths),
		"workers": pool.Workers(),
	}).Info("batch started")

	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i] = Result{Index: i, Path: p, Label: strconv.Itoa(i)}
		err := pool.Submit(ctx, func() {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i] = r.analyze(ctx, cache, i, p)
		})
		if err != nil {
			for j := i; j < len(paths); j++ {
				results[j] = Result{Index: j, Path: paths[j], Label: strconv.Itoa(j), Err: err}
			}
			break
		}
	}
	pool.Wait()

	s := Summarize(results)
	logger.WithFields(logrus.Fields{
		"images": s.Count,
		"failed": s.Failed,
	}).Info("batch finished")

	return results
}

func (r *Runner) analyze(ctx context.Context, cache *imaging.ImageCache, index int, path string) Result {
	start := time.Now()
	res := Result{Index: index, Path: path, Label: strconv.Itoa(index)}
	log := logger.WithField("path", path)

	img, err := r.load(ctx, cache, path)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		log.WithError(err).Warn("image failed")
		return res
	}
	log.Debug("image loaded")

	if r.Labeler != nil {
		label, err := r.Labeler.Label(img)
		switch {
		case err != nil:
			log.WithError(err).Warn("frame label unreadable")
		case label != "":
			res.Label = label
		}
	}

	g, err := imaging.ToGrid(imaging.Preprocess(img, r.BlurRadius))
	if err == nil {
		log.Debug("grid ready")
		var a *edgefinder.Analysis
		a, err = edgefinder.Analyze(g, r.Config)
		if err == nil {
			res.Left, res.Right = a.Angles().Left, a.Angles().Right
			res.BaseWidth = a.Geometry.BaseWidthSource
		}
	}
	res.Err = err
	res.Duration = time.Since(start)

	if err != nil {
		log.WithError(err).Warn("image failed")
		return res
	}
	log.WithFields(logrus.Fields{
		"left_deg":    res.Left,
		"right_deg":   res.Right,
		"duration_ms": res.Duration.Milliseconds(),
	}).Info("image analyzed")
	return res
}

func (r *Runner) load(ctx context.Context, cache *imaging.ImageCache, path string) (image.Image, error) {
	if isRemote(path) {
		if r.Fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", path)
		}
		return r.Fetcher.FetchImage(ctx, path)
	}
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	cache.Evict(path)
	return img, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
