package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	dimaging "github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edgefinder/internal/batch"
	"github.com/ironsheep/edgefinder/internal/config"
	"github.com/ironsheep/edgefinder/internal/edgefinder"
	"github.com/ironsheep/edgefinder/internal/imaging"
	"github.com/ironsheep/edgefinder/internal/logger"
	"github.com/ironsheep/edgefinder/internal/ocr"
	"github.com/ironsheep/edgefinder/internal/server"
	"github.com/ironsheep/edgefinder/internal/storage"
	"github.com/ironsheep/edgefinder/internal/transport"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `edgefinder - contact angle measurement for sessile droplets

Usage:
  edgefinder analyze [flags] <image>         measure one frame
  edgefinder batch [flags] <path>...         measure frames or directories, CSV output
  edgefinder overlay [flags] -o out.png <image>
                                             draw the analysis over the frame
  edgefinder serve                           start the HTTP API
  edgefinder mcp                             start the MCP server on stdin/stdout
  edgefinder version                         print version information

Images may be local files or http(s) URLs. Pipeline flags (-offset, -pixels,
-threshold-light, -threshold-dark, -bl-fit, -bl-ignore, -bl-offset,
-tan-ignore, -tan-fit, -blur) default to the EDGEFINDER_* environment
variables. Logs go to stderr; set EDGEFINDER_LOG_LEVEL and
EDGEFINDER_LOG_FORMAT to adjust them.
`

// getenv is replaced in tests.
var getenv = os.Getenv

type commandFunc func(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int

var commands = map[string]commandFunc{
	"analyze": runAnalyze,
	"batch":   runBatch,
	"overlay": runOverlay,
	"serve":   runServe,
	"mcp":     runMCP,
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "edgefinder %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		if v := ocr.Version(); v != "" {
			fmt.Fprintf(stdout, "  Tesseract:  %s\n", v)
		}
		return exitOK
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	if err := logger.Configure(getenv("EDGEFINDER_LOG_LEVEL"), getenv("EDGEFINDER_LOG_FORMAT")); err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return exitUsage
	}
	cfg, err := config.Load(getenv)
	if err != nil {
		fmt.Fprintf(stderr, "configuration:\n%v\n", err)
		return exitUsage
	}

	return cmd(ctx, cfg, args[1:], stdin, stdout, stderr)
}

// pipelineFlags binds the pipeline settings to fs, defaulting to cfg.
func pipelineFlags(fs *flag.FlagSet, cfg *config.Config) {
	p := &cfg.Pipeline
	fs.IntVar(&p.Offset, "offset", p.Offset, "crop margin in source pixels")
	fs.IntVar(&p.Pixels, "pixels", p.Pixels, "subpixel multiplier")
	fs.IntVar(&p.ThresholdLight, "threshold-light", p.ThresholdLight, "gray level marking the illuminated region")
	fs.IntVar(&p.ThresholdDark, "threshold-dark", p.ThresholdDark, "gray level separating droplet and substrate from background")
	fs.IntVar(&p.BaselineFit, "bl-fit", p.BaselineFit, "baseline samples per side")
	fs.IntVar(&p.BaselineIgnore, "bl-ignore", p.BaselineIgnore, "columns skipped inside each end of the illuminated span")
	fs.IntVar(&p.BaselineOffset, "bl-offset", p.BaselineOffset, "rows above the baseline where the edge trace starts")
	fs.IntVar(&p.TangentIgnore, "tan-ignore", p.TangentIgnore, "edge points skipped before the tangent window")
	fs.IntVar(&p.TangentFit, "tan-fit", p.TangentFit, "edge points in the tangent window")
	fs.Float64Var(&cfg.BlurRadius, "blur", cfg.BlurRadius, "Gaussian denoise radius in pixels (0 disables)")
}

// parseFlags parses args and checks the positional argument count. It
// returns false after reporting a usage error.
func parseFlags(fs *flag.FlagSet, args []string, minArgs, maxArgs int, stderr io.Writer) bool {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return false
	}
	n := fs.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		fmt.Fprintf(stderr, "%s: wrong number of arguments\n", fs.Name())
		fs.Usage()
		return false
	}
	return true
}

func newFetcher(cfg *config.Config) (storage.ImageFetcher, error) {
	router := &storage.Router{HTTP: storage.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxBodyBytes)}
	if cfg.AzureAccount != "" {
		az, err := storage.NewAzureFetcher(cfg.AzureAccount, cfg.AzureKey, cfg.MaxBodyBytes)
		if err != nil {
			return nil, err
		}
		router.Azure = az
	}
	return router, nil
}

func loadImage(ctx context.Context, cfg *config.Config, path string) (image.Image, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return imaging.NewImageCache().Load(path)
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	return fetcher.FetchImage(ctx, path)
}

func analyzeImage(ctx context.Context, cfg *config.Config, path string, mirror bool) (*edgefinder.Analysis, error) {
	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	img, err := loadImage(ctx, cfg, path)
	if err != nil {
		return nil, err
	}
	if mirror {
		img = imaging.Mirror(img)
	}
	g, err := imaging.ToGrid(imaging.Preprocess(img, cfg.BlurRadius))
	if err != nil {
		return nil, err
	}
	return edgefinder.Analyze(g, cfg.Pipeline)
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	detail := fs.Bool("detail", false, "include edges and tangents in JSON output")
	mirror := fs.Bool("mirror", false, "flip the frame horizontally first")
	pipelineFlags(fs, cfg)
	if !parseFlags(fs, args, 1, 1, stderr) {
		return exitUsage
	}

	start := time.Now()
	an, err := analyzeImage(ctx, cfg, fs.Arg(0), *mirror)
	if err != nil {
		fmt.Fprintf(stderr, "analyze %s: %v\n", fs.Arg(0), err)
		return exitFailure
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(transport.NewAnalyzeResponse(an, *detail, time.Since(start))); err != nil {
			fmt.Fprintf(stderr, "write result: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	a := an.Angles()
	fmt.Fprintf(stdout, "left:        %.4f deg\n", a.Left)
	fmt.Fprintf(stdout, "right:       %.4f deg\n", a.Right)
	fmt.Fprintf(stdout, "base width:  %.2f px\n", an.Geometry.BaseWidthSource)
	fmt.Fprintf(stdout, "apex height: %.2f px\n", an.Geometry.ApexHeightSource)
	return exitOK
}

func runBatch(ctx context.Context, cfg *config.Config, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print a JSON report instead of CSV")
	workers := fs.Int("workers", cfg.Workers, "frames analyzed at once")
	labelRegion := fs.String("label-region", "", "x1,y1,x2,y2 region of a burned-in frame label to OCR")
	lang := fs.String("lang", ocr.DefaultLanguage, "OCR language for -label-region")
	pipelineFlags(fs, cfg)
	if !parseFlags(fs, args, 1, -1, stderr) {
		return exitUsage
	}

	paths, err := batch.ExpandPaths(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return exitFailure
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return exitFailure
	}

	r := &batch.Runner{
		Workers:    *workers,
		Config:     cfg.Pipeline,
		BlurRadius: cfg.BlurRadius,
		Fetcher:    fetcher,
	}
	if *labelRegion != "" {
		region, err := ocr.ParseRegion(*labelRegion)
		if err != nil {
			fmt.Fprintf(stderr, "batch: %v\n", err)
			return exitUsage
		}
		if !ocr.Available() {
			logger.Warn("OCR is not available in this build; frames are labelled by index")
		}
		r.Labeler = &ocr.Reader{Region: region, Language: *lang}
	}

	results := r.Run(ctx, paths)

	write := batch.WriteCSV
	if *asJSON {
		write = batch.WriteJSON
	}
	if err := write(stdout, results); err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return exitFailure
	}
	if s := batch.Summarize(results); s.Failed > 0 {
		return exitFailure
	}
	return exitOK
}

func runOverlay(ctx context.Context, cfg *config.Config, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("overlay", flag.ContinueOnError)
	out := fs.String("o", "", "output file; the format follows the extension (png, jpg, tif, bmp, gif)")
	mirror := fs.Bool("mirror", false, "flip the frame horizontally first")
	inset := fs.String("inset", "", "write a zoomed crop around the left or right contact point")
	insetHalf := fs.Int("inset-half", 25, "half size of the inset in subpixel units")
	insetScale := fs.Float64("inset-scale", 4, "inset zoom factor")
	pipelineFlags(fs, cfg)
	if !parseFlags(fs, args, 1, 1, stderr) {
		return exitUsage
	}
	if *out == "" {
		fmt.Fprintln(stderr, "overlay: -o is required")
		return exitUsage
	}
	if *inset != "" && *inset != "left" && *inset != "right" {
		fmt.Fprintf(stderr, "overlay: -inset must be left or right, got %q\n", *inset)
		return exitUsage
	}

	an, err := analyzeImage(ctx, cfg, fs.Arg(0), *mirror)
	if err != nil {
		fmt.Fprintf(stderr, "analyze %s: %v\n", fs.Arg(0), err)
		return exitFailure
	}
	canvas, err := imaging.RenderOverlay(an, imaging.DefaultOverlayStyle())
	if err != nil {
		fmt.Fprintf(stderr, "overlay: %v\n", err)
		return exitFailure
	}

	var img image.Image = canvas
	if *inset != "" {
		at := an.Tangents.LeftIntersection
		if *inset == "right" {
			at = an.Tangents.RightIntersection
		}
		center := image.Pt(int(math.Round(at.X)), int(math.Round(at.Y)))
		if img, err = imaging.Inset(canvas, center, *insetHalf, *insetScale); err != nil {
			fmt.Fprintf(stderr, "overlay: %v\n", err)
			return exitFailure
		}
	}

	if err := dimaging.Save(img, *out); err != nil {
		fmt.Fprintf(stderr, "overlay: %v\n", err)
		return exitFailure
	}
	a := an.Angles()
	fmt.Fprintf(stdout, "%s: left %.4f deg, right %.4f deg\n", *out, a.Left, a.Right)
	return exitOK
}

func runServe(ctx context.Context, cfg *config.Config, args []string, _ io.Reader, _, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	pipelineFlags(fs, cfg)
	if !parseFlags(fs, args, 0, 0, stderr) {
		return exitUsage
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitUsage
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitFailure
	}

	if logger.Logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      transport.NewHandler(cfg, fetcher, Version),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Failed to start server")
			return exitFailure
		}
		return exitOK
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return exitFailure
	}
	logger.Info("Server exited")
	return exitOK
}

func runMCP(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	pipelineFlags(fs, cfg)
	if !parseFlags(fs, args, 0, 0, stderr) {
		return exitUsage
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "mcp: %v\n", err)
		return exitFailure
	}

	logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
	}).Debug("Edgefinder MCP server")

	srv := server.New(server.Options{
		Config:     cfg.Pipeline,
		BlurRadius: cfg.BlurRadius,
		Workers:    cfg.Workers,
		Fetcher:    fetcher,
		Version:    Version,
	})
	if err := srv.Run(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("Server error")
		return exitFailure
	}
	return exitOK
}
