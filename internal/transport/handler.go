// Package transport exposes the contact angle pipeline over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edgefinder/internal/config"
	"github.com/ironsheep/edgefinder/internal/edgefinder"
	"github.com/ironsheep/edgefinder/internal/imaging"
	"github.com/ironsheep/edgefinder/internal/logger"
	"github.com/ironsheep/edgefinder/internal/storage"
)

// AnalyzeRequest is the JSON form of an analyze or overlay request. The
// multipart form carries the same fields, with the frame in "image" and
// config as a JSON string.
type AnalyzeRequest struct {
	URL        string               `json:"url" binding:"required,url"`
	Config     edgefinder.Overrides `json:"config"`
	Detail     bool                 `json:"detail,omitempty"`
	Mirror     bool                 `json:"mirror,omitempty"`
	BlurRadius *float64             `json:"blur_radius,omitempty"`
}

type Intersections struct {
	Left  edgefinder.Point `json:"left"`
	Right edgefinder.Point `json:"right"`
}

type AnalyzeResponse struct {
	LeftDeg          float64                    `json:"left_deg"`
	RightDeg         float64                    `json:"right_deg"`
	Intersections    Intersections              `json:"intersections"`
	Baseline         edgefinder.Line            `json:"baseline"`
	Geometry         edgefinder.Geometry        `json:"geometry"`
	Config           edgefinder.Config          `json:"config"`
	Edges            *edgefinder.DropEdgeResult `json:"edges,omitempty"`
	Tangents         *edgefinder.TangentResult  `json:"tangents,omitempty"`
	ProcessingTimeMS int64                      `json:"processing_time_ms"`
}

// NewAnalyzeResponse summarises an analysis. Edges and tangents are
// included only with detail.
func NewAnalyzeResponse(an *edgefinder.Analysis, detail bool, elapsed time.Duration) AnalyzeResponse {
	resp := AnalyzeResponse{
		LeftDeg:  an.Angles().Left,
		RightDeg: an.Angles().Right,
		Intersections: Intersections{
			Left:  an.Tangents.LeftIntersection,
			Right: an.Tangents.RightIntersection,
		},
		Baseline:         an.Baseline.Line,
		Geometry:         an.Geometry,
		Config:           an.Config,
		ProcessingTimeMS: elapsed.Milliseconds(),
	}
	if detail {
		resp.Edges, resp.Tangents = an.Edges, an.Tangents
	}
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type handler struct {
	cfg     *config.Config
	fetcher storage.ImageFetcher
	version string
}

// NewHandler builds the HTTP API. fetcher may be nil, in which case only
// uploaded frames are accepted.
func NewHandler(cfg *config.Config, fetcher storage.ImageFetcher, version string) http.Handler {
	h := &handler{cfg: cfg, fetcher: fetcher, version: version}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxBodyBytes),
		errorHandler(),
	)

	r.GET("/health", h.healthCheck)
	v1 := r.Group("/v1")
	v1.POST("/analyze", h.analyze)
	v1.POST("/overlay", h.overlay)

	return r
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) analyze(c *gin.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	req, an, err := h.run(ctx, c)
	if err != nil {
		appErr := classify("analysis failed", err)
		respondError(c, appErr.StatusCode, appErr.Message, err)
		return
	}

	resp := NewAnalyzeResponse(an, req.Detail, time.Since(start))

	logger.WithFields(logrus.Fields{
		"url":                req.URL,
		"left_deg":           resp.LeftDeg,
		"right_deg":          resp.RightDeg,
		"processing_time_ms": resp.ProcessingTimeMS,
	}).Info("contact angle measured")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) overlay(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	_, an, err := h.run(ctx, c)
	if err != nil {
		appErr := classify("analysis failed", err)
		respondError(c, appErr.StatusCode, appErr.Message, err)
		return
	}

	canvas, err := imaging.RenderOverlay(an, imaging.DefaultOverlayStyle())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "overlay failed", err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		respondError(c, http.StatusInternalServerError, "overlay failed", err)
		return
	}

	c.Header("X-Contact-Angle-Left", strconv.FormatFloat(an.Angles().Left, 'f', 4, 64))
	c.Header("X-Contact-Angle-Right", strconv.FormatFloat(an.Angles().Right, 'f', 4, 64))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// run reads the request, obtains the frame and analyzes it.
func (h *handler) run(ctx context.Context, c *gin.Context) (*AnalyzeRequest, *edgefinder.Analysis, error) {
	req, img, err := h.readRequest(ctx, c)
	if err != nil {
		return req, nil, err
	}

	cfg := h.cfg.Pipeline.Apply(req.Config)
	if err := cfg.Validate(); err != nil {
		return req, nil, err
	}

	if req.Mirror {
		img = imaging.Mirror(img)
	}
	blur := h.cfg.BlurRadius
	if req.BlurRadius != nil {
		blur = *req.BlurRadius
	}
	g, err := imaging.ToGrid(imaging.Preprocess(img, blur))
	if err != nil {
		return req, nil, err
	}

	an, err := edgefinder.Analyze(g, cfg)
	return req, an, err
}

func (h *handler) readRequest(ctx context.Context, c *gin.Context) (*AnalyzeRequest, image.Image, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return readMultipart(c)
	}

	req := &AnalyzeRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return req, nil, err
		}
		return req, nil, NewValidationError("invalid request format", err)
	}
	if h.fetcher == nil {
		return req, nil, NewValidationError("remote images are not enabled", nil)
	}

	logger.WithField("url", req.URL).Debug("fetching image")
	img, err := h.fetcher.FetchImage(ctx, req.URL)
	if err != nil {
		return req, nil, err
	}
	return req, img, nil
}

func readMultipart(c *gin.Context) (*AnalyzeRequest, image.Image, error) {
	req := &AnalyzeRequest{}

	fh, err := c.FormFile("image")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return req, nil, err
		}
		return req, nil, NewValidationError("multipart field \"image\" is required", err)
	}

	if raw := c.PostForm("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Config); err != nil {
			return req, nil, NewValidationError("invalid config", err)
		}
	}
	for name, dst := range map[string]*bool{"detail": &req.Detail, "mirror": &req.Mirror} {
		if raw := c.PostForm(name); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return req, nil, NewValidationError(fmt.Sprintf("invalid %s", name), err)
			}
			*dst = v
		}
	}
	if raw := c.PostForm("blur_radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, nil, NewValidationError("invalid blur_radius", err)
		}
		req.BlurRadius = &v
	}

	f, err := fh.Open()
	if err != nil {
		return req, nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return req, nil, NewValidationError("unsupported image", err)
	}
	return req, img, nil
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}).Info("request handled")
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			appErr := classify("request processing failed", err)
			respondError(c, appErr.StatusCode, appErr.Message, err)
		}
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Warn("request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
