package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ironsheep/edgefinder/internal/batch"
	"github.com/ironsheep/edgefinder/internal/edgefinder"
	"github.com/ironsheep/edgefinder/internal/imaging"
	"github.com/ironsheep/edgefinder/internal/logger"
	"github.com/ironsheep/edgefinder/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "droplet_contact_angle").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := logger.WithField("tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool succeeded")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "droplet_contact_angle":
		return s.handleContactAngle(ctx, args)
	case "droplet_baseline":
		return s.handleBaseline(ctx, args)
	case "droplet_edges":
		return s.handleEdges(ctx, args)
	case "droplet_overlay":
		return s.handleOverlay(ctx, args)
	case "droplet_batch":
		return s.handleBatch(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared image handling ===

type imageArgs struct {
	Path       string               `json:"path"`
	Mirror     bool                 `json:"mirror"`
	BlurRadius *float64             `json:"blur_radius"`
	Config     edgefinder.Overrides `json:"config"`
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

func (s *Server) parseImageArgs(args json.RawMessage) (imageArgs, error) {
	var a imageArgs
	if err := decodeArgs(args, &a); err != nil {
		return a, err
	}
	if a.Path == "" {
		return a, errors.New("path is required")
	}
	return a, nil
}

// grid loads the frame named by a and converts it to a luma grid.
func (s *Server) grid(ctx context.Context, a imageArgs) (*edgefinder.Grid, edgefinder.Config, error) {
	cfg := s.config.Apply(a.Config)
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}

	img, err := s.loadImage(ctx, a.Path)
	if err != nil {
		return nil, cfg, err
	}
	if a.Mirror {
		img = imaging.Mirror(img)
	}
	blur := s.blur
	if a.BlurRadius != nil {
		blur = *a.BlurRadius
	}
	g, err := imaging.ToGrid(imaging.Preprocess(img, blur))
	return g, cfg, err
}

func (s *Server) loadImage(ctx context.Context, path string) (image.Image, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if s.fetcher == nil {
			return nil, fmt.Errorf("remote images are not enabled: %s", path)
		}
		return s.fetcher.FetchImage(ctx, path)
	}
	// Frames are not retained between calls.
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(path)
	return img, nil
}

func (s *Server) analyze(ctx context.Context, args json.RawMessage) (*edgefinder.Analysis, imageArgs, error) {
	a, err := s.parseImageArgs(args)
	if err != nil {
		return nil, a, err
	}
	g, cfg, err := s.grid(ctx, a)
	if err != nil {
		return nil, a, err
	}
	an, err := edgefinder.Analyze(g, cfg)
	return an, a, err
}

// baselineStage runs the pipeline up to and including the baseline fit.
func (s *Server) baselineStage(ctx context.Context, args json.RawMessage) (*edgefinder.Grid, *edgefinder.BaselineResult, edgefinder.Config, error) {
	a, err := s.parseImageArgs(args)
	if err != nil {
		return nil, nil, edgefinder.Config{}, err
	}
	g, cfg, err := s.grid(ctx, a)
	if err != nil {
		return nil, nil, cfg, err
	}
	cropped, err := edgefinder.Crop(g, cfg)
	if err != nil {
		return nil, nil, cfg, err
	}
	sub, err := edgefinder.Subpixel(cropped, cfg)
	if err != nil {
		return nil, nil, cfg, err
	}
	bl, err := edgefinder.Baseline(sub, cfg)
	return sub, bl, cfg, err
}

// === Contact Angle ===

type contactAngleResult struct {
	LeftDeg           float64             `json:"left_deg"`
	RightDeg          float64             `json:"right_deg"`
	LeftIntersection  edgefinder.Point    `json:"left_intersection"`
	RightIntersection edgefinder.Point    `json:"right_intersection"`
	Geometry          edgefinder.Geometry `json:"geometry"`
	CropBounds        image.Rectangle     `json:"crop_bounds"`
	Config            edgefinder.Config   `json:"config"`
}

func (s *Server) handleContactAngle(ctx context.Context, args json.RawMessage) (interface{}, error) {
	an, _, err := s.analyze(ctx, args)
	if err != nil {
		return nil, err
	}
	return &contactAngleResult{
		LeftDeg:           an.Angles().Left,
		RightDeg:          an.Angles().Right,
		LeftIntersection:  an.Tangents.LeftIntersection,
		RightIntersection: an.Tangents.RightIntersection,
		Geometry:          an.Geometry,
		CropBounds:        an.CropBounds,
		Config:            an.Config,
	}, nil
}

// === Baseline ===

type baselineResult struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	SpanLeft  int       `json:"span_left"`
	SpanRight int       `json:"span_right"`
	SampleX   []float64 `json:"sample_x"`
	SampleY   []float64 `json:"sample_y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
}

func (s *Server) handleBaseline(ctx context.Context, args json.RawMessage) (interface{}, error) {
	sub, bl, _, err := s.baselineStage(ctx, args)
	if err != nil {
		return nil, err
	}
	return &baselineResult{
		Slope:     bl.Line.Slope,
		Intercept: bl.Line.Intercept,
		SpanLeft:  bl.SpanLeft,
		SpanRight: bl.SpanRight,
		SampleX:   bl.SampleX,
		SampleY:   bl.SampleY,
		Width:     sub.Cols(),
		Height:    sub.Rows(),
	}, nil
}

// === Edges ===

func (s *Server) handleEdges(ctx context.Context, args json.RawMessage) (interface{}, error) {
	sub, bl, cfg, err := s.baselineStage(ctx, args)
	if err != nil {
		return nil, err
	}
	return edgefinder.DropEdge(sub, bl, cfg)
}

// === Overlay ===

type overlayArgs struct {
	Inset      string  `json:"inset"`
	InsetHalf  int     `json:"inset_half"`
	InsetScale float64 `json:"inset_scale"`
}

type overlayResult struct {
	*imaging.OverlayResult
	LeftDeg  float64 `json:"left_deg"`
	RightDeg float64 `json:"right_deg"`
}

func (s *Server) handleOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var o overlayArgs
	if err := decodeArgs(args, &o); err != nil {
		return nil, err
	}
	if o.InsetHalf == 0 {
		o.InsetHalf = 25
	}
	if o.InsetScale == 0 {
		o.InsetScale = 4.0
	}

	an, _, err := s.analyze(ctx, args)
	if err != nil {
		return nil, err
	}
	canvas, err := imaging.RenderOverlay(an, imaging.DefaultOverlayStyle())
	if err != nil {
		return nil, err
	}

	var out image.Image = canvas
	switch o.Inset {
	case "":
	case "left", "right":
		at := an.Tangents.LeftIntersection
		if o.Inset == "right" {
			at = an.Tangents.RightIntersection
		}
		center := image.Pt(int(math.Round(at.X)), int(math.Round(at.Y)))
		if out, err = imaging.Inset(canvas, center, o.InsetHalf, o.InsetScale); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid inset %q: want left or right", o.Inset)
	}

	enc, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, err
	}
	return &overlayResult{OverlayResult: enc, LeftDeg: an.Angles().Left, RightDeg: an.Angles().Right}, nil
}

// === Batch ===

type batchArgs struct {
	Paths       []string             `json:"paths"`
	Workers     int                  `json:"workers"`
	LabelRegion string               `json:"label_region"`
	BlurRadius  *float64             `json:"blur_radius"`
	Config      edgefinder.Overrides `json:"config"`
}

func (s *Server) handleBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a batchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths is required")
	}
	paths, err := batch.ExpandPaths(a.Paths)
	if err != nil {
		return nil, err
	}

	r := &batch.Runner{
		Workers:    s.workers,
		Config:     s.config.Apply(a.Config),
		BlurRadius: s.blur,
		Fetcher:    s.fetcher,
	}
	if a.Workers > 0 {
		r.Workers = a.Workers
	}
	if a.BlurRadius != nil {
		r.BlurRadius = *a.BlurRadius
	}
	if a.LabelRegion != "" {
		region, err := ocr.ParseRegion(a.LabelRegion)
		if err != nil {
			return nil, err
		}
		r.Labeler = &ocr.Reader{Region: region}
	}
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}

	report := batch.NewReport(r.Run(ctx, paths))
	return &report, nil
}
