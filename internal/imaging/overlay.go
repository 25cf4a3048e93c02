package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
)

// OverlayResult contains an encoded overlay or inset image.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// OverlayStyle controls how RenderOverlay draws an analysis. Colors are hex
// strings such as "#FF0000" or "#f00".
type OverlayStyle struct {
	Baseline string `json:"baseline"`
	Edge     string `json:"edge"`
	Tangent  string `json:"tangent"`
	Marker   string `json:"marker"`
	Label    string `json:"label"`

	// TangentReach is how many columns each tangent is drawn on either side
	// of its intersection with the baseline.
	TangentReach int `json:"tangent_reach"`

	// MarkerSize is the half-width of the cross drawn at each intersection.
	MarkerSize int `json:"marker_size"`

	ShowLabel bool `json:"show_label"`
}

// DefaultOverlayStyle returns the standard colors: red baseline and markers,
// green edges, blue tangents and a yellow label.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		Baseline:     "#FF0000",
		Edge:         "#00C000",
		Tangent:      "#0050FF",
		Marker:       "#FF0000",
		Label:        "#FFFF00",
		TangentReach: 30,
		MarkerSize:   3,
		ShowLabel:    true,
	}
}

type palette struct {
	baseline, edge, tangent, marker, label color.RGBA
}

func (s OverlayStyle) palette() (palette, error) {
	var p palette
	for _, c := range []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"baseline", s.Baseline, &p.baseline},
		{"edge", s.Edge, &p.edge},
		{"tangent", s.Tangent, &p.tangent},
		{"marker", s.Marker, &p.marker},
		{"label", s.Label, &p.label},
	} {
		rgba, err := parseHexColor(c.hex)
		if err != nil {
			return palette{}, fmt.Errorf("%s color: %w", c.name, err)
		}
		*c.dst = rgba
	}
	return p, nil
}

// RenderOverlay draws a completed analysis over its subpixel grid: the
// fitted baseline, both traced edges, a tangent segment around each
// intersection, a cross on each intersection and, when style.ShowLabel is
// set, both angles in the top-left corner.
func RenderOverlay(a *edgefinder.Analysis, style OverlayStyle) (*image.RGBA, error) {
	if a == nil || a.Subpixel == nil || a.Baseline == nil || a.Edges == nil || a.Tangents == nil {
		return nil, fmt.Errorf("analysis is incomplete")
	}
	p, err := style.palette()
	if err != nil {
		return nil, err
	}

	base := GridImage(a.Subpixel)
	bounds := base.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, base, bounds.Min, draw.Src)

	drawPolyline(result, a.Baseline.Points, p.baseline)
	drawPolyline(result, a.Edges.Left, p.edge)
	drawPolyline(result, a.Edges.Right, p.edge)

	reach := float64(style.TangentReach)
	for _, t := range []struct {
		line edgefinder.Line
		hit  edgefinder.Point
	}{
		{a.Tangents.LeftLine, a.Tangents.LeftIntersection},
		{a.Tangents.RightLine, a.Tangents.RightIntersection},
	} {
		x0, x1 := t.hit.X-reach, t.hit.X+reach
		drawLine(result, x0, t.line.Eval(x0), x1, t.line.Eval(x1), p.tangent)
	}

	drawMarker(result, a.Tangents.LeftIntersection, style.MarkerSize, p.marker)
	drawMarker(result, a.Tangents.RightIntersection, style.MarkerSize, p.marker)

	if style.ShowLabel {
		angles := a.Angles()
		label := fmt.Sprintf("L %.2f deg  R %.2f deg", angles.Left, angles.Right)
		drawLabel(result, 4, 4+basicfont.Face7x13.Ascent, label, p.label, color.RGBA{0, 0, 0, 180})
	}

	return result, nil
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*OverlayResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// parseHexColor parses "#RRGGBB", "#RGB" or the same without the hash.
func parseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.RGBA{}, fmt.Errorf("invalid hex color length %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func drawPolyline(img *image.RGBA, pts edgefinder.Points, c color.RGBA) {
	switch pts.Len() {
	case 0:
		return
	case 1:
		p := pts.At(0)
		img.Set(int(math.Round(p.X)), int(math.Round(p.Y)), c)
		return
	}
	for i := 1; i < pts.Len(); i++ {
		a, b := pts.At(i-1), pts.At(i)
		drawLine(img, a.X, a.Y, b.X, b.Y, c)
	}
}

// drawLine plots the segment with one sample per pixel along its longer
// axis, capped for near-vertical tangents that leave the image. Pixels
// outside the image are dropped by Set.
func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	limit := 4 * (img.Bounds().Dx() + img.Bounds().Dy())
	steps := int(math.Min(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))), float64(limit)))
	if steps == 0 {
		img.Set(int(math.Round(x0)), int(math.Round(y0)), c)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		img.Set(int(math.Round(x0+dx*f)), int(math.Round(y0+dy*f)), c)
	}
}

func drawMarker(img *image.RGBA, at edgefinder.Point, size int, c color.RGBA) {
	x, y := int(math.Round(at.X)), int(math.Round(at.Y))
	for d := -size; d <= size; d++ {
		img.Set(x+d, y+d, c)
		img.Set(x+d, y-d, c)
	}
}

// drawLabel writes text with its baseline at (x, y) over a filled box.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	width := d.MeasureString(text).Ceil()
	box := image.Rect(x-2, y-face.Ascent-2, x+width+2, y+face.Descent+2)
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Over)
	d.DrawString(text)
}
