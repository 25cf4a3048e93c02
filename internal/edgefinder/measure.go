package edgefinder

import "math"

// Geometry summarises the droplet's size. Lengths are in subpixel units;
// the *Source fields are divided by the subpixel multiplier.
type Geometry struct {
	BaseWidth        float64 `json:"base_width"`
	ApexHeight       float64 `json:"apex_height"`
	BaseWidthSource  float64 `json:"base_width_source"`
	ApexHeightSource float64 `json:"apex_height_source"`
	Apex             Point   `json:"apex"`
}

// DropGeometry derives the base width (distance between the two contact
// points) and the apex height (perpendicular distance from the apex to the
// baseline) of a completed analysis.
func DropGeometry(a *Analysis) Geometry {
	l, r := a.Tangents.LeftIntersection, a.Tangents.RightIntersection
	width := math.Hypot(r.X-l.X, r.Y-l.Y)

	apex := a.Edges.Apex
	bl := a.Baseline.Line
	height := math.Abs(bl.Slope*apex.X-apex.Y+bl.Intercept) / math.Hypot(bl.Slope, 1)

	scale := float64(a.Config.Pixels)
	if scale < 1 {
		scale = 1
	}
	return Geometry{
		BaseWidth:        round(width, 100),
		ApexHeight:       round(height, 100),
		BaseWidthSource:  round(width/scale, 100),
		ApexHeightSource: round(height/scale, 100),
		Apex:             apex,
	}
}

func round(v, factor float64) float64 {
	return math.Round(v*factor) / factor
}
