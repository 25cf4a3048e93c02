package edgefinder

import "math"

// AnglePair holds the two contact angles in degrees, each in [0, 180).
type AnglePair struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// TangentResult holds the local tangents and the contact angles they form
// with the baseline.
type TangentResult struct {
	// Left and Right are the tangent lines evaluated at every grid column.
	Left  Points `json:"left"`
	Right Points `json:"right"`

	LeftLine  Line `json:"left_line"`
	RightLine Line `json:"right_line"`

	// LeftIntersection and RightIntersection approximate the three-phase
	// contact points.
	LeftIntersection  Point `json:"left_intersection"`
	RightIntersection Point `json:"right_intersection"`

	Angles AnglePair `json:"angles"`
}

// AngleTan fits a tangent to each edge over cfg.TangentFit points starting
// cfg.TangentIgnore points into the sequence, intersects it with the
// baseline and measures the contact angle on the liquid side.
//
// The grid is only used for its width. A window that runs past the end of
// a sequence is shortened; fewer than two usable points fail with
// *DegenerateFitError.
func AngleTan(g *Grid, left, right Points, baseline Line, cfg Config) (*TangentResult, error) {
	axis := columnAxis(g.Cols())

	leftLine, err := fitWindow(left, cfg)
	if err != nil {
		return nil, err
	}
	rightLine, err := fitWindow(right, cfg)
	if err != nil {
		return nil, err
	}

	leftHit, err := leftLine.Intersect(StageAngleTan, baseline)
	if err != nil {
		return nil, err
	}
	rightHit, err := rightLine.Intersect(StageAngleTan, baseline)
	if err != nil {
		return nil, err
	}

	return &TangentResult{
		Left:              leftLine.Sample(axis),
		Right:             rightLine.Sample(axis),
		LeftLine:          leftLine,
		RightLine:         rightLine,
		LeftIntersection:  leftHit,
		RightIntersection: rightHit,
		Angles: AnglePair{
			Left:  ContactAngle(Left, leftLine.Slope, baseline.Slope),
			Right: ContactAngle(Right, rightLine.Slope, baseline.Slope),
		},
	}, nil
}

func fitWindow(edge Points, cfg Config) (Line, error) {
	start := cfg.TangentIgnore
	end := min(start+cfg.TangentFit, edge.Len())
	if start >= end {
		return Line{}, &DegenerateFitError{Stage: StageAngleTan, Points: 0, Reason: "tangent window is past the end of the edge"}
	}
	return FitLine(StageAngleTan, edge.X[start:end], edge.Y[start:end])
}

// ContactAngle returns the angle in degrees between a tangent of the given
// slope and the baseline, measured inside the droplet.
//
// The angle between the direction vectors (1, tangent) and (1, baseline)
// does not say which way the flank leans. Rows grow downward, so a left
// tangent with positive slope or a right tangent with negative slope
// overhangs its contact point, and the supplement is reported instead.
func ContactAngle(side Side, tangent, baseline float64) float64 {
	dot := 1 + tangent*baseline
	cos := dot / (math.Hypot(1, tangent) * math.Hypot(1, baseline))
	cos = math.Max(-1, math.Min(1, cos))
	deg := math.Acos(cos) * 180 / math.Pi

	switch {
	case side == Left && tangent > 0:
		return 180 - deg
	case side == Right && tangent < 0:
		return 180 - deg
	}
	return deg
}
