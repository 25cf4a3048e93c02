package edgefinder

import "image"

// Analysis carries every intermediate result of one pipeline run.
type Analysis struct {
	Config Config `json:"config"`

	// CropBounds is the region of the source grid that was kept, in source
	// pixels.
	CropBounds image.Rectangle `json:"crop_bounds"`

	// Subpixel is the resampled grid every later stage worked on.
	Subpixel *Grid `json:"-"`

	Baseline *BaselineResult `json:"baseline"`
	Edges    *DropEdgeResult `json:"edges"`
	Tangents *TangentResult  `json:"tangents"`
	Geometry Geometry        `json:"geometry"`
}

// Angles returns the measured contact angles.
func (a *Analysis) Angles() AnglePair {
	return a.Tangents.Angles
}

// Analyze validates cfg and runs Crop, Subpixel, Baseline, DropEdge and
// AngleTan in order on the source grid.
func Analyze(src *Grid, cfg Config) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bounds, err := CropBounds(src, cfg)
	if err != nil {
		return nil, err
	}
	cropped, err := Crop(src, cfg)
	if err != nil {
		return nil, err
	}

	sub, err := Subpixel(cropped, cfg)
	if err != nil {
		return nil, err
	}

	baseline, err := Baseline(sub, cfg)
	if err != nil {
		return nil, err
	}

	edges, err := DropEdge(sub, baseline, cfg)
	if err != nil {
		return nil, err
	}

	tangents, err := AngleTan(sub, edges.Left, edges.Right, baseline.Line, cfg)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Config:     cfg,
		CropBounds: bounds,
		Subpixel:   sub,
		Baseline:   baseline,
		Edges:      edges,
		Tangents:   tangents,
	}
	a.Geometry = DropGeometry(a)
	return a, nil
}

// FullAnalysis runs the whole pipeline and returns only the contact angles.
func FullAnalysis(src *Grid, cfg Config) (AnglePair, error) {
	a, err := Analyze(src, cfg)
	if err != nil {
		return AnglePair{}, err
	}
	return a.Angles(), nil
}
