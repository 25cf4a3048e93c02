package edgefinder

// BaselineResult is the fitted substrate edge.
type BaselineResult struct {
	// Points holds the fitted line evaluated at every column of the grid.
	Points Points `json:"points"`

	// Line holds the fit coefficients, used later for tangent intersection.
	Line Line `json:"line"`

	// SpanLeft and SpanRight are the outermost columns of the illuminated
	// region.
	SpanLeft  int `json:"span_left"`
	SpanRight int `json:"span_right"`

	// SampleX and SampleY are the dark-edge samples the line was fitted to.
	SampleX []float64 `json:"sample_x"`
	SampleY []float64 `json:"sample_y"`
}

// Baseline locates the substrate edge and fits a line through it, sampling
// only near both ends of the illuminated span so the droplet footprint in
// the middle does not bias the fit.
//
// For every column the first row, scanning up from the bottom, brighter than
// cfg.ThresholdDark is the dark-edge height of that column. BaselineFit
// heights are taken on each side: on the left at columns
// SpanLeft+BaselineIgnore+2k, on the right at the BaselineFit consecutive
// columns ending BaselineIgnore+1 columns before SpanRight. Columns with no
// dark edge are left out of the fit.
//
// Precondition: 2*(BaselineFit+BaselineIgnore) is smaller than the
// illuminated span width; otherwise sample columns fall outside the span and
// may fall outside the grid, which fails with *OutOfBoundsError.
func Baseline(g *Grid, cfg Config) (*BaselineResult, error) {
	light := float64(cfg.ThresholdLight)
	_, _, spanLeft, spanRight, ok := g.brightBounds(light)
	if !ok {
		return nil, &EmptyRegionError{Stage: StageBaseline, Threshold: light}
	}

	heights := g.darkEdgeHeights(float64(cfg.ThresholdDark))

	cols := make([]int, 0, 2*cfg.BaselineFit)
	for k := 0; k < cfg.BaselineFit; k++ {
		cols = append(cols, spanLeft+cfg.BaselineIgnore+2*k)
	}
	for k := 0; k < cfg.BaselineFit; k++ {
		cols = append(cols, spanRight-cfg.BaselineFit-cfg.BaselineIgnore+k)
	}

	xs := make([]float64, 0, len(cols))
	ys := make([]float64, 0, len(cols))
	for _, c := range cols {
		if c < 0 || c >= len(heights) {
			return nil, &OutOfBoundsError{Stage: StageBaseline, Row: -1, Col: c, Rows: g.Rows(), Cols: g.Cols()}
		}
		if heights[c] == 0 {
			continue
		}
		xs = append(xs, float64(c))
		ys = append(ys, heights[c])
	}

	line, err := FitLine(StageBaseline, xs, ys)
	if err != nil {
		return nil, err
	}

	return &BaselineResult{
		Points:    line.Sample(columnAxis(g.Cols())),
		Line:      line,
		SpanLeft:  spanLeft,
		SpanRight: spanRight,
		SampleX:   xs,
		SampleY:   ys,
	}, nil
}
