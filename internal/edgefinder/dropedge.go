package edgefinder

import "math"

// diagonalReach is how many columns back toward the droplet the angled
// baseline sweep restarts from on every row.
const diagonalReach = 15

// Side selects the droplet flank being traced.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// outward is the column step that moves away from the droplet centre.
func (s Side) outward() int {
	if s == Left {
		return -1
	}
	return 1
}

// DropEdgeResult holds the two traced silhouette flanks.
type DropEdgeResult struct {
	// Left and Right are the edge points of each flank. Each sequence starts
	// with the points found by the angled baseline sweep (lowest row first),
	// continues with one point per row from the trace start up to the apex,
	// and ends with the apex column just above the silhouette.
	Left  Points `json:"left"`
	Right Points `json:"right"`

	// Apex is the column and row of the first bright sample above the
	// silhouette's highest point.
	Apex Point `json:"apex"`

	// BaselineRow is the baseline height at the apex column, rounded half
	// to even.
	BaselineRow float64 `json:"baseline_row"`
}

// DropEdge traces the droplet silhouette on both sides of the apex.
//
// The grid must contain the whole droplet footprint: a trace that walks
// past the grid fails with *OutOfBoundsError rather than wrapping.
func DropEdge(g *Grid, baseline *BaselineResult, cfg Config) (*DropEdgeResult, error) {
	dark := float64(cfg.ThresholdDark)
	heights := g.darkEdgeHeights(dark)

	apexCol, apexRow := -1, 0.0
	for c, h := range heights {
		if h > 0 && (apexCol < 0 || h < apexRow) {
			apexCol, apexRow = c, h
		}
	}
	if apexCol < 0 {
		return nil, &EmptyRegionError{Stage: StageDropEdge, Threshold: dark}
	}

	if baseline.Points.Len() != g.Cols() {
		return nil, &OutOfBoundsError{Stage: StageDropEdge, Row: -1, Col: baseline.Points.Len(), Rows: g.Rows(), Cols: g.Cols()}
	}
	baseRow := math.RoundToEven(baseline.Points.Y[apexCol])

	t := &tracer{
		grid:     g,
		baseline: baseline.Points.Y,
		dark:     dark,
		center:   apexCol,
		baseRow:  int(baseRow),
		start:    cfg.BaselineOffset,
	}

	left, err := t.trace(Left)
	if err != nil {
		return nil, err
	}
	right, err := t.trace(Right)
	if err != nil {
		return nil, err
	}

	return &DropEdgeResult{
		Left:        left,
		Right:       right,
		Apex:        Point{X: float64(apexCol), Y: apexRow},
		BaselineRow: baseRow,
	}, nil
}

type traceState int

const (
	stateScanningRow traceState = iota
	stateRowAdvance
	stateDiagonalFollow
	stateDone
)

// tracer walks one flank at a time. Rows are addressed as an offset above
// baseRow, so a larger rise is higher in the image.
type tracer struct {
	grid     *Grid
	baseline []float64
	dark     float64
	center   int
	baseRow  int
	start    int
}

func (t *tracer) bright(row, col int) (bool, error) {
	v, err := t.grid.Sample(StageDropEdge, row, col)
	if err != nil {
		return false, err
	}
	return v > t.dark, nil
}

func (t *tracer) belowBaseline(row, col int) (bool, error) {
	if col < 0 || col >= len(t.baseline) {
		return false, &OutOfBoundsError{Stage: StageDropEdge, Row: row, Col: col, Rows: t.grid.Rows(), Cols: t.grid.Cols()}
	}
	return float64(row) > t.baseline[col], nil
}

// trace follows one flank. From the start row it scans outward along each
// row for the first bright sample, then moves one row up, until the apex
// column itself turns bright. If no row scan ever dropped below the
// baseline, the angled baseline sweep then walks down from just under the
// start row, restarting each row diagonalReach columns inside the newest
// point, until the scan falls below the baseline.
func (t *tracer) trace(side Side) (Points, error) {
	step := side.outward()

	var xs, ys []float64
	var diagX, diagY []float64

	rise, reach := t.start, 0
	col := 0
	reachedBaseline, restart := false, false

	state := stateScanningRow
	for state != stateDone {
		switch state {
		case stateScanningRow:
			row, at := t.baseRow-rise, t.center+step*reach
			hit, err := t.bright(row, at)
			if err != nil {
				return Points{}, err
			}
			if hit {
				xs, ys = append(xs, float64(at)), append(ys, float64(row))
				state = stateRowAdvance
				continue
			}
			below, err := t.belowBaseline(row, at)
			if err != nil {
				return Points{}, err
			}
			if below {
				reachedBaseline = true
				state = stateRowAdvance
				continue
			}
			reach++

		case stateRowAdvance:
			rise++
			reach = 0
			row := t.baseRow - rise
			hit, err := t.bright(row, t.center)
			if err != nil {
				return Points{}, err
			}
			switch {
			case !hit:
				state = stateScanningRow
			case reachedBaseline:
				xs, ys = append(xs, float64(t.center)), append(ys, float64(row))
				state = stateDone
			default:
				xs, ys = append(xs, float64(t.center)), append(ys, float64(row))
				rise = 1
				restart = true
				state = stateDiagonalFollow
			}

		case stateDiagonalFollow:
			if restart {
				front := xs[0]
				if n := len(diagX); n > 0 {
					front = diagX[n-1]
				}
				col = int(front) - step*diagonalReach
				restart = false
			}
			row := t.baseRow - rise
			hit, err := t.bright(row, col)
			if err != nil {
				return Points{}, err
			}
			if hit {
				diagX, diagY = append(diagX, float64(col)), append(diagY, float64(row))
				rise--
				restart = true
				continue
			}
			below, err := t.belowBaseline(row, col)
			if err != nil {
				return Points{}, err
			}
			if below {
				state = stateDone
				continue
			}
			col += step
		}
	}

	// Sweep points go in front, most recent (lowest) first.
	out := Points{
		X: make([]float64, 0, len(diagX)+len(xs)),
		Y: make([]float64, 0, len(diagY)+len(ys)),
	}
	for i := len(diagX) - 1; i >= 0; i-- {
		out.X = append(out.X, diagX[i])
		out.Y = append(out.Y, diagY[i])
	}
	out.X = append(out.X, xs...)
	out.Y = append(out.Y, ys...)
	return out, nil
}
