package edgefinder

import (
	"errors"
	"fmt"
)

// Stage names a pipeline stage in error reports.
type Stage string

const (
	StageCrop     Stage = "crop"
	StageSubpixel Stage = "subpixel"
	StageBaseline Stage = "baseline"
	StageDropEdge Stage = "drop_edge"
	StageAngleTan Stage = "angle_tan"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrEmptyRegion   = errors.New("no sample crosses the threshold")
	ErrOutOfBounds   = errors.New("index outside grid")
	ErrDegenerateFit = errors.New("degenerate line fit")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// EmptyRegionError reports that no sample exceeded a required threshold.
type EmptyRegionError struct {
	Stage     Stage
	Threshold float64
}

func (e *EmptyRegionError) Error() string {
	return fmt.Sprintf("%s: no sample exceeds threshold %g", e.Stage, e.Threshold)
}

func (e *EmptyRegionError) Is(target error) bool { return target == ErrEmptyRegion }

// OutOfBoundsError reports a lookup outside the grid, usually caused by a
// droplet touching the frame border or by thresholds that never trigger.
type OutOfBoundsError struct {
	Stage      Stage
	Row, Col   int
	Rows, Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: sample (row %d, col %d) outside %dx%d grid",
		e.Stage, e.Row, e.Col, e.Rows, e.Cols)
}

func (e *OutOfBoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// DegenerateFitError reports a line fit that cannot produce a usable line.
type DegenerateFitError struct {
	Stage  Stage
	Points int
	Reason string
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("%s: degenerate fit over %d points: %s", e.Stage, e.Points, e.Reason)
}

func (e *DegenerateFitError) Is(target error) bool { return target == ErrDegenerateFit }

// ConfigError reports a configuration value outside its valid range.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s=%d: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
