package edgefinder

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Line is a least-squares line Y = Slope*X + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Eval returns the line's Y at x.
func (l Line) Eval(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Intersect returns the point where l meets o. Parallel lines have no
// intersection and report a *DegenerateFitError.
func (l Line) Intersect(stage Stage, o Line) (Point, error) {
	den := l.Slope - o.Slope
	if den == 0 || math.IsNaN(den) {
		return Point{}, &DegenerateFitError{Stage: stage, Points: 2, Reason: "lines are parallel"}
	}
	x := (o.Intercept - l.Intercept) / den
	return Point{X: x, Y: o.Slope*x + o.Intercept}, nil
}

// Point is a single (X, Y) location.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Points is a sampled curve: parallel X and Y sequences of equal length.
type Points struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Len returns the number of samples.
func (p Points) Len() int { return len(p.X) }

// At returns the i-th sample.
func (p Points) At(i int) Point { return Point{X: p.X[i], Y: p.Y[i]} }

// Sample evaluates l at every x.
func (l Line) Sample(xs []float64) Points {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = l.Eval(x)
	}
	out := make([]float64, len(xs))
	copy(out, xs)
	return Points{X: out, Y: ys}
}

// FitLine fits a degree-1 least-squares line through (xs[i], ys[i]).
// It fails with *DegenerateFitError on fewer than two points or when every
// x is identical (a vertical line has no finite slope).
func FitLine(stage Stage, xs, ys []float64) (Line, error) {
	n := len(xs)
	if n != len(ys) {
		return Line{}, &DegenerateFitError{Stage: stage, Points: n, Reason: "x and y lengths differ"}
	}
	if n < 2 {
		return Line{}, &DegenerateFitError{Stage: stage, Points: n, Reason: "need at least 2 points"}
	}
	if stat.Variance(xs, nil) == 0 {
		return Line{}, &DegenerateFitError{Stage: stage, Points: n, Reason: "all x values identical"}
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Line{}, &DegenerateFitError{Stage: stage, Points: n, Reason: "slope is not finite"}
	}
	return Line{Slope: slope, Intercept: intercept}, nil
}
