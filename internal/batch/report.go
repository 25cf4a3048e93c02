package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the successful results of a run.
type Summary struct {
	Count  int `json:"count"`
	Failed int `json:"failed"`

	MeanLeft  float64 `json:"mean_left_deg"`
	MeanRight float64 `json:"mean_right_deg"`
	MinLeft   float64 `json:"min_left_deg"`
	MaxLeft   float64 `json:"max_left_deg"`
	MinRight  float64 `json:"min_right_deg"`
	MaxRight  float64 `json:"max_right_deg"`
}

// Summarize counts results and computes angle statistics over those that
// succeeded. The angle fields are zero when nothing succeeded.
func Summarize(results []Result) Summary {
	s := Summary{Count: len(results)}
	var left, right []float64
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		left = append(left, r.Left)
		right = append(right, r.Right)
	}
	if len(left) == 0 {
		return s
	}
	s.MeanLeft = stat.Mean(left, nil)
	s.MeanRight = stat.Mean(right, nil)
	s.MinLeft, s.MaxLeft = floats.Min(left), floats.Max(left)
	s.MinRight, s.MaxRight = floats.Min(right), floats.Max(right)
	return s
}

// CSVHeader is the first record written by WriteCSV.
var CSVHeader = []string{"index", "path", "label", "left_deg", "right_deg", "base_width_px", "error"}

// WriteCSV writes one record per result. Failed images leave the numeric
// columns empty and carry the error text.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		rec := []string{strconv.Itoa(r.Index), r.Path, r.Label, "", "", "", ""}
		if r.Err != nil {
			rec[6] = r.Err.Error()
		} else {
			rec[3] = formatFloat(r.Left)
			rec[4] = formatFloat(r.Right)
			rec[5] = formatFloat(r.BaseWidth)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv record %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ReportRow is one result in a Report.
type ReportRow struct {
	Index      int      `json:"index"`
	Path       string   `json:"path"`
	Label      string   `json:"label"`
	Left       *float64 `json:"left_deg,omitempty"`
	Right      *float64 `json:"right_deg,omitempty"`
	BaseWidth  *float64 `json:"base_width_px,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// Report is the document written by WriteJSON.
type Report struct {
	Results []ReportRow `json:"results"`
	Summary Summary      `json:"summary"`
}

// NewReport converts results for JSON output.
func NewReport(results []Result) Report {
	rep := Report{Results: make([]ReportRow, 0, len(results)), Summary: Summarize(results)}
	for _, r := range results {
		jr := ReportRow{
			Index:      r.Index,
			Path:       r.Path,
			Label:      r.Label,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			left, right, width := r.Left, r.Right, r.BaseWidth
			jr.Left, jr.Right, jr.BaseWidth = &left, &right, &width
		}
		rep.Results = append(rep.Results, jr)
	}
	return rep
}

// WriteJSON writes the results and their summary as one indented document.
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(results)); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
