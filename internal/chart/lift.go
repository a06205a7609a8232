// Package chart draws percentage-lift bar charts for category summaries.
package chart

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
	"github.com/KaramelBytes/discount-impact/internal/utils"
)

const (
	TopFile     = "top_lift_categories.png"
	ErosionFile = "erosion_categories.png"

	TopTitle     = "Top Categories by % AOV Lift with Discount"
	ErosionTitle = "Categories with AOV Erosion from Discount"
	YLabel       = "% Lift in AOV (Discount vs No Discount)"
)

// Options controls which categories are plotted and where files go.
type Options struct {
	Dir         string
	MinPerGroup int
	TopN        int
}

// Qualifying returns rows with a lift value whose smaller cohort holds at
// least minPerGroup transactions, in their incoming order.
func Qualifying(rows []analysis.CategorySummary, minPerGroup int) []analysis.CategorySummary {
	var out []analysis.CategorySummary
	for _, r := range rows {
		if r.PctLift.Valid && r.MinN() >= minPerGroup {
			out = append(out, r)
		}
	}
	return out
}

// Top returns up to n qualifying rows by lift, highest first.
func Top(rows []analysis.CategorySummary, n int) []analysis.CategorySummary {
	return pick(rows, n, func(a, b float64) bool { return a > b })
}

// Bottom returns up to n qualifying rows by lift, lowest first.
func Bottom(rows []analysis.CategorySummary, n int) []analysis.CategorySummary {
	return pick(rows, n, func(a, b float64) bool { return a < b })
}

func pick(rows []analysis.CategorySummary, n int, less func(a, b float64) bool) []analysis.CategorySummary {
	out := append([]analysis.CategorySummary(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i].PctLift.Value, out[j].PctLift.Value) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RenderLift writes the top-lift and erosion charts into opt.Dir and returns
// the paths written. A chart with no qualifying category is skipped.
func RenderLift(rows []analysis.CategorySummary, opt Options) ([]string, error) {
	q := Qualifying(rows, opt.MinPerGroup)
	if len(q) == 0 {
		return nil, nil
	}
	var written []string
	plots := []struct {
		file  string
		title string
		rows  []analysis.CategorySummary
		color drawing.Color
	}{
		{TopFile, TopTitle, Top(q, opt.TopN), chart.ColorBlue},
		{ErosionFile, ErosionTitle, Bottom(q, opt.TopN), chart.ColorRed},
	}
	for _, p := range plots {
		if len(p.rows) == 0 {
			continue
		}
		path := filepath.Join(opt.Dir, p.file)
		if err := renderBars(path, p.title, p.rows, p.color); err != nil {
			return written, fmt.Errorf("render %s: %w", p.file, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func renderBars(path, title string, rows []analysis.CategorySummary, color drawing.Color) error {
	bars := make([]chart.Value, 0, len(rows))
	lo, hi := 0.0, 0.0
	for _, r := range rows {
		v := r.PctLift.Value
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		bars = append(bars, chart.Value{
			Label: r.Category,
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05

	width := 200 + 90*len(bars)
	if width < 640 {
		width = 640
	}
	graph := chart.BarChart{
		Title:        title,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:        width,
		Height:       480,
		BarWidth:     50,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  YLabel,
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
