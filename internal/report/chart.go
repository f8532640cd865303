package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pavelanni/testgen/internal/model"
)

// ErrNoData is returned when a chart is requested for a test with no questions.
var ErrNoData = errors.New("no results to chart")

// Chart kinds.
const (
	ChartProportion = "proportion"
	ChartMagnitude  = "magnitude"
)

const (
	chartWidth  = 640
	chartHeight = 480
)

var categoryColors = [3]drawing.Color{
	drawing.ColorFromHex("2e7d32"),
	drawing.ColorFromHex("c62828"),
	drawing.ColorFromHex("9e9e9e"),
}

// Category is one bar or slice of the summary charts.
type Category struct {
	Label   string
	Count   int
	Percent float64
}

// ChartData returns Correct, Incorrect and Omitted, always in that order.
func ChartData(sum model.ScoreSummary, labels Labels) []Category {
	cats := []Category{
		{Label: labels.Right, Count: sum.Correct},
		{Label: labels.Wrong, Count: sum.Incorrect},
		{Label: labels.Omitted, Count: sum.Omitted},
	}
	if total := sum.Count(); total > 0 {
		for i := range cats {
			cats[i].Percent = 100 * float64(cats[i].Count) / float64(total)
		}
	}
	return cats
}

// ProportionChart renders a PNG pie chart of the answer shares.
func ProportionChart(w io.Writer, sum model.ScoreSummary, labels Labels) error {
	if sum.Count() == 0 {
		return ErrNoData
	}
	var values []chart.Value
	for i, c := range ChartData(sum, labels) {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", c.Label, c.Percent),
			Value: c.Percent,
			Style: chart.Style{FillColor: categoryColors[i], StrokeColor: drawing.ColorWhite},
		})
	}
	pie := chart.PieChart{
		Title:  labels.Proportion,
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

// MagnitudeChart renders a PNG bar chart of the raw counts.
func MagnitudeChart(w io.Writer, sum model.ScoreSummary, labels Labels) error {
	if sum.Count() == 0 {
		return ErrNoData
	}
	var bars []chart.Value
	peak := 0
	for i, c := range ChartData(sum, labels) {
		peak = max(peak, c.Count)
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Label, c.Count),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: categoryColors[i], StrokeColor: categoryColors[i]},
		})
	}
	// Pin the axis at zero so equal counts still give a non-empty range.
	bar := chart.BarChart{
		Title:      labels.Magnitude,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   90,
		Bars:       bars,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(peak)}},
	}
	return bar.Render(chart.PNG, w)
}

// RenderChart dispatches on the chart kind.
func RenderChart(w io.Writer, kind string, sum model.ScoreSummary, labels Labels) error {
	switch kind {
	case ChartProportion:
		return ProportionChart(w, sum, labels)
	case ChartMagnitude:
		return MagnitudeChart(w, sum, labels)
	}
	return fmt.Errorf("unknown chart %q", kind)
}
