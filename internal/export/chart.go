package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"

	"tracker/internal/core"
)

type ChartKind string

const (
	ChartMonthly    ChartKind = "monthly"
	ChartSavings    ChartKind = "savings"
	ChartCategories ChartKind = "categories"
)

var (
	// ErrNoData is returned when there is nothing to plot.
	ErrNoData           = errors.New("no data to chart")
	ErrUnknownChartKind = errors.New("unknown chart kind")
)

const (
	chartWidth  = 900
	chartHeight = 450
)

func ParseChartKind(s string) (ChartKind, error) {
	switch k := ChartKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ChartMonthly, ChartSavings, ChartCategories:
		return k, nil
	case "":
		return ChartMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChartKind, s)
	}
}

// RenderChart draws the requested view of the analytics as a PNG.
func RenderChart(w io.Writer, kind ChartKind, a core.Analytics) error {
	switch kind {
	case ChartMonthly:
		return renderMonthly(w, a.Monthly)
	case ChartSavings:
		return renderSavings(w, a.Monthly)
	case ChartCategories:
		return renderCategories(w, a.CategoryTotals)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChartKind, kind)
	}
}

func renderMonthly(w io.Writer, months []core.MonthlyBucket) error {
	if len(months) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, 2*len(months))
	for _, m := range months {
		bars = append(bars,
			chart.Value{Label: m.Month + " in", Value: m.Income.Float()},
			chart.Value{Label: m.Month + " out", Value: m.Expense.Float()},
		)
	}
	return renderBars(w, "Income vs expense by month", bars)
}

func renderSavings(w io.Writer, months []core.MonthlyBucket) error {
	if len(months) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(months))
	for _, m := range months {
		bars = append(bars, chart.Value{Label: m.Month, Value: m.Savings.Float()})
	}
	return renderBars(w, "Savings by month", bars)
}

func renderBars(w io.Writer, title string, bars []chart.Value) error {
	barChart := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		Bars:     bars,
	}
	barChart.YAxis.Range = yRange(bars)
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, ok := v.(float64); ok {
			return fmt.Sprintf("%.2f", vf)
		}
		return ""
	}

	if err := barChart.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// yRange always includes zero so bars share a baseline, and never collapses
// to an empty span.
func yRange(bars []chart.Value) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		if b.Value < lo {
			lo = b.Value
		}
		if b.Value > hi {
			hi = b.Value
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func renderCategories(w io.Writer, totals []core.CategoryTotal) error {
	values := make([]chart.Value, 0, len(totals))
	for _, c := range totals {
		if c.Total.Cents > 0 {
			values = append(values, chart.Value{Label: c.Category, Value: c.Total.Float()})
		}
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Title:  "Expenses by category",
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}
