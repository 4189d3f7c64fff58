package export

import (
	"bytes"
	"errors"
	"testing"

	"tracker/internal/core"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderChart(t *testing.T) {
	a := core.Aggregate(append(sample(),
		core.Transaction{ID: 3, Type: core.Expense, Amount: core.Money{Cents: 90000}, Category: "Rent", Date: core.NewDate(2024, 4, 1)},
	))

	for _, kind := range []ChartKind{ChartMonthly, ChartSavings, ChartCategories} {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderChart(&buf, kind, a); err != nil {
				t.Fatalf("RenderChart: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Fatal("output is not a PNG")
			}
		})
	}
}

func TestRenderChart_SingleMonth(t *testing.T) {
	// a single bar would otherwise collapse the y range
	a := core.Aggregate(sample()[:1])
	var buf bytes.Buffer
	if err := RenderChart(&buf, ChartSavings, a); err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
}

func TestRenderChart_NoData(t *testing.T) {
	empty := core.Aggregate(nil)
	for _, kind := range []ChartKind{ChartMonthly, ChartSavings, ChartCategories} {
		if err := RenderChart(&bytes.Buffer{}, kind, empty); !errors.Is(err, ErrNoData) {
			t.Errorf("%s: expected ErrNoData, got %v", kind, err)
		}
	}

	incomeOnly := core.Aggregate(sample()[1:])
	if err := RenderChart(&bytes.Buffer{}, ChartCategories, incomeOnly); !errors.Is(err, ErrNoData) {
		t.Errorf("income-only pie: expected ErrNoData, got %v", err)
	}
}

func TestParseChartKind(t *testing.T) {
	if k, err := ParseChartKind(""); err != nil || k != ChartMonthly {
		t.Errorf("default = %q, %v", k, err)
	}
	if k, err := ParseChartKind("Categories"); err != nil || k != ChartCategories {
		t.Errorf("categories = %q, %v", k, err)
	}
	if _, err := ParseChartKind("radar"); !errors.Is(err, ErrUnknownChartKind) {
		t.Errorf("expected ErrUnknownChartKind, got %v", err)
	}
}
