package export

import (
	"bytes"
	"strings"
	"testing"

	"tracker/internal/core"
)

func TestTransactionsTable(t *testing.T) {
	var buf bytes.Buffer
	TransactionsTable(&buf, sample())
	out := buf.String()
	for _, want := range []string{"CATEGORY", "Food", "12.50", "Salary", "2500.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyticsTables(t *testing.T) {
	var buf bytes.Buffer
	AnalyticsTables(&buf, core.Aggregate(sample()))
	out := buf.String()
	for _, want := range []string{"2024-03", "2487.50", "Top category", "Food"} {
		if !strings.Contains(out, want) {
			t.Errorf("analytics missing %q:\n%s", want, out)
		}
	}
}

func TestBudgetTable(t *testing.T) {
	var buf bytes.Buffer
	BudgetTable(&buf, []core.BudgetStatus{
		{
			Budget:    core.Budget{Category: "Food", Month: "2024-03", Amount: core.Money{Cents: 1000}},
			Spent:     core.Money{Cents: 1250},
			Remaining: core.Money{Cents: -250},
			Exceeded:  true,
		},
	})
	if out := buf.String(); !strings.Contains(out, "EXCEEDED") || !strings.Contains(out, "-2.50") {
		t.Errorf("budget table:\n%s", out)
	}
}
