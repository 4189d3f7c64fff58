package services

import (
	"context"
	"testing"
	"time"

	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store/memory"
)

func TestAnalyticsService(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.Seed(
		tx(core.Income, 300000, "Salary", 2024, 1, 31),
		tx(core.Expense, 120000, "Rent", 2024, 1, 1),
		tx(core.Expense, 4550, "Food", 2024, 2, 3),
		tx(core.Expense, 9000, "Groceries", 2024, 2, 14),
	)
	st.CreateBudget(ctx, core.Budget{Category: "Food", Amount: core.Money{Cents: 1000}, Month: "2024-02"})

	svc := NewAnalyticsService(st, NewBudgetService(st, log.Discard()), log.Discard())
	svc.now = func() time.Time { return time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC) }

	a, err := svc.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if len(a.Monthly) != 2 || a.Insights.TopCategory != "Rent" {
		t.Errorf("unexpected analytics %+v", a)
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Month != "2024-02" || d.TotalIncome.Cents != 300000 || d.Balance.Cents != 300000-133550 {
		t.Errorf("unexpected dashboard %+v", d)
	}
	if len(d.Budgets) != 1 || !d.Budgets[0].Exceeded {
		t.Errorf("unexpected budget progress %+v", d.Budgets)
	}

	found, err := svc.Search(ctx, core.FilterInput{Category: "foo"})
	if err != nil || len(found) != 1 || found[0].Category != "Food" {
		t.Errorf("Search = %+v, %v", found, err)
	}
	none, _ := svc.Search(ctx, core.FilterInput{AmountMin: "99999"})
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", none)
	}

	cats, _ := svc.Categories(ctx)
	if len(cats) != 4 {
		t.Errorf("Categories = %v", cats)
	}
}
