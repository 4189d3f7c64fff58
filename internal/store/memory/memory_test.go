package memory

import (
	"context"
	"sync"
	"testing"

	"tracker/internal/core"
	"tracker/internal/store"
	"tracker/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 0},
		Category: "Food",
		Date:     core.NewDate(2024, 1, 1),
	})
	if err == nil {
		t.Fatal("expected validation error for zero amount")
	}
	if _, err := s.CreateBudget(context.Background(), core.Budget{Category: "Food", Amount: core.Money{Cents: 10}, Month: "24-01"}); err == nil {
		t.Fatal("expected validation error for bad month")
	}
}

func TestConcurrentCreate(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.CreateTransaction(context.Background(), core.Transaction{
				Type:     core.Income,
				Amount:   core.Money{Cents: 100},
				Category: "Gift",
				Date:     core.NewDate(2024, 5, 1),
			})
		}()
	}
	wg.Wait()

	all, _ := s.ListTransactions(context.Background(), store.TransactionQuery{})
	if len(all) != 50 {
		t.Fatalf("expected 50 transactions, got %d", len(all))
	}
	seen := map[int64]bool{}
	for _, tr := range all {
		if seen[tr.ID] {
			t.Fatalf("duplicate id %d", tr.ID)
		}
		seen[tr.ID] = true
	}
}
