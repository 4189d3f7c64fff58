// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"tracker/internal/core"
	"tracker/internal/store"
)

// Run exercises a fresh store returned by newStore in every subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	t.Run("TransactionCRUD", func(t *testing.T) { testTransactionCRUD(t, newStore(t)) })
	t.Run("ListOrderingAndQuery", func(t *testing.T) { testListQuery(t, newStore(t)) })
	t.Run("MonthExpensesIncludesLeapDay", func(t *testing.T) { testLeapDay(t, newStore(t)) })
	t.Run("BudgetCRUD", func(t *testing.T) { testBudgetCRUD(t, newStore(t)) })
	t.Run("FindBudgetFirstMatch", func(t *testing.T) { testFindBudgetFirstMatch(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("SyncTracking", func(t *testing.T) { testSyncTracking(t, newStore(t)) })
}

func tx(typ core.TxType, cents int64, category string, y, m, d int) core.Transaction {
	return core.Transaction{
		Type:     typ,
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     core.NewDate(y, m, d),
	}
}

func mustCreate(t *testing.T, s store.Store, in core.Transaction) core.Transaction {
	t.Helper()
	out, err := s.CreateTransaction(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return out
}

func testTransactionCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	in := tx(core.Expense, 1250, "Food", 2024, 3, 14)
	in.Notes = "pizza"
	created := mustCreate(t, s, in)
	if created.ID == 0 {
		t.Fatalf("expected an id to be assigned")
	}

	got, err := s.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount != in.Amount || got.Category != "Food" || got.Notes != "pizza" ||
		got.Type != core.Expense || got.Date.String() != "2024-03-14" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.Amount = core.Money{Cents: 990}
	got.Type = core.Income
	if _, err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	again, _ := s.GetTransaction(ctx, created.ID)
	if again.Amount.Cents != 990 || again.Type != core.Income {
		t.Fatalf("update not persisted: %+v", again)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := s.GetTransaction(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	missing := got
	missing.ID = 9999
	if _, err := s.UpdateTransaction(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating unknown id, got %v", err)
	}
}

func testListQuery(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := mustCreate(t, s, tx(core.Expense, 100, "Food", 2024, 3, 1))
	b := mustCreate(t, s, tx(core.Income, 200, "Salary", 2024, 3, 5))
	c := mustCreate(t, s, tx(core.Expense, 300, "Food", 2024, 3, 5))
	d := mustCreate(t, s, tx(core.Expense, 400, "Rent", 2024, 2, 1))

	all, err := s.ListTransactions(ctx, store.TransactionQuery{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	wantOrder := []int64{c.ID, b.ID, a.ID, d.ID}
	if len(all) != len(wantOrder) {
		t.Fatalf("expected %d transactions, got %d", len(wantOrder), len(all))
	}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Fatalf("position %d: got id %d, want %d", i, all[i].ID, id)
		}
	}

	q, err := store.MonthExpenses("Food", "2024-03")
	if err != nil {
		t.Fatal(err)
	}
	food, err := s.ListTransactions(ctx, q)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(food) != 2 || food[0].ID != c.ID || food[1].ID != a.ID {
		t.Fatalf("month expense query returned %+v", food)
	}

	incomes, _ := s.ListTransactions(ctx, store.TransactionQuery{Type: core.Income})
	if len(incomes) != 1 || incomes[0].ID != b.ID {
		t.Fatalf("type query returned %+v", incomes)
	}
}

func testLeapDay(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, tx(core.Expense, 100, "Food", 2024, 2, 1))
	mustCreate(t, s, tx(core.Expense, 200, "Food", 2024, 2, 29))
	mustCreate(t, s, tx(core.Expense, 400, "Food", 2024, 3, 1))
	mustCreate(t, s, tx(core.Expense, 800, "Food", 2024, 1, 31))

	q, _ := store.MonthExpenses("Food", "2024-02")
	got, err := s.ListTransactions(ctx, q)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	var sum int64
	for _, tr := range got {
		sum += tr.Amount.Cents
	}
	if len(got) != 2 || sum != 300 {
		t.Fatalf("expected Feb 1 and Feb 29 only, got %+v", got)
	}
}

func testBudgetCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	b, err := s.CreateBudget(ctx, core.Budget{Category: "Food", Amount: core.Money{Cents: 50000}, Month: "2024-03"})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if _, err := s.CreateBudget(ctx, core.Budget{Category: "Rent", Amount: core.Money{Cents: 100000}, Month: "2024-04"}); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	march, err := s.ListBudgets(ctx, "2024-03")
	if err != nil || len(march) != 1 || march[0].ID != b.ID {
		t.Fatalf("ListBudgets(2024-03) = %+v, %v", march, err)
	}
	all, _ := s.ListBudgets(ctx, "")
	if len(all) != 2 {
		t.Fatalf("ListBudgets(all) returned %d budgets", len(all))
	}

	b.Amount = core.Money{Cents: 60000}
	if _, err := s.UpdateBudget(ctx, b); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	found, err := s.FindBudget(ctx, "Food", "2024-03")
	if err != nil || found == nil || found.Amount.Cents != 60000 {
		t.Fatalf("FindBudget after update = %+v, %v", found, err)
	}

	if err := s.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	found, err = s.FindBudget(ctx, "Food", "2024-03")
	if err != nil || found != nil {
		t.Fatalf("expected no budget after delete, got %+v, %v", found, err)
	}
	if err := s.DeleteBudget(ctx, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdateBudget(ctx, b); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testFindBudgetFirstMatch(t *testing.T, s store.Store) {
	ctx := context.Background()
	first, _ := s.CreateBudget(ctx, core.Budget{Category: "Food", Amount: core.Money{Cents: 100}, Month: "2024-03"})
	if _, err := s.CreateBudget(ctx, core.Budget{Category: "Food", Amount: core.Money{Cents: 999}, Month: "2024-03"}); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	got, err := s.FindBudget(ctx, "Food", "2024-03")
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("expected first budget %d, got %+v, %v", first.ID, got, err)
	}
	none, err := s.FindBudget(ctx, "Food", "2024-04")
	if err != nil || none != nil {
		t.Fatalf("expected nil budget, got %+v, %v", none, err)
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, err := s.CreateUser(ctx, core.User{Username: "alice", PasswordHash: "hash"})
	if err != nil || u.ID == 0 {
		t.Fatalf("CreateUser = %+v, %v", u, err)
	}
	if _, err := s.CreateUser(ctx, core.User{Username: "alice", PasswordHash: "other"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || got.PasswordHash != "hash" || got.ID != u.ID {
		t.Fatalf("GetUserByUsername = %+v, %v", got, err)
	}
	if _, err := s.GetUserByUsername(ctx, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testSyncTracking(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := mustCreate(t, s, tx(core.Expense, 100, "Food", 2024, 3, 1))
	b := mustCreate(t, s, tx(core.Income, 200, "Salary", 2024, 3, 2))
	c := mustCreate(t, s, tx(core.Expense, 300, "Rent", 2024, 3, 3))

	pending, err := s.PendingSync(ctx, 10)
	if err != nil || len(pending) != 3 || pending[0].ID != a.ID {
		t.Fatalf("PendingSync = %+v, %v", pending, err)
	}

	if err := s.MarkSynced(ctx, a.ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := s.MarkSyncError(ctx, b.ID); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}
	pending, _ = s.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].ID != c.ID {
		t.Fatalf("expected only %d pending, got %+v", c.ID, pending)
	}

	// editing a synced row queues it again
	if _, err := s.UpdateTransaction(ctx, a); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, _ = s.PendingSync(ctx, 1)
	if len(pending) != 1 || pending[0].ID != a.ID {
		t.Fatalf("expected %d first after edit, got %+v", a.ID, pending)
	}
}
