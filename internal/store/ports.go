// Package store declares the persistence ports the services depend on.
package store

import (
	"context"
	"errors"

	"tracker/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// TransactionQuery narrows a transaction listing. Zero fields are ignored;
// From and To are inclusive.
type TransactionQuery struct {
	Type     core.TxType
	Category string // exact match
	From     *core.Date
	To       *core.Date
}

// MonthExpenses builds the query used by the budget evaluator: every expense
// of one category between the first and last day of a month.
func MonthExpenses(category, month string) (TransactionQuery, error) {
	first, last, err := core.MonthSpan(month)
	if err != nil {
		return TransactionQuery{}, err
	}
	return TransactionQuery{Type: core.Expense, Category: category, From: &first, To: &last}, nil
}

// Ports for outbound adapters.
type (
	// TransactionReader lists transactions ordered by date descending, newest
	// id first within a day.
	TransactionReader interface {
		ListTransactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	// BudgetStore persists budgets. FindBudget returns the budget created
	// first when several match, and nil when none does.
	BudgetStore interface {
		FindBudget(ctx context.Context, category, month string) (*core.Budget, error)
		// ListBudgets returns the budgets of a month, or every budget when
		// month is empty, in creation order.
		ListBudgets(ctx context.Context, month string) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, id int64) error
	}

	// UserStore persists accounts. CreateUser returns ErrConflict for a
	// username that is already taken.
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
	}

	// SyncTracker records whether transactions reached the spreadsheet export.
	// Created and edited transactions start out pending.
	SyncTracker interface {
		PendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkSynced(ctx context.Context, id int64) error
		MarkSyncError(ctx context.Context, id int64) error
	}

	Store interface {
		TransactionReader
		TransactionWriter
		BudgetStore
		UserStore
		SyncTracker
		Ping(ctx context.Context) error
		Close() error
	}
)

// Matches reports whether a transaction satisfies the query.
func (q TransactionQuery) Matches(t core.Transaction) bool {
	if q.Type != "" && t.Type != q.Type {
		return false
	}
	if q.Category != "" && t.Category != q.Category {
		return false
	}
	if q.From != nil && t.Date.Before(*q.From) {
		return false
	}
	if q.To != nil && t.Date.After(*q.To) {
		return false
	}
	return true
}
