package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store"
)

type BudgetRepository interface {
	store.BudgetStore
	ListTransactions(ctx context.Context, q store.TransactionQuery) ([]core.Transaction, error)
}

type BudgetService struct {
	repo   BudgetRepository
	logger *log.Logger
}

func NewBudgetService(repo BudgetRepository, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &BudgetService{repo: repo, logger: logger.WithComponent(log.ComponentBudget)}
}

// List returns the budgets of a YYYY-MM month.
func (s *BudgetService) List(ctx context.Context, month string) ([]core.Budget, error) {
	if _, err := core.ParseMonth(month); err != nil {
		return nil, err
	}
	budgets, err := s.repo.ListBudgets(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.repo.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget created", log.NewFields().
		WithOperation(log.OpCreate).
		WithBudget(saved.ID, saved.Category, saved.Month).
		ToSlice()...)
	return saved, nil
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.repo.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	s.logger.InfoContext(ctx, "Budget updated", log.NewFields().
		WithOperation(log.OpUpdate).
		WithBudget(saved.ID, saved.Category, saved.Month).
		ToSlice()...)
	return saved, nil
}

func (s *BudgetService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Budget deleted", log.FieldBudgetID, id)
	return nil
}

// Progress reports spending against every budget of the month. Budgets and
// expenses are fetched concurrently.
func (s *BudgetService) Progress(ctx context.Context, month string) ([]core.BudgetStatus, error) {
	first, last, err := core.MonthSpan(month)
	if err != nil {
		return nil, err
	}

	var (
		budgets  []core.Budget
		expenses []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.repo.ListBudgets(gctx, month)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.ListTransactions(gctx, store.TransactionQuery{Type: core.Expense, From: &first, To: &last})
		if err != nil {
			return fmt.Errorf("list month expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return core.BudgetProgress(budgets, expenses), nil
}
