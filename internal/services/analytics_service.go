package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store"
)

// Dashboard is the summary view plus the current month's budget progress.
type Dashboard struct {
	core.Summary
	Month   string              `json:"month"`
	Budgets []core.BudgetStatus `json:"budgets"`
}

// AnalyticsService computes reports over the full transaction history. Results
// are recomputed on every call.
type AnalyticsService struct {
	reader  store.TransactionReader
	budgets *BudgetService
	now     func() time.Time
	logger  *log.Logger
}

func NewAnalyticsService(reader store.TransactionReader, budgets *BudgetService, logger *log.Logger) *AnalyticsService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AnalyticsService{
		reader:  reader,
		budgets: budgets,
		now:     time.Now,
		logger:  logger.WithComponent(log.ComponentAnalytics),
	}
}

func (s *AnalyticsService) all(ctx context.Context) ([]core.Transaction, error) {
	txns, err := s.reader.ListTransactions(ctx, store.TransactionQuery{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *AnalyticsService) Analytics(ctx context.Context) (core.Analytics, error) {
	txns, err := s.all(ctx)
	if err != nil {
		return core.Analytics{}, err
	}
	a := core.Aggregate(txns)
	s.logger.DebugContext(ctx, "Analytics computed",
		log.FieldOperation, log.OpAggregate, "transactions", len(txns), "months", len(a.Monthly))
	return a, nil
}

func (s *AnalyticsService) Summary(ctx context.Context) (core.Summary, error) {
	txns, err := s.all(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txns), nil
}

// Dashboard loads the summary and this month's budget progress concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context) (Dashboard, error) {
	month := core.Date{Time: s.now()}.MonthKey()
	d := Dashboard{Month: month, Budgets: []core.BudgetStatus{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.Summary(gctx)
		d.Summary = sum
		return err
	})
	if s.budgets != nil {
		g.Go(func() error {
			progress, err := s.budgets.Progress(gctx, month)
			if err != nil {
				return err
			}
			d.Budgets = progress
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// Search applies the filter to every transaction, newest first.
func (s *AnalyticsService) Search(ctx context.Context, in core.FilterInput) ([]core.Transaction, error) {
	txns, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := core.ParseFilter(in).Apply(txns)
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

func (s *AnalyticsService) Categories(ctx context.Context) ([]string, error) {
	txns, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return core.Categories(txns), nil
}
