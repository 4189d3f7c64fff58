package services

import (
	"context"
	"fmt"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store"
)

// TransactionRepository is what TransactionService reads and writes.
type TransactionRepository interface {
	store.TransactionReader
	store.TransactionWriter
	FindBudget(ctx context.Context, category, month string) (*core.Budget, error)
}

// SaveResult reports a stored transaction and the advisory budget outcome.
type SaveResult struct {
	Transaction core.Transaction
	Outcome     core.Outcome
	// Warning is empty unless the budget was exceeded.
	Warning string
}

// TransactionService saves transactions, checks them against the month's
// budget and hands them to the export pipeline.
type TransactionService struct {
	repo      TransactionRepository
	publisher amqp.Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewTransactionService accepts a nil publisher when messaging is disabled.
func NewTransactionService(repo TransactionRepository, publisher amqp.Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentTransaction)
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	txns, err := s.repo.ListTransactions(ctx, store.TransactionQuery{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Create stores a new transaction. The budget check runs after the write so
// the new expense is part of the month's total.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (SaveResult, error) {
	if err := t.Validate(); err != nil {
		return SaveResult{}, err
	}
	saved, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return SaveResult{}, fmt.Errorf("save transaction: %w", err)
	}
	s.events.LogTransactionSaved(ctx, log.OpCreate, saved.ID, string(saved.Type), saved.Category, saved.Amount.Cents)
	return s.afterSave(ctx, saved), nil
}

// Update replaces an existing transaction. Expenses are evaluated against
// their (possibly new) category and month exactly like a create.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (SaveResult, error) {
	if err := t.Validate(); err != nil {
		return SaveResult{}, err
	}
	saved, err := s.repo.UpdateTransaction(ctx, t)
	if err != nil {
		return SaveResult{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	s.events.LogTransactionSaved(ctx, log.OpUpdate, saved.ID, string(saved.Type), saved.Category, saved.Amount.Cents)
	return s.afterSave(ctx, saved), nil
}

// Delete removes a transaction. Deleting can only lower spending, so no
// budget check runs.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTxID, id)
	return nil
}

func (s *TransactionService) afterSave(ctx context.Context, saved core.Transaction) SaveResult {
	res := SaveResult{Transaction: saved}

	if saved.IsExpense() {
		outcome, budget, err := s.evaluate(ctx, saved)
		if err != nil {
			// the write already happened; the warning is advisory
			s.logger.ErrorContext(ctx, "Budget evaluation failed",
				log.FieldTxID, saved.ID, log.FieldCategory, saved.Category, log.FieldError, err)
		} else if outcome.Exceeded {
			res.Outcome = outcome
			res.Warning = outcome.Warning(saved.Category)
			s.events.LogBudgetExceeded(ctx, saved.Category, budget.Month, outcome.Overage.String())
			s.publishAlert(ctx, budget, outcome)
		}
	}

	s.publishSync(ctx, saved.ID)
	return res
}

func (s *TransactionService) evaluate(ctx context.Context, t core.Transaction) (core.Outcome, *core.Budget, error) {
	month := t.Date.MonthKey()
	budget, err := s.repo.FindBudget(ctx, t.Category, month)
	if err != nil {
		return core.Outcome{}, nil, fmt.Errorf("find budget: %w", err)
	}
	if budget == nil {
		return core.Outcome{}, nil, nil
	}

	q, err := store.MonthExpenses(t.Category, month)
	if err != nil {
		return core.Outcome{}, nil, err
	}
	expenses, err := s.repo.ListTransactions(ctx, q)
	if err != nil {
		return core.Outcome{}, nil, fmt.Errorf("list month expenses: %w", err)
	}

	return core.EvaluateBudget(t, budget, expenses), budget, nil
}

func (s *TransactionService) publishAlert(ctx context.Context, b *core.Budget, o core.Outcome) {
	if s.publisher == nil {
		return
	}
	spent := b.Amount.Add(o.Overage)
	msg := amqp.NewBudgetAlertMessage(b.Category, b.Month, b.Amount.Cents, spent.Cents)
	if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish budget alert",
			log.FieldCategory, b.Category, log.FieldMonth, b.Month, log.FieldError, err)
	}
}

func (s *TransactionService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping sync message", log.FieldTxID, id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message", log.FieldTxID, id, log.FieldError, err)
	}
}
