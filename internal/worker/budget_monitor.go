package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store"
)

// MonitorStore is the read side the budget monitor needs.
type MonitorStore interface {
	ListBudgets(ctx context.Context, month string) ([]core.Budget, error)
	ListTransactions(ctx context.Context, q store.TransactionQuery) ([]core.Transaction, error)
}

// AlertPublisher queues budget alerts.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// BudgetMonitor periodically checks the current month's budgets and queues an
// alert for every one that is over.
type BudgetMonitor struct {
	store     MonitorStore
	publisher AlertPublisher
	now       func() time.Time
	timeout   time.Duration
	logger    *log.Logger
	cron      *cron.Cron
}

func NewBudgetMonitor(s MonitorStore, p AlertPublisher, logger *log.Logger) *BudgetMonitor {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &BudgetMonitor{
		store:     s,
		publisher: p,
		now:       time.Now,
		timeout:   time.Minute,
		logger:    logger.WithComponent(log.ComponentScheduler),
	}
}

// Check evaluates the budgets of the current month and returns how many
// alerts were published.
func (m *BudgetMonitor) Check(ctx context.Context) (int, error) {
	month := core.Date{Time: m.now()}.MonthKey()
	first, last, err := core.MonthSpan(month)
	if err != nil {
		return 0, err
	}

	budgets, err := m.store.ListBudgets(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return 0, nil
	}

	expenses, err := m.store.ListTransactions(ctx, store.TransactionQuery{Type: core.Expense, From: &first, To: &last})
	if err != nil {
		return 0, fmt.Errorf("list month expenses: %w", err)
	}

	published := 0
	for _, st := range core.BudgetProgress(budgets, expenses) {
		if !st.Exceeded {
			continue
		}
		msg := amqp.NewBudgetAlertMessage(st.Budget.Category, st.Budget.Month, st.Budget.Amount.Cents, st.Spent.Cents)
		if err := m.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			m.logger.ErrorContext(ctx, "Failed to publish budget alert",
				log.FieldCategory, st.Budget.Category, log.FieldMonth, month, log.FieldError, err)
			continue
		}
		published++
	}

	m.logger.InfoContext(ctx, "Budget check completed",
		log.FieldMonth, month, "budgets", len(budgets), "alerts", published)
	return published, nil
}

// Start schedules Check on a standard five-field cron expression.
func (m *BudgetMonitor) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if _, err := m.Check(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Budget check failed", log.FieldError, err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule budget check: %w", err)
	}
	m.cron = c
	c.Start()
	m.logger.Info("Budget monitor scheduled", "schedule", schedule)
	return nil
}

// Stop waits for a running check to finish.
func (m *BudgetMonitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}
