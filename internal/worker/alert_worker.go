package worker

import (
	"context"
	"fmt"

	"tracker/internal/amqp"
	"tracker/internal/log"
	"tracker/internal/notify"
)

// AlertWorker turns queued budget alerts into notifications.
type AlertWorker struct {
	notifier notify.Notifier
	logger   *log.Logger
}

func NewAlertWorker(n notify.Notifier, logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AlertWorker{notifier: n, logger: logger.WithComponent(log.ComponentWorker)}
}

func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if w.notifier == nil {
		// no mailer configured: the alert is only logged
		w.logger.WarnContext(ctx, "Budget exceeded",
			log.FieldCategory, msg.Category, log.FieldMonth, msg.Month, log.FieldOverage, msg.OverageCents)
		return nil
	}
	if err := w.notifier.NotifyBudgetExceeded(ctx, msg); err != nil {
		return fmt.Errorf("notify budget exceeded: %w", err)
	}
	return nil
}

// PublishBudgetAlert lets the budget monitor deliver alerts in-process when
// no broker is configured.
func (w *AlertWorker) PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	return w.HandleAlert(ctx, msg)
}
