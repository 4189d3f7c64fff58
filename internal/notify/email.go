// Package notify delivers budget alerts by e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/log"
)

// Notifier delivers a single budget alert.
type Notifier interface {
	NotifyBudgetExceeded(ctx context.Context, alert *amqp.BudgetAlertMessage) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Sender sends alert mails through an SMTP relay.
type Sender struct {
	cfg    SMTPConfig
	logger *log.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

var _ Notifier = (*Sender)(nil)

func NewSender(cfg SMTPConfig, logger *log.Logger) *Sender {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Sender{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentNotify),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *Sender) NotifyBudgetExceeded(ctx context.Context, alert *amqp.BudgetAlertMessage) error {
	if len(s.cfg.To) == 0 {
		return errors.New("no alert recipients configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := budgetAlertEmail(s.cfg.From, s.cfg.To, alert)

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send budget alert",
			log.FieldCategory, alert.Category, log.FieldMonth, alert.Month, log.FieldError, err)
		return fmt.Errorf("send budget alert: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget alert sent",
		log.FieldCategory, alert.Category, log.FieldMonth, alert.Month, "recipients", len(s.cfg.To))
	return nil
}

func budgetAlertEmail(from string, to []string, alert *amqp.BudgetAlertMessage) *email.Email {
	budget := core.Money{Cents: alert.BudgetCents}
	spent := core.Money{Cents: alert.SpentCents}
	overage := core.Money{Cents: alert.OverageCents}

	e := email.NewEmail()
	e.From = from
	e.To = append([]string(nil), to...)
	e.Subject = fmt.Sprintf("Budget exceeded: %s (%s)", alert.Category, alert.Month)
	e.Text = []byte(fmt.Sprintf(
		"Spending in '%s' for %s is over budget.\n\n"+
			"Budget:  %s\n"+
			"Spent:   %s\n"+
			"Overage: %s\n",
		alert.Category, alert.Month, budget, spent, overage,
	))
	return e
}
