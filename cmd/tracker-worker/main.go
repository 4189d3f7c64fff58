package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tracker/internal/amqp"
	"tracker/internal/cli"
	"tracker/internal/config"
	"tracker/internal/log"
	"tracker/internal/notify"
	"tracker/internal/sheets"
	gsheet "tracker/internal/sheets/google"
	"tracker/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting tracker-worker", log.FieldOperation, log.OpStartup)

	store := cli.MustOpenStore(context.Background(), logger, cfg)
	defer store.Cleanup()

	var notifier notify.Notifier
	if cfg.MailEnabled() {
		notifier = notify.NewSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.AlertFrom,
			To:       cfg.AlertRecipients(),
		}, logger)
	} else {
		logger.Info("SMTP disabled, budget alerts will only be logged")
	}
	alerts := worker.NewAlertWorker(notifier, logger)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, cfg.AMQPAlertQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		amqpClient = c
		defer amqpClient.Close()
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	var syncWorker *worker.SyncWorker
	if cfg.SheetsEnabled() {
		writer, err := newSheetsWriter(gctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		syncWorker = worker.NewSyncWorker(store.Store, writer, 10, logger)

		// catch up on transactions saved while the worker was down
		if err := syncWorker.StartupSyncCheck(gctx); err != nil {
			logger.Error("Failed startup sync check", log.FieldError, err)
		}
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	if amqpClient != nil {
		if syncWorker != nil {
			g.Go(func() error {
				return amqpClient.ConsumeTransactionSync(gctx, syncWorker.HandleSyncMessage)
			})
		}
		g.Go(func() error {
			return amqpClient.ConsumeBudgetAlerts(gctx, alerts.HandleAlert)
		})
	}

	// Scheduled checks publish through the broker when there is one so the
	// alert consumer stays the single mail sender.
	var alertSink worker.AlertPublisher = alerts
	if amqpClient != nil {
		alertSink = amqpClient
	}
	monitor := worker.NewBudgetMonitor(store.Store, alertSink, logger)
	if err := monitor.Start(cfg.BudgetCheckSchedule); err != nil {
		logger.Error("Failed to schedule budget checks", log.FieldError, err, "schedule", cfg.BudgetCheckSchedule)
		os.Exit(1)
	}
	defer monitor.Stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer failed", log.FieldError, err)
		monitor.Stop()
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}

func newSheetsWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TransactionWriter, error) {
	return gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
}
