package worker

import (
	"context"
	"errors"
	"fmt"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/sheets"
	"tracker/internal/store"
)

// SyncStore is the part of the store the sync worker needs.
type SyncStore interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	store.SyncTracker
}

// SyncWorker copies transactions from the store to the spreadsheet export.
type SyncWorker struct {
	store     SyncStore
	sheets    sheets.TransactionWriter
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(s SyncStore, w sheets.TransactionWriter, batchSize int, logger *log.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		store:     s,
		sheets:    w,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
// A transaction deleted before the worker saw it is acknowledged and skipped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message", log.FieldTxID, msg.ID)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction no longer exists, skipping sync", log.FieldTxID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.syncToSheets(ctx, t); err != nil {
		return fmt.Errorf("sync transaction to sheets: %w", err)
	}
	return nil
}

// StartupSyncCheck exports whatever is still pending, to recover from missed
// AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		w.logger.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	w.logger.InfoContext(ctx, "Found pending transactions on startup, processing...", "count", len(pending))

	successCount := 0
	errorCount := 0
	for _, t := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.syncToSheets(ctx, t); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync transaction during startup", log.FieldTxID, t.ID, log.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *SyncWorker) syncToSheets(ctx context.Context, t core.Transaction) error {
	ref, err := w.sheets.Append(ctx, t)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, t.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", log.FieldTxID, t.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// the row is written; a failed status update only means a duplicate later
	if err := w.store.MarkSynced(ctx, t.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", log.FieldTxID, t.ID, log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced transaction",
		log.FieldTxID, t.ID,
		log.FieldSheetsRef, ref,
		log.FieldCategory, t.Category,
		log.FieldAmountCents, t.Amount.Cents)
	return nil
}
