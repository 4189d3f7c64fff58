// Package memory keeps exported rows in process. The worker falls back to it
// when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tracker/internal/core"
	ports "tracker/internal/sheets"
)

type Writer struct {
	mu   sync.Mutex
	rows []core.Transaction
	// FailWith, when set, is returned by every Append.
	FailWith error
}

var _ ports.TransactionWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// Append stores the transaction and returns a synthetic row reference.
func (w *Writer) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.FailWith != nil {
		return "", w.FailWith
	}
	w.rows = append(w.rows, t)
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.Transaction(nil), w.rows...)
}
