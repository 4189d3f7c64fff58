package sheets

import (
	"context"

	"tracker/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter appends a transaction row to the external ledger.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
