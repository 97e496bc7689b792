package sheets

import (
	"context"

	"gofinance/internal/core"
)

// TransactionExporter mirrors registered transactions into an external ledger.
type TransactionExporter interface {
	// AppendTransaction returns a reference to the written row.
	AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (rowRef string, err error)
}
