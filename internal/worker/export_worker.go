package worker

import (
	"context"
	"errors"
	"fmt"

	"gofinance/internal/amqp"
	"gofinance/internal/core"
	"gofinance/internal/log"
	"gofinance/internal/repository"
	"gofinance/internal/sheets"
)

// TransactionFinder is satisfied by repository.TransactionRepository.
type TransactionFinder interface {
	Find(ctx context.Context, userID, id string) (core.Transaction, error)
}

// ExportWorker copies announced transactions to the external ledger.
type ExportWorker struct {
	finder   TransactionFinder
	exporter sheets.TransactionExporter
	logger   *log.Logger
}

func NewExportWorker(finder TransactionFinder, exporter sheets.TransactionExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		finder:   finder,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCreated exports the announced transaction. A transaction that no
// longer exists is acknowledged with a warning since retrying cannot help;
// any other failure is returned so the message is requeued.
func (w *ExportWorker) HandleCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	fields := log.NewFields().WithUser(msg.UserID).WithOperation(log.OpExport)
	fields[log.FieldTransactionID] = msg.TransactionID

	tx, err := w.finder.Find(ctx, msg.UserID, msg.TransactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		w.logger.WarnContext(ctx, "Announced transaction not found, skipping export", fields.ToSlice()...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find transaction: %w", err)
	}

	ref, err := w.exporter.AppendTransaction(ctx, msg.UserID, tx)
	if err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	w.logger.InfoContext(ctx, "Transaction exported", append(fields.ToSlice(), "row", ref)...)
	return nil
}
