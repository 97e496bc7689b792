package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"gofinance/internal/amqp"
	"gofinance/internal/core"
	"gofinance/internal/kv/memory"
	"gofinance/internal/repository"
)

type fakeExporter struct {
	rows []core.Transaction
	err  error
}

func (f *fakeExporter) AppendTransaction(_ context.Context, _ string, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, tx)
	return "'2024 Transações'!A2:G2", nil
}

type failingFinder struct{}

func (failingFinder) Find(context.Context, string, string) (core.Transaction, error) {
	return core.Transaction{}, errors.New("storage unavailable")
}

func seededRepo(t *testing.T) *repository.TransactionRepository {
	t.Helper()
	repo := repository.NewTransactionRepository(memory.New(), "")
	tx := core.Transaction{ID: "tx-1", Name: "Mercado", Amount: "40", Type: core.Expense, Category: "Alimentação", Date: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	if err := repo.Append(context.Background(), "u1", tx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func TestHandleCreated(t *testing.T) {
	tests := []struct {
		name      string
		finder    TransactionFinder
		exportErr error
		msg       *amqp.TransactionCreatedMessage
		wantErr   bool
		wantRows  int
	}{
		{
			name:     "exports existing transaction",
			msg:      &amqp.TransactionCreatedMessage{UserID: "u1", TransactionID: "tx-1"},
			wantRows: 1,
		},
		{
			name: "missing transaction is acknowledged",
			msg:  &amqp.TransactionCreatedMessage{UserID: "u1", TransactionID: "gone"},
		},
		{
			name:    "storage failure is retried",
			finder:  failingFinder{},
			msg:     &amqp.TransactionCreatedMessage{UserID: "u1", TransactionID: "tx-1"},
			wantErr: true,
		},
		{
			name:      "export failure is retried",
			exportErr: errors.New("quota exceeded"),
			msg:       &amqp.TransactionCreatedMessage{UserID: "u1", TransactionID: "tx-1"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := tt.finder
			if finder == nil {
				finder = seededRepo(t)
			}
			exp := &fakeExporter{err: tt.exportErr}
			w := NewExportWorker(finder, exp, nil)

			err := w.HandleCreated(context.Background(), tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleCreated() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(exp.rows) != tt.wantRows {
				t.Fatalf("exported %d rows, want %d", len(exp.rows), tt.wantRows)
			}
			if tt.wantRows == 1 && exp.rows[0].Name != "Mercado" {
				t.Fatalf("exported %+v", exp.rows[0])
			}
		})
	}
}
