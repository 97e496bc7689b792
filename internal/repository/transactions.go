// Package repository maps users' transaction collections and sign-in
// profiles onto a kv.Store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gofinance/internal/core"
	"gofinance/internal/kv"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCorruptCollection   = errors.New("stored collection is not a transaction list")
)

// TransactionRepository reads and rewrites a user's collection as one blob.
type TransactionRepository struct {
	store     kv.Store
	namespace string
	locks     sync.Map // userID -> *sync.Mutex
}

func NewTransactionRepository(store kv.Store, namespace string) *TransactionRepository {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	return &TransactionRepository{store: store, namespace: namespace}
}

// Key returns the storage key of userID's collection.
func (r *TransactionRepository) Key(userID string) string {
	return TransactionsKey(r.namespace, userID)
}

// Load returns the collection in insertion order. An absent key is an empty
// collection, never an error.
func (r *TransactionRepository) Load(ctx context.Context, userID string) ([]core.Transaction, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}
	raw, err := r.store.Get(ctx, r.Key(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return decodeCollection(raw)
}

// Append adds tx at the end of the collection and rewrites it. Appends for the
// same user are serialised within this process.
func (r *TransactionRepository) Append(ctx context.Context, userID string, tx core.Transaction) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}
	mu := r.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	txs, err := r.Load(ctx, userID)
	if err != nil {
		return err
	}
	txs = append(txs, tx)

	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := r.store.Set(ctx, r.Key(userID), raw); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// Find returns the transaction with the given id.
func (r *TransactionRepository) Find(ctx context.Context, userID, id string) (core.Transaction, error) {
	txs, err := r.Load(ctx, userID)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%s for user %s: %w", id, userID, ErrTransactionNotFound)
}

func (r *TransactionRepository) lockFor(userID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func decodeCollection(raw []byte) ([]core.Transaction, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return []core.Transaction{}, nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}
