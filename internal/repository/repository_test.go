package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gofinance/internal/core"
	"gofinance/internal/kv"
	"gofinance/internal/kv/memory"
)

func TestKeys(t *testing.T) {
	if got := TransactionsKey("@gofinance", "42"); got != "@gofinance:transactions_user:42" {
		t.Fatalf("TransactionsKey = %q", got)
	}
	if got := UserKey("@gofinance", "42"); got != "@gofinance:user:42" {
		t.Fatalf("UserKey = %q", got)
	}
}

func TestLoadAbsentIsEmpty(t *testing.T) {
	repo := NewTransactionRepository(memory.New(), "")
	txs, err := repo.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if txs == nil || len(txs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", txs)
	}
}

func TestAppendKeepsOrderAndFind(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := NewTransactionRepository(store, "@gofinance")

	base := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		tx := core.Transaction{ID: fmt.Sprint(i), Name: "t", Amount: "10", Type: core.Income, Category: "Salário", Date: base.AddDate(0, 0, i)}
		if err := repo.Append(ctx, "u1", tx); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	txs, err := repo.Load(ctx, "u1")
	if err != nil || len(txs) != 3 {
		t.Fatalf("load: %d %v", len(txs), err)
	}
	for i, tx := range txs {
		if tx.ID != fmt.Sprint(i+1) {
			t.Fatalf("position %d holds %s", i, tx.ID)
		}
	}

	if _, err := store.Get(ctx, "@gofinance:transactions_user:u1"); err != nil {
		t.Fatalf("collection not stored under the expected key: %v", err)
	}

	got, err := repo.Find(ctx, "u1", "2")
	if err != nil || got.ID != "2" {
		t.Fatalf("find: %+v %v", got, err)
	}
	if _, err := repo.Find(ctx, "u1", "nope"); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(memory.New(), "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := core.Transaction{ID: fmt.Sprint(i), Amount: "1", Type: core.Expense, Category: "Lazer"}
			if err := repo.Append(ctx, "u1", tx); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	txs, _ := repo.Load(ctx, "u1")
	if len(txs) != 50 {
		t.Fatalf("expected 50 transactions, got %d", len(txs))
	}
}

func TestLoadLegacyAndCorruptBlobs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := NewTransactionRepository(store, "")

	legacy := `[{"id":"1","name":"Salário","amount":1500,"type":"positive","category":"Salário","date":"2024-01-05T12:00:00.000Z"}]`
	_ = store.Set(ctx, repo.Key("legacy"), []byte(legacy))
	txs, err := repo.Load(ctx, "legacy")
	if err != nil || len(txs) != 1 || txs[0].Amount != "1500" {
		t.Fatalf("legacy blob: %+v %v", txs, err)
	}

	_ = store.Set(ctx, repo.Key("broken"), []byte(`{"not":"a list"}`))
	if _, err := repo.Load(ctx, "broken"); !errors.Is(err, ErrCorruptCollection) {
		t.Fatalf("expected ErrCorruptCollection, got %v", err)
	}
}

func TestSessionSignOutKeepsCollection(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sessions := NewSessionRepository(store, "")
	txs := NewTransactionRepository(store, "")

	if _, err := sessions.Get(ctx, "u1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := sessions.Save(ctx, core.User{ID: "u1", Name: "Ana"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := sessions.Save(ctx, core.User{}); !errors.Is(err, core.ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
	if err := txs.Append(ctx, "u1", core.Transaction{ID: "1", Amount: "5", Type: core.Expense}); err != nil {
		t.Fatalf("append: %v", err)
	}

	u, err := sessions.Get(ctx, "u1")
	if err != nil || u.Name != "Ana" {
		t.Fatalf("get: %+v %v", u, err)
	}

	if err := sessions.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := sessions.Get(ctx, "u1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after sign-out, got %v", err)
	}
	if _, err := store.Get(ctx, UserKey(DefaultNamespace, "u1")); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("profile still stored: %v", err)
	}

	kept, err := txs.Load(ctx, "u1")
	if err != nil || len(kept) != 1 {
		t.Fatalf("collection should survive sign-out: %+v %v", kept, err)
	}
}
