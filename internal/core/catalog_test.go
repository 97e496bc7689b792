package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewCatalogRejectsDuplicatesAndBlanks(t *testing.T) {
	if _, err := NewCatalog(Category{Key: "a", Name: "A"}, Category{Key: "b", Name: " A "}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := NewCatalog(Category{Key: "a", Name: " "}); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() != 6 {
		t.Fatalf("len = %d", c.Len())
	}
	cat, ok := c.Lookup("Alimentação")
	if !ok || cat.Key != "food" || cat.Color != "#FF872C" {
		t.Fatalf("lookup = %+v %v", cat, ok)
	}

	// Callers get a copy.
	cats := c.Categories()
	cats[0].Name = "changed"
	if c.Categories()[0].Name != "Compras" {
		t.Fatal("catalog mutated through Categories()")
	}
}

func TestFormatListing(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Name: "Mercado", Amount: "1234.5", Type: Expense, Category: "Alimentação", Date: day(2024, time.January, 5)},
		{ID: "2", Name: "Legado", Amount: "??", Type: Income, Category: "Outros", Date: day(2024, time.January, 6)},
	}
	got := FormatListing(txs, DefaultCatalog(), time.UTC)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Amount != "R$\u00a01.234,50" || got[0].Date != "05/01/24" || got[0].Category.Key != "food" {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].Amount != "??" || got[1].Category.Name != "Outros" || got[1].Category.Color != "" {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}
