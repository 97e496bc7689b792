package core

import "time"

// ListedTransaction is a transaction prepared for display.
type ListedTransaction struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	Category Category        `json:"category"`
	Amount   string          `json:"amount"`
	Date     string          `json:"date"`
}

// FormatListing keeps collection order. Categories missing from the catalog
// are listed with their bare name; malformed amounts keep their raw text.
func FormatListing(txs []Transaction, catalog Catalog, loc *time.Location) []ListedTransaction {
	out := make([]ListedTransaction, 0, len(txs))
	for _, tx := range txs {
		amount := string(tx.Amount)
		if d, err := tx.Amount.Decimal(); err == nil {
			amount = FormatBRL(d)
		}
		cat, ok := catalog.Lookup(tx.Category)
		if !ok {
			cat = Category{Name: tx.Category}
		}
		out = append(out, ListedTransaction{
			ID:       tx.ID,
			Name:     tx.Name,
			Type:     tx.Type,
			Category: cat,
			Amount:   amount,
			Date:     FormatShortDate(tx.Date, loc),
		})
	}
	return out
}
