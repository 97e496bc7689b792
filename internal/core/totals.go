package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoTransactionsLabel replaces the last-transaction label of an empty bucket.
const NoTransactionsLabel = "Não há transações"

// Highlight is one dashboard card: a total and its last-activity label.
type Highlight struct {
	Amount          decimal.Decimal `json:"amount"`
	Formatted       string          `json:"formatted"`
	LastTransaction string          `json:"lastTransaction"`
}

// Totals is the all-time summary of a collection. Skipped counts records that
// were left out because of a malformed amount or an unknown type.
type Totals struct {
	Entries  Highlight `json:"entries"`
	Expenses Highlight `json:"expenses"`
	Total    Highlight `json:"total"`
	Skipped  int       `json:"skipped"`
}

// ComputeTotals sums the collection by type and finds the most recent record
// of each type. It never fails: an empty collection yields zero amounts and
// NoTransactionsLabel everywhere.
func ComputeTotals(txs []Transaction, loc *time.Location) Totals {
	var (
		entries, expenses      decimal.Decimal
		lastEntry, lastExpense time.Time
		hasEntry, hasExpense   bool
		skipped                int
	)

	for _, tx := range txs {
		amount, err := tx.Amount.Decimal()
		if err != nil {
			skipped++
			continue
		}
		switch tx.Type {
		case Income:
			entries = entries.Add(amount)
			if !hasEntry || tx.Date.After(lastEntry) {
				lastEntry = tx.Date
			}
			hasEntry = true
		case Expense:
			expenses = expenses.Add(amount)
			if !hasExpense || tx.Date.After(lastExpense) {
				lastExpense = tx.Date
			}
			hasExpense = true
		default:
			skipped++
		}
	}

	net := entries.Sub(expenses)

	totalLabel := NoTransactionsLabel
	if hasEntry || hasExpense {
		latest := lastEntry
		if !hasEntry || (hasExpense && lastExpense.After(lastEntry)) {
			latest = lastExpense
		}
		totalLabel = "01 a " + FormatDayMonth(latest, loc)
	}

	return Totals{
		Entries: Highlight{
			Amount:          entries,
			Formatted:       FormatBRL(entries),
			LastTransaction: lastLabel("Última entrada dia ", lastEntry, hasEntry, loc),
		},
		Expenses: Highlight{
			Amount:          expenses,
			Formatted:       FormatBRL(expenses),
			LastTransaction: lastLabel("Última saída dia ", lastExpense, hasExpense, loc),
		},
		Total: Highlight{
			Amount:          net,
			Formatted:       FormatBRL(net),
			LastTransaction: totalLabel,
		},
		Skipped: skipped,
	}
}

func lastLabel(prefix string, t time.Time, ok bool, loc *time.Location) string {
	if !ok {
		return NoTransactionsLabel
	}
	return prefix + FormatDayMonth(t, loc)
}
