package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is one slice of the monthly expense chart.
type CategoryTotal struct {
	Key            string          `json:"key"`
	Name           string          `json:"name"`
	Color          string          `json:"color"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"totalFormatted"`
	Percent        string          `json:"percent"`
}

// Breakdown is the monthly resume: the catalog-ordered entries plus the total
// they are measured against.
type Breakdown struct {
	Period         Period          `json:"period"`
	Label          string          `json:"label"`
	ExpensesTotal  decimal.Decimal `json:"expensesTotal"`
	TotalFormatted string          `json:"totalFormatted"`
	Categories     []CategoryTotal `json:"categories"`
}

// ComputeBreakdown sums the expenses of one month per catalog category.
//
// Entries follow catalog order and only categories with a positive subtotal
// are emitted. Percentages are relative to every expense of the month,
// including expenses whose category is not in the catalog. Malformed amounts
// are ignored. The result is never nil.
func ComputeBreakdown(txs []Transaction, period Period, catalog Catalog, loc *time.Location) Breakdown {
	var total decimal.Decimal
	sums := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if tx.Type != Expense || !period.Contains(tx.Date, loc) {
			continue
		}
		amount, err := tx.Amount.Decimal()
		if err != nil {
			continue
		}
		total = total.Add(amount)
		sums[tx.Category] = sums[tx.Category].Add(amount)
	}

	out := make([]CategoryTotal, 0, catalog.Len())
	for _, c := range catalog.categories {
		sum := sums[c.Name]
		if !sum.IsPositive() {
			continue
		}
		out = append(out, CategoryTotal{
			Key:            c.Key,
			Name:           c.Name,
			Color:          c.Color,
			Total:          sum,
			TotalFormatted: FormatBRL(sum),
			Percent:        FormatPercent(sum, total),
		})
	}

	return Breakdown{
		Period:         period,
		Label:          period.Label(),
		ExpensesTotal:  total,
		TotalFormatted: FormatBRL(total),
		Categories:     out,
	}
}
