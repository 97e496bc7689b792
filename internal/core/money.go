// Package core holds the finance domain: transactions, the category catalog and
// the aggregations behind the dashboard and the monthly resume.
//
// This file contains amount parsing and the pt-BR display formatting of money
// and percentages.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxAmountDigits caps the integer part of a parsed amount, keeping single
// entries below one trillion.
const MaxAmountDigits = 12

var (
	ptBR    = message.NewPrinter(language.BrazilianPortuguese)
	hundred = decimal.NewFromInt(100)
)

// ParseAmount converts a decimal string to a decimal value.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Signs, exponents, thousands separators and anything
// that is not a plain non-negative number yield ErrMalformedAmount, as do
// integer parts longer than MaxAmountDigits. Zero is a valid parse; callers
// decide whether it is acceptable.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrMalformedAmount
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) || r > unicode.MaxASCII {
				return decimal.Zero, ErrMalformedAmount
			}
			digits++
		}
	}
	if digits == 0 || len(strings.TrimLeft(parts[0], "0")) > MaxAmountDigits {
		return decimal.Zero, ErrMalformedAmount
	}
	if parts[0] == "" {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	return d, nil
}

// FormatBRL renders an amount as Brazilian currency, e.g. "R$ 1.234,50".
// The symbol is separated by a non-breaking space, matching the platform
// formatters the mobile client uses.
func FormatBRL(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	r = r.Abs()
	whole := r.Truncate(0)
	cents := r.Sub(whole).Mul(hundred).IntPart()
	return sign + "R$\u00a0" + formatWhole(whole) + "," + fmt.Sprintf("%02d", cents)
}

// formatWhole groups the digits of a non-negative integer with dots. Totals
// past int64 are grouped from their decimal string.
func formatWhole(whole decimal.Decimal) string {
	if b := whole.BigInt(); b.IsInt64() {
		return ptBR.Sprintf("%d", b.Int64())
	}
	s := whole.String()
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FormatPercent returns part/total as a percentage with two decimals and a
// trailing "%". A zero or negative total yields "0.00%".
func FormatPercent(part, total decimal.Decimal) string {
	return Percent(part, total).StringFixed(2) + "%"
}

// Percent returns part/total*100, or zero when total is not positive.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}
