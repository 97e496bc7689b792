package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "positive"
	Expense TransactionType = "negative"
)

type (
	TransactionType string

	// Amount is the raw numeric string persisted with a transaction. The sign is
	// carried by the transaction type, never by the value.
	Amount string

	Transaction struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Amount   Amount          `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"` // Catalog name, not validated
		Date     time.Time       `json:"date"`
	}

	// NewTransaction is the user input for a transaction that does not exist yet.
	NewTransaction struct {
		Name     string `json:"name"`
		Amount   string `json:"amount"`
		Type     string `json:"type"`
		Category string `json:"category"`
	}
)

var (
	ErrMalformedAmount   = errors.New("malformed amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrEmptyName         = errors.New("empty name")
	ErrNameTooLong       = errors.New("name too long (max 200 characters)")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidMonth      = errors.New("invalid month")
)

// ParseTransactionType accepts the persisted values and their plain aliases.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "income":
		return Income, nil
	case "negative", "expense":
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Decimal parses the stored amount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return ParseAmount(string(a))
}

// UnmarshalJSON accepts both a JSON string and a bare JSON number, since older
// collections were written with numeric amounts.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*a = ""
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	default:
		*a = Amount(raw)
		return nil
	}
}

// Validate checks user input before a record is created.
func (n NewTransaction) Validate() error {
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > 200 {
		return ErrNameTooLong
	}
	amount, err := ParseAmount(n.Amount)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if _, err := ParseTransactionType(n.Type); err != nil {
		return err
	}
	if strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Record validates the input and builds the immutable transaction.
func (n NewTransaction) Record(id string, at time.Time) (Transaction, error) {
	if err := n.Validate(); err != nil {
		return Transaction{}, err
	}
	amount, _ := ParseAmount(n.Amount)
	typ, _ := ParseTransactionType(n.Type)
	return Transaction{
		ID:       id,
		Name:     strings.TrimSpace(n.Name),
		Amount:   Amount(amount.String()),
		Type:     typ,
		Category: strings.TrimSpace(n.Category),
		Date:     at,
	}, nil
}
