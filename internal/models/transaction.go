package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates the kinds of cash transactions.
type TransactionType string

const (
	TxnIncome     TransactionType = "income"
	TxnExpense    TransactionType = "expense"
	TxnTransfer   TransactionType = "transfer"
	TxnInvestment TransactionType = "investment"
	TxnDividend   TransactionType = "dividend"
	TxnInterest   TransactionType = "interest"
	TxnFee        TransactionType = "fee"
	TxnAdjustment TransactionType = "adjustment"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TxnIncome, TxnExpense, TxnTransfer, TxnInvestment,
		TxnDividend, TxnInterest, TxnFee, TxnAdjustment:
		return true
	}
	return false
}

// Transaction is a single cash ledger entry on an account. The amount is
// signed: positive for money in, negative for money out.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Payee       string          `json:"payee,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Tags        string          `json:"tags,omitempty"`
	IsRecurring bool            `json:"isRecurring"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// IsIncome reports whether the transaction adds money to the account.
func (t Transaction) IsIncome() bool {
	return t.Amount.Sign() > 0
}

// TagList splits the comma-separated tags field.
func (t Transaction) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	parts := strings.Split(t.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
