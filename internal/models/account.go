package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates the supported kinds of financial accounts.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountBrokerage  AccountType = "brokerage"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountOther      AccountType = "other"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountBrokerage, AccountCreditCard,
		AccountCash, AccountInvestment, AccountLoan, AccountOther:
		return true
	}
	return false
}

// Account represents a financial account such as a checking or brokerage account.
type Account struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	Institution string          `json:"institution,omitempty"`
	Number      string          `json:"number,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DisplayName returns the account name with the institution appended when known.
func (a Account) DisplayName() string {
	if a.Institution != "" {
		return a.Name + " (" + a.Institution + ")"
	}
	return a.Name
}
