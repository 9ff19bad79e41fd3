// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType values recorded by importers.
const (
	TypeExpense  = "expense"
	TypeIncome   = "income"
	TypeDividend = "dividend"
	TypeTransfer = "transfer"
	TypeBuy      = "buy"
	TypeSell     = "sell"
)

// Transaction is a single posted record from any source. Amounts are signed:
// money leaving an account is negative.
type Transaction struct {
	Date     time.Time
	PostedAt *time.Time // Time of day, when the source provides it

	ID           string
	AccountID    string
	Hash         string
	Name         string // Raw transaction description
	MerchantName string // Cleaned merchant name
	Type         string

	// Category hints from the source
	ExpenseCategory  string
	PrimaryCategory  string
	DetailedCategory string
	IncomeType       string

	Ticker   string
	Quantity float64
	Amount   float64

	IsExpense bool
	IsIncome  bool
	IsPending bool
}

// GenerateHash creates a unique hash for duplicate detection. The
// institution's transaction ID is part of the hash when set, so two
// identical purchases on the same day remain distinct.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	if t.ID != "" {
		data += ":" + t.ID
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Merchant returns the merchant name, falling back to the raw description.
func (t *Transaction) Merchant() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Name
}

// Category returns the expense category, falling back to the primary category.
func (t *Transaction) Category() string {
	if t.ExpenseCategory != "" {
		return t.ExpenseCategory
	}
	return t.PrimaryCategory
}

// Magnitude returns the unsigned amount.
func (t *Transaction) Magnitude() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
