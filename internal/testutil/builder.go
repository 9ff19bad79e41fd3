package testutil

import (
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
)

// TransactionBuilder provides a fluent interface for constructing test
// transactions. The zero configuration is a $10 expense on checking.
type TransactionBuilder struct {
	txn model.Transaction
}

// NewTransaction starts a builder for a transaction with the given ID.
func NewTransaction(id string) *TransactionBuilder {
	return &TransactionBuilder{txn: model.Transaction{
		ID:        id,
		AccountID: "checking",
		Date:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Name:      id,
		Type:      model.TypeExpense,
		Amount:    -10,
		IsExpense: true,
	}}
}

// On sets the posting date.
func (b *TransactionBuilder) On(date time.Time) *TransactionBuilder {
	b.txn.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return b
}

// At sets the time of day on the posting date.
func (b *TransactionBuilder) At(hour, minute int) *TransactionBuilder {
	d := b.txn.Date
	t := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
	b.txn.PostedAt = &t
	return b
}

// Merchant sets both the merchant name and the raw description.
func (b *TransactionBuilder) Merchant(name string) *TransactionBuilder {
	b.txn.MerchantName = name
	b.txn.Name = name
	return b
}

// Description sets only the raw description.
func (b *TransactionBuilder) Description(name string) *TransactionBuilder {
	b.txn.Name = name
	return b
}

// Account sets the account ID.
func (b *TransactionBuilder) Account(id string) *TransactionBuilder {
	b.txn.AccountID = id
	return b
}

// Spend records an expense of the given positive amount.
func (b *TransactionBuilder) Spend(amount float64) *TransactionBuilder {
	b.txn.Amount = -amount
	b.txn.Type = model.TypeExpense
	b.txn.IsExpense, b.txn.IsIncome = true, false
	return b
}

// Earn records income of the given amount and type.
func (b *TransactionBuilder) Earn(amount float64, incomeType string) *TransactionBuilder {
	b.txn.Amount = amount
	b.txn.Type = model.TypeIncome
	b.txn.IncomeType = incomeType
	b.txn.IsExpense, b.txn.IsIncome = false, true
	return b
}

// Dividend records a dividend paid on ticker.
func (b *TransactionBuilder) Dividend(amount float64, ticker string, quantity float64) *TransactionBuilder {
	b.Earn(amount, model.TypeDividend)
	b.txn.Type = model.TypeDividend
	b.txn.Ticker = ticker
	b.txn.Quantity = quantity
	return b
}

// Category sets the expense category.
func (b *TransactionBuilder) Category(category string) *TransactionBuilder {
	b.txn.ExpenseCategory = category
	return b
}

// Provider sets the provider's primary and detailed categories.
func (b *TransactionBuilder) Provider(primary, detailed string) *TransactionBuilder {
	b.txn.PrimaryCategory = primary
	b.txn.DetailedCategory = detailed
	return b
}

// Build returns the transaction.
func (b *TransactionBuilder) Build() model.Transaction {
	return b.txn
}
