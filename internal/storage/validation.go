package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidHolding     = errors.New("invalid holding")
	ErrInvalidFilter      = errors.New("invalid filter")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.IsExpense && txn.IsIncome {
		return fmt.Errorf("%w: both expense and income", ErrInvalidTransaction)
	}
	return nil
}

// validateAccount validates an account.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	switch account.Type {
	case model.AccountTypeDepository, model.AccountTypeInvestment,
		model.AccountTypeCredit, model.AccountTypeLoan:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, account.Type)
	}
	return nil
}

// validateHolding validates a holding.
func validateHolding(h *model.Holding) error {
	if h == nil {
		return fmt.Errorf("%w: holding", ErrNilParameter)
	}
	if h.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidHolding)
	}
	if h.AsOf.IsZero() {
		return fmt.Errorf("%w: missing as-of date", ErrInvalidHolding)
	}
	if h.SecurityID == "" && h.Ticker == "" && h.Name == "" {
		return fmt.Errorf("%w: needs a security id, ticker or name", ErrInvalidHolding)
	}
	return nil
}

// validateFilter checks a transaction filter for contradictions.
func validateFilter(f service.TransactionFilter) error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *f.EndDate, *f.StartDate)
	}
	if f.ExpensesOnly && f.IncomeOnly {
		return fmt.Errorf("%w: expenses-only and income-only are exclusive", ErrInvalidFilter)
	}
	if f.Limit < 0 || f.MinAbsAmount < 0 {
		return fmt.Errorf("%w: negative limit or amount", ErrInvalidFilter)
	}
	return nil
}
