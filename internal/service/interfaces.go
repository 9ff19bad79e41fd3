// Package service defines the interfaces the query core consumes from its
// collaborators, and the summary types those collaborators return.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "not filtered".
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	// Case-insensitive substring of the merchant name.
	MerchantContains string
	// Case-insensitive substring of any category field or the merchant name.
	CategoryContains string
	Type             string
	MinAbsAmount     float64
	Limit            int
	ExpensesOnly     bool
	IncomeOnly       bool
}

// TransactionQuerier reads transactions. Results are ordered newest first.
type TransactionQuerier interface {
	QueryTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
}

// AccountFinder resolves an account by id or case-insensitive name
// substring. It returns common.ErrNotFound when nothing matches.
type AccountFinder interface {
	FindAccount(ctx context.Context, nameOrID string) (*model.Account, error)
}

// Analytics supplies pre-computed aggregate summaries.
type Analytics interface {
	CurrentNetWorth(ctx context.Context, asOf time.Time) (*NetWorthSummary, error)
	NetWorthHistory(ctx context.Context, start, end time.Time) ([]model.NetWorthSnapshot, error)
	Performance(ctx context.Context, start, end time.Time) (*PerformanceSummary, error)
	MonthlyPerformance(ctx context.Context, months int) ([]MonthlyPerformance, error)
	Allocation(ctx context.Context, accountID string) (*AllocationSummary, error)
	TopHoldings(ctx context.Context, limit int, accountID string) ([]AllocationSlice, error)
	IncomeSummary(ctx context.Context, start, end time.Time, accountID string) (*IncomeSummary, error)
	ExpenseSummary(ctx context.Context, start, end time.Time, accountID string) (*ExpenseSummary, error)
}
