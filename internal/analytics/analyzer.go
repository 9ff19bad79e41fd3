// Package analytics computes the aggregate summaries the query core reports:
// net worth, performance, allocation, income and expenses.
package analytics

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/shopspring/decimal"
)

// Store is the read surface the analyzer aggregates over.
type Store interface {
	service.TransactionQuerier
	GetAccounts(ctx context.Context, activeOnly bool) ([]model.Account, error)
	LatestHoldings(ctx context.Context, asOf time.Time, accountID string) ([]model.Holding, error)
	GetNetWorthSnapshot(ctx context.Context, date time.Time) (*model.NetWorthSnapshot, error)
	GetNetWorthSnapshots(ctx context.Context, start, end time.Time) ([]model.NetWorthSnapshot, error)
}

var hundred = decimal.NewFromInt(100)

// Analyzer implements service.Analytics over a Store.
type Analyzer struct {
	store Store
	now   func() time.Time
}

var _ service.Analytics = (*Analyzer)(nil)

// New creates an analyzer. A nil now uses time.Now.
func New(store Store, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{store: store, now: now}
}

func (a *Analyzer) today() time.Time {
	t := a.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CurrentNetWorth values every active account as of asOf. An account with
// holdings is worth their total value; one without is worth its balance.
// Credit and loan accounts count as liabilities.
func (a *Analyzer) CurrentNetWorth(ctx context.Context, asOf time.Time) (*service.NetWorthSummary, error) {
	if asOf.IsZero() {
		asOf = a.today()
	}

	accounts, err := a.store.GetAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	holdings, err := a.store.LatestHoldings(ctx, asOf, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	held := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		held[h.AccountID] = held[h.AccountID].Add(decimal.NewFromFloat(h.Value))
	}

	summary := &service.NetWorthSummary{
		Date:         asOf,
		AccountCount: len(accounts),
	}
	for _, account := range accounts {
		value, ok := held[account.ID]
		if !ok {
			value = decimal.NewFromFloat(account.Balance)
		}

		switch {
		case account.Type.IsLiability():
			summary.TotalLiabilities = summary.TotalLiabilities.Add(value.Abs())
		case account.Type == model.AccountTypeInvestment:
			summary.InvestmentValue = summary.InvestmentValue.Add(value)
			summary.TotalAssets = summary.TotalAssets.Add(value)
		case account.Type == model.AccountTypeDepository:
			summary.CashValue = summary.CashValue.Add(value)
			summary.TotalAssets = summary.TotalAssets.Add(value)
		default:
			summary.TotalAssets = summary.TotalAssets.Add(value)
		}

		summary.Accounts = append(summary.Accounts, service.AccountValue{
			AccountID:   account.ID,
			AccountName: account.Name,
			AccountType: account.Type,
			Value:       value,
		})
	}
	summary.NetWorth = summary.TotalAssets.Sub(summary.TotalLiabilities)

	return summary, nil
}

// NetWorthHistory returns stored snapshots in [start, end], oldest first.
func (a *Analyzer) NetWorthHistory(ctx context.Context, start, end time.Time) ([]model.NetWorthSnapshot, error) {
	snaps, err := a.store.GetNetWorthSnapshots(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load net worth history: %w", err)
	}
	return snaps, nil
}

// netWorthOn prefers a stored snapshot and computes the value otherwise.
func (a *Analyzer) netWorthOn(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	snap, err := a.store.GetNetWorthSnapshot(ctx, date)
	if err == nil {
		return decimal.NewFromFloat(snap.NetWorth), nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to load snapshot for %s: %w", date.Format(time.DateOnly), err)
	}

	current, err := a.CurrentNetWorth(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	return current.NetWorth, nil
}

// Snapshot computes net worth for date in the stored snapshot shape.
func (a *Analyzer) Snapshot(ctx context.Context, date time.Time) (*model.NetWorthSnapshot, error) {
	current, err := a.CurrentNetWorth(ctx, date)
	if err != nil {
		return nil, err
	}
	return &model.NetWorthSnapshot{
		Date:             date,
		TotalAssets:      current.TotalAssets.InexactFloat64(),
		TotalLiabilities: current.TotalLiabilities.InexactFloat64(),
		NetWorth:         current.NetWorth.InexactFloat64(),
		InvestmentValue:  current.InvestmentValue.InexactFloat64(),
		CashValue:        current.CashValue.InexactFloat64(),
		AccountCount:     current.AccountCount,
	}, nil
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func sortSlices(s []service.AllocationSlice) {
	slices.SortStableFunc(s, func(a, b service.AllocationSlice) int {
		if c := b.Value.Cmp(a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}
