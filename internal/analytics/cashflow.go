package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/shopspring/decimal"
)

// IncomeSummary totals income in [start, end], grouped by income type.
func (a *Analyzer) IncomeSummary(ctx context.Context, start, end time.Time, accountID string) (*service.IncomeSummary, error) {
	txns, err := a.store.QueryTransactions(ctx, service.TransactionFilter{
		StartDate:  &start,
		EndDate:    &end,
		AccountID:  accountID,
		IncomeOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load income: %w", err)
	}

	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(decimal.NewFromFloat(txn.Amount))
	}

	return &service.IncomeSummary{
		StartDate:        start,
		EndDate:          end,
		TotalIncome:      total,
		TransactionCount: len(txns),
		ByType: groupTotals(txns, func(t model.Transaction) string {
			return orDefault(t.IncomeType, "unknown")
		}),
	}, nil
}

// ExpenseSummary totals expenses in [start, end]. Totals are reported as
// positive amounts.
func (a *Analyzer) ExpenseSummary(ctx context.Context, start, end time.Time, accountID string) (*service.ExpenseSummary, error) {
	txns, err := a.store.QueryTransactions(ctx, service.TransactionFilter{
		StartDate:    &start,
		EndDate:      &end,
		AccountID:    accountID,
		ExpensesOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(decimal.NewFromFloat(txn.Amount))
	}

	return &service.ExpenseSummary{
		StartDate:        start,
		EndDate:          end,
		TotalExpenses:    total.Abs(),
		TransactionCount: len(txns),
		ByCategory: groupTotals(txns, func(t model.Transaction) string {
			return orDefault(t.ExpenseCategory, "uncategorized")
		}),
		ByPrimaryCategory: groupTotals(txns, func(t model.Transaction) string {
			return orDefault(t.PrimaryCategory, "uncategorized")
		}),
	}, nil
}

// groupTotals sums transactions per key and reports unsigned totals, largest
// first.
func groupTotals(txns []model.Transaction, key func(model.Transaction) string) []service.GroupTotal {
	sums := map[string]decimal.Decimal{}
	counts := map[string]int{}
	for _, txn := range txns {
		k := key(txn)
		sums[k] = sums[k].Add(decimal.NewFromFloat(txn.Amount))
		counts[k]++
	}

	out := make([]service.GroupTotal, 0, len(sums))
	for k, sum := range sums {
		out = append(out, service.GroupTotal{Name: k, Total: sum.Abs(), Count: counts[k]})
	}
	slices.SortFunc(out, func(a, b service.GroupTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
