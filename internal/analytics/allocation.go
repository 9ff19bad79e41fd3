package analytics

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/shopspring/decimal"
)

const unknownType = "unknown"

// Allocation breaks today's holdings down by security, account and security
// type. An empty accountID covers every account.
func (a *Analyzer) Allocation(ctx context.Context, accountID string) (*service.AllocationSummary, error) {
	asOf := a.today()

	holdings, err := a.store.LatestHoldings(ctx, asOf, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	accounts, err := a.store.GetAccounts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	names := make(map[string]string, len(accounts))
	for _, account := range accounts {
		names[account.ID] = account.Name
	}

	summary := &service.AllocationSummary{AsOf: asOf}

	bySecurity := map[string]*service.AllocationSlice{}
	byAccount := map[string]*service.AllocationSlice{}
	byType := map[string]*service.AllocationSlice{}
	group := func(m map[string]*service.AllocationSlice, key, label string) *service.AllocationSlice {
		s, ok := m[key]
		if !ok {
			s = &service.AllocationSlice{Key: key, Label: label}
			m[key] = s
		}
		return s
	}

	for _, h := range holdings {
		value := decimal.NewFromFloat(h.Value)
		summary.TotalValue = summary.TotalValue.Add(value)

		sec := group(bySecurity, h.Key(), h.Name)
		sec.Value = sec.Value.Add(value)
		sec.Quantity = sec.Quantity.Add(decimal.NewFromFloat(h.Quantity))
		sec.Count++
		if sec.Ticker == "" {
			sec.Ticker = h.Ticker
		}
		if sec.Label == "" {
			sec.Label = h.Name
		}

		label := names[h.AccountID]
		if label == "" {
			label = h.AccountID
		}
		acct := group(byAccount, h.AccountID, label)
		acct.Value = acct.Value.Add(value)
		acct.Count++

		secType := h.SecurityType
		if secType == "" {
			secType = unknownType
		}
		typ := group(byType, secType, secType)
		typ.Value = typ.Value.Add(value)
		typ.Count++
	}

	summary.BySecurity = flatten(bySecurity, summary.TotalValue)
	summary.ByAccount = flatten(byAccount, summary.TotalValue)
	summary.ByType = flatten(byType, summary.TotalValue)
	return summary, nil
}

// TopHoldings returns the limit largest securities by value.
func (a *Analyzer) TopHoldings(ctx context.Context, limit int, accountID string) ([]service.AllocationSlice, error) {
	allocation, err := a.Allocation(ctx, accountID)
	if err != nil {
		return nil, err
	}
	top := allocation.BySecurity
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func flatten(m map[string]*service.AllocationSlice, total decimal.Decimal) []service.AllocationSlice {
	out := make([]service.AllocationSlice, 0, len(m))
	for _, s := range m {
		s.Percent = percentOf(s.Value, total)
		out = append(out, *s)
	}
	sortSlices(out)
	return out
}
