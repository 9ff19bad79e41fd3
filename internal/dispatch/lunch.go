package dispatch

import (
	"cmp"
	"context"
	"slices"

	"github.com/Veraticus/spice-ask/internal/confidence"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/query"
	"github.com/shopspring/decimal"
)

// Lunch preview caps.
const (
	AcceptedPreviewLimit  = 30
	UncertainPreviewLimit = 10
	AcceptedReasonLimit   = 3
)

type scored struct {
	txn        model.Transaction
	assessment confidence.Assessment
}

// lunch pulls every expense in range, keeps the broad candidate set, scores
// each candidate and splits the results into accepted and uncertain bands.
func (d *Dispatcher) lunch(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, map[string]any, error) {
	filter, err := d.baseFilter(ctx, q, tr)
	if err != nil {
		return nil, nil, err
	}
	filter.ExpensesOnly = true

	txns, err := d.deps.Transactions.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	floor := d.scorer.Config().UncertainFloor
	var accepted, uncertain []scored
	candidates, rejected := 0, 0
	for _, txn := range txns {
		if !d.scorer.IsCandidate(txn) {
			continue
		}
		candidates++

		a := d.scorer.Score(txn)
		switch {
		case a.IsLikely:
			accepted = append(accepted, scored{txn: txn, assessment: a})
		case a.IsUncertain(floor):
			uncertain = append(uncertain, scored{txn: txn, assessment: a})
		default:
			rejected++
		}
	}

	payload := LunchPayload{
		Accepted:  newLunchBucket(accepted, AcceptedPreviewLimit, AcceptedReasonLimit),
		Uncertain: newLunchBucket(uncertain, UncertainPreviewLimit, 0),
	}
	extra := map[string]any{
		"candidates": candidates,
		"rejected":   rejected,
	}
	return payload, extra, nil
}

// newLunchBucket aggregates one band. A reasonLimit of zero keeps every
// reason.
func newLunchBucket(items []scored, previewLimit, reasonLimit int) LunchBucket {
	bucket := LunchBucket{
		Merchants:    merchantBreakdown(items),
		Transactions: make([]ScoredTransaction, 0, min(len(items), previewLimit)),
		Total:        decimal.Zero,
		Count:        len(items),
	}

	for i, item := range items {
		bucket.Total = bucket.Total.Add(decimal.NewFromFloat(item.assessment.Amount))
		if i >= previewLimit {
			continue
		}

		reasons := item.assessment.Reasons
		if reasonLimit > 0 && len(reasons) > reasonLimit {
			reasons = reasons[:reasonLimit]
		}
		view := newTransactionView(item.txn)
		view.Amount = view.Amount.Abs()
		bucket.Transactions = append(bucket.Transactions, ScoredTransaction{
			TransactionView: view,
			Reasons:         slices.Clone(reasons),
			Confidence:      item.assessment.Score,
		})
	}
	bucket.Total = bucket.Total.Round(2)
	return bucket
}

// merchantBreakdown groups a band by display merchant, largest total first.
func merchantBreakdown(items []scored) []MerchantBreakdown {
	type acc struct {
		total      decimal.Decimal
		confidence int
		count      int
	}

	groups := make(map[string]*acc)
	for _, item := range items {
		name := item.txn.Merchant()
		g, ok := groups[name]
		if !ok {
			g = &acc{total: decimal.Zero}
			groups[name] = g
		}
		g.total = g.total.Add(decimal.NewFromFloat(item.assessment.Amount))
		g.confidence += item.assessment.Score
		g.count++
	}

	out := make([]MerchantBreakdown, 0, len(groups))
	for name, g := range groups {
		out = append(out, MerchantBreakdown{
			Merchant:          name,
			Total:             g.total.Round(2),
			AverageConfidence: decimal.NewFromInt(int64(g.confidence)).Div(decimal.NewFromInt(int64(g.count))).Round(1),
			Count:             g.count,
		})
	}
	slices.SortFunc(out, func(a, b MerchantBreakdown) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Merchant, b.Merchant)
	})
	return out
}
