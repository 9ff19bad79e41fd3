// Package dispatch answers parsed finance queries by routing each intent to
// the collaborator that can answer it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/confidence"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/query"
	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/shopspring/decimal"
)

// Result caps and thresholds.
const (
	TransactionsLimit     = 50
	PreviewLimit          = 20
	HoldingsLimit         = 20
	TopExpenseCategories  = 10
	MonthlyBreakdownAfter = 60 // days
	daysPerMonth          = 30
)

// Deps contains all dependencies required by the dispatcher.
type Deps struct {
	// Transactions reads transaction records.
	Transactions service.TransactionQuerier
	// Accounts resolves account filters.
	Accounts service.AccountFinder
	// Analytics supplies aggregate summaries.
	Analytics service.Analytics
	// Scorer rates lunch candidates. Defaults to confidence.NewDefaultScorer.
	Scorer *confidence.Scorer
	// Parser turns raw text into queries. Defaults to query.NewParser(Now).
	Parser *query.Parser
	// Now is the clock used for default ranges. Defaults to time.Now.
	Now func() time.Time
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Transactions == nil {
		return fmt.Errorf("transaction querier dependency is required")
	}
	if d.Accounts == nil {
		return fmt.Errorf("account finder dependency is required")
	}
	if d.Analytics == nil {
		return fmt.Errorf("analytics dependency is required")
	}
	return nil
}

// Dispatcher answers queries. It holds no mutable state and is safe for
// concurrent use when its collaborators are.
type Dispatcher struct {
	deps   Deps
	parser *query.Parser
	scorer *confidence.Scorer
	now    func() time.Time
}

// New creates a dispatcher with the provided dependencies.
func New(deps Deps) (*Dispatcher, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	d := &Dispatcher{deps: deps, parser: deps.Parser, scorer: deps.Scorer, now: deps.Now}
	if d.now == nil {
		d.now = time.Now
	}
	if d.parser == nil {
		d.parser = query.NewParser(d.now)
	}
	if d.scorer == nil {
		d.scorer = confidence.NewDefaultScorer()
	}
	return d, nil
}

// Ask parses raw text and dispatches it.
func (d *Dispatcher) Ask(ctx context.Context, raw string) (*Response, error) {
	return d.Dispatch(ctx, d.parser.Parse(raw))
}

// Dispatch answers a parsed query. Only collaborator failures produce an
// error; an unrecognized query yields an UnknownPayload.
func (d *Dispatcher) Dispatch(ctx context.Context, q query.ParsedQuery) (*Response, error) {
	common.LogDebug("Dispatching query", common.Fields{
		"intent":   q.Intent.String(),
		"account":  q.AccountFilter,
		"category": q.Category,
		"merchant": q.Merchant,
	})

	resp := &Response{Intent: q.Intent, Query: q.Raw}

	if q.Intent == query.IntentUnknown {
		resp.Payload = unknownPayload(q.Raw)
		return resp, nil
	}

	if q.TimeRange != nil {
		tr := *q.TimeRange
		resp.Range = &tr
	} else if tr, ok := DefaultRange(q.Intent, d.today()); ok {
		resp.Range = &tr
		resp.Extra = map[string]any{"default_range": true}
	}

	var (
		payload Payload
		err     error
	)
	switch q.Intent {
	case query.IntentNetWorth:
		payload, err = d.netWorth(ctx, q.TimeRange)
	case query.IntentPerformance:
		payload, err = d.performance(ctx, *resp.Range)
	case query.IntentAllocation:
		payload, err = d.allocation(ctx, q)
	case query.IntentHoldings:
		payload, err = d.holdings(ctx, q)
	case query.IntentTransactions:
		payload, err = d.transactions(ctx, q, *resp.Range)
	case query.IntentIncome:
		payload, err = d.income(ctx, q, *resp.Range)
	case query.IntentExpenses:
		payload, err = d.expenses(ctx, q, *resp.Range)
	case query.IntentSpendingCategory:
		resp.Subject = q.Category
		payload, err = d.spendingCategory(ctx, q, *resp.Range)
	case query.IntentDividends:
		payload, err = d.dividends(ctx, q, *resp.Range)
	case query.IntentCashFlow:
		payload, err = d.cashFlow(ctx, q, *resp.Range)
	case query.IntentMerchant:
		resp.Subject = q.Merchant
		payload, err = d.merchant(ctx, q, *resp.Range)
	case query.IntentLunch:
		var extra map[string]any
		payload, extra, err = d.lunch(ctx, q, *resp.Range)
		resp.Extra = mergeExtra(resp.Extra, extra)
	default:
		return nil, fmt.Errorf("unsupported intent %q", q.Intent)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to answer %s query: %w", q.Intent, err)
	}

	resp.Payload = payload
	return resp, nil
}

// DefaultRange returns the range applied to intent when the query names
// none. Intents that are not time-bound return false.
func DefaultRange(intent query.Intent, today time.Time) (query.TimeRange, bool) {
	trailing := func(days int) query.TimeRange {
		return query.TimeRange{Start: today.AddDate(0, 0, -days), End: today}
	}

	switch intent {
	case query.IntentExpenses, query.IntentIncome, query.IntentTransactions,
		query.IntentSpendingCategory, query.IntentMerchant, query.IntentPerformance:
		return trailing(30), true
	case query.IntentCashFlow:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return query.TimeRange{Start: start, End: today}, true
	case query.IntentDividends:
		return trailing(365), true
	case query.IntentLunch:
		return trailing(60), true
	default:
		return query.TimeRange{}, false
	}
}

func (d *Dispatcher) today() time.Time {
	t := d.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// resolveAccount maps the query's account phrase to an account id. A phrase
// that matches no account is dropped rather than failing the query.
func (d *Dispatcher) resolveAccount(ctx context.Context, filter string) (string, error) {
	if filter == "" {
		return "", nil
	}

	account, err := d.deps.Accounts.FindAccount(ctx, filter)
	if errors.Is(err, common.ErrNotFound) {
		common.LogDebug("Account filter matched nothing, ignoring", common.Fields{"filter": filter})
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve account %q: %w", filter, err)
	}
	return account.ID, nil
}

func (d *Dispatcher) netWorth(ctx context.Context, tr *query.TimeRange) (Payload, error) {
	if tr != nil && !tr.Start.Equal(tr.End) {
		snapshots, err := d.deps.Analytics.NetWorthHistory(ctx, tr.Start, tr.End)
		if err != nil {
			return nil, err
		}
		return NetWorthHistoryPayload{Snapshots: snapshots}, nil
	}

	asOf := d.today()
	if tr != nil {
		asOf = tr.End
	}
	summary, err := d.deps.Analytics.CurrentNetWorth(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return NetWorthPayload{NetWorthSummary: summary}, nil
}

func (d *Dispatcher) performance(ctx context.Context, tr query.TimeRange) (Payload, error) {
	summary, err := d.deps.Analytics.Performance(ctx, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}

	payload := PerformancePayload{Summary: summary}
	if days := tr.Days(); days > MonthlyBreakdownAfter {
		monthly, err := d.deps.Analytics.MonthlyPerformance(ctx, max(1, days/daysPerMonth))
		if err != nil {
			return nil, err
		}
		payload.Monthly = monthly
	}
	return payload, nil
}

func (d *Dispatcher) allocation(ctx context.Context, q query.ParsedQuery) (Payload, error) {
	accountID, err := d.resolveAccount(ctx, q.AccountFilter)
	if err != nil {
		return nil, err
	}
	summary, err := d.deps.Analytics.Allocation(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return AllocationPayload{AllocationSummary: summary}, nil
}

func (d *Dispatcher) holdings(ctx context.Context, q query.ParsedQuery) (Payload, error) {
	accountID, err := d.resolveAccount(ctx, q.AccountFilter)
	if err != nil {
		return nil, err
	}
	holdings, err := d.deps.Analytics.TopHoldings(ctx, HoldingsLimit, accountID)
	if err != nil {
		return nil, err
	}
	return HoldingsPayload{Holdings: holdings, Count: len(holdings)}, nil
}

func (d *Dispatcher) transactions(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	filter, err := d.baseFilter(ctx, q, tr)
	if err != nil {
		return nil, err
	}
	filter.Limit = TransactionsLimit

	txns, err := d.deps.Transactions.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return TransactionsPayload{
		Transactions: newTransactionViews(txns, 0),
		Total:        signedTotal(txns),
		Count:        len(txns),
	}, nil
}

func (d *Dispatcher) income(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	accountID, err := d.resolveAccount(ctx, q.AccountFilter)
	if err != nil {
		return nil, err
	}
	summary, err := d.deps.Analytics.IncomeSummary(ctx, tr.Start, tr.End, accountID)
	if err != nil {
		return nil, err
	}
	return IncomePayload{IncomeSummary: summary}, nil
}

func (d *Dispatcher) expenses(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	accountID, err := d.resolveAccount(ctx, q.AccountFilter)
	if err != nil {
		return nil, err
	}
	summary, err := d.deps.Analytics.ExpenseSummary(ctx, tr.Start, tr.End, accountID)
	if err != nil {
		return nil, err
	}
	return ExpensesPayload{ExpenseSummary: summary}, nil
}

func (d *Dispatcher) spendingCategory(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	filter, err := d.baseFilter(ctx, q, tr)
	if err != nil {
		return nil, err
	}
	filter.ExpensesOnly = true
	filter.CategoryContains = q.Category
	if q.AmountThreshold != nil {
		filter.MinAbsAmount = *q.AmountThreshold
	}
	return d.spending(ctx, filter)
}

func (d *Dispatcher) merchant(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	filter, err := d.baseFilter(ctx, q, tr)
	if err != nil {
		return nil, err
	}
	filter.MerchantContains = q.Merchant
	return d.spending(ctx, filter)
}

func (d *Dispatcher) spending(ctx context.Context, filter service.TransactionFilter) (Payload, error) {
	txns, err := d.deps.Transactions.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	// Rows are reported as magnitudes to match Total.
	views := newTransactionViews(txns, PreviewLimit)
	for i := range views {
		views[i].Amount = views[i].Amount.Abs()
	}
	return SpendingPayload{
		Transactions: views,
		Total:        absoluteTotal(txns),
		Count:        len(txns),
	}, nil
}

func (d *Dispatcher) dividends(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	filter, err := d.baseFilter(ctx, q, tr)
	if err != nil {
		return nil, err
	}
	filter.Type = model.TypeDividend

	txns, err := d.deps.Transactions.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return TransactionsPayload{
		Transactions: newTransactionViews(txns, 0),
		Total:        signedTotal(txns),
		Count:        len(txns),
	}, nil
}

func (d *Dispatcher) cashFlow(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (Payload, error) {
	accountID, err := d.resolveAccount(ctx, q.AccountFilter)
	if err != nil {
		return nil, err
	}

	income, err := d.deps.Analytics.IncomeSummary(ctx, tr.Start, tr.End, accountID)
	if err != nil {
		return nil, err
	}
	expenses, err := d.deps.Analytics.ExpenseSummary(ctx, tr.Start, tr.End, accountID)
	if err != nil {
		return nil, err
	}

	categories := expenses.ByCategory
	if len(categories) > TopExpenseCategories {
		categories = categories[:TopExpenseCategories]
	}
	return CashFlowPayload{
		Income:           income.TotalIncome,
		Expenses:         expenses.TotalExpenses,
		Net:              income.TotalIncome.Sub(expenses.TotalExpenses),
		IncomeBreakdown:  income.ByType,
		ExpenseBreakdown: categories,
	}, nil
}

// baseFilter scopes a transaction query to a range and the resolved account.
func (d *Dispatcher) baseFilter(ctx context.Context, q query.ParsedQuery, tr query.TimeRange) (service.TransactionFilter, error) {
	accountID, err := d.resolveAccount(ctx, q.AccountFilter)
	if err != nil {
		return service.TransactionFilter{}, err
	}
	start, end := tr.Start, tr.End
	return service.TransactionFilter{StartDate: &start, EndDate: &end, AccountID: accountID}, nil
}

func signedTotal(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(decimal.NewFromFloat(txn.Amount))
	}
	return total.Round(2)
}

func absoluteTotal(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(decimal.NewFromFloat(txn.Magnitude()))
	}
	return total.Round(2)
}

func mergeExtra(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
