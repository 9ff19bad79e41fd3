package dispatch

import (
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/query"
	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/shopspring/decimal"
)

// Response is the answer to one query. Payload's concrete type is fixed by
// Intent; see the payload types in this file.
type Response struct {
	Payload Payload          `json:"payload"`
	Range   *query.TimeRange `json:"time_range,omitempty"`
	Extra   map[string]any   `json:"extra,omitempty"`
	Intent  query.Intent     `json:"intent"`
	// Resolved category or merchant, when the intent carries one.
	Subject string `json:"subject,omitempty"`
	Query   string `json:"query"`
}

// Payload is implemented only by the payload types in this package.
type Payload interface {
	isPayload()
}

// NetWorthPayload answers IntentNetWorth for a single date.
type NetWorthPayload struct {
	*service.NetWorthSummary
}

// NetWorthHistoryPayload answers IntentNetWorth for a span of dates.
type NetWorthHistoryPayload struct {
	Snapshots []model.NetWorthSnapshot `json:"snapshots"`
}

// PerformancePayload answers IntentPerformance. Monthly is set only for
// spans longer than the monthly breakdown threshold.
type PerformancePayload struct {
	Summary *service.PerformanceSummary  `json:"summary"`
	Monthly []service.MonthlyPerformance `json:"monthly,omitempty"`
}

// AllocationPayload answers IntentAllocation.
type AllocationPayload struct {
	*service.AllocationSummary
}

// HoldingsPayload answers IntentHoldings.
type HoldingsPayload struct {
	Holdings []service.AllocationSlice `json:"holdings"`
	Count    int                       `json:"count"`
}

// TransactionsPayload answers IntentTransactions and IntentDividends.
type TransactionsPayload struct {
	Transactions []TransactionView `json:"transactions"`
	Total        decimal.Decimal   `json:"total"`
	Count        int               `json:"count"`
}

// IncomePayload answers IntentIncome.
type IncomePayload struct {
	*service.IncomeSummary
}

// ExpensesPayload answers IntentExpenses.
type ExpensesPayload struct {
	*service.ExpenseSummary
}

// SpendingPayload answers IntentSpendingCategory and IntentMerchant. Total
// is the sum of absolute amounts over every match; Transactions is a capped
// preview.
type SpendingPayload struct {
	Transactions []TransactionView `json:"transactions"`
	Total        decimal.Decimal   `json:"total"`
	Count        int               `json:"count"`
}

// CashFlowPayload answers IntentCashFlow.
type CashFlowPayload struct {
	Income           decimal.Decimal      `json:"income"`
	Expenses         decimal.Decimal      `json:"expenses"`
	Net              decimal.Decimal      `json:"net"`
	IncomeBreakdown  []service.GroupTotal `json:"income_breakdown"`
	ExpenseBreakdown []service.GroupTotal `json:"expense_breakdown"`
}

// LunchPayload answers IntentLunch.
type LunchPayload struct {
	Accepted  LunchBucket `json:"accepted"`
	Uncertain LunchBucket `json:"uncertain"`
}

// LunchBucket aggregates the scored transactions that landed in one
// confidence band. Totals and counts cover the whole band; Transactions is
// a capped preview.
type LunchBucket struct {
	Merchants    []MerchantBreakdown `json:"merchant_breakdown"`
	Transactions []ScoredTransaction `json:"transactions"`
	Total        decimal.Decimal     `json:"total"`
	Count        int                 `json:"count"`
}

// MerchantBreakdown is one merchant's share of a lunch bucket.
type MerchantBreakdown struct {
	Merchant          string          `json:"merchant"`
	Total             decimal.Decimal `json:"total"`
	AverageConfidence decimal.Decimal `json:"avg_confidence"`
	Count             int             `json:"count"`
}

// ScoredTransaction is a transaction with its lunch confidence.
type ScoredTransaction struct {
	TransactionView
	Reasons    []string `json:"confidence_reasons"`
	Confidence int      `json:"confidence"`
}

// UnknownPayload answers a query no rule matched.
type UnknownPayload struct {
	Message     string   `json:"message"`
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

func (NetWorthPayload) isPayload()        {}
func (NetWorthHistoryPayload) isPayload() {}
func (PerformancePayload) isPayload()     {}
func (AllocationPayload) isPayload()      {}
func (HoldingsPayload) isPayload()        {}
func (TransactionsPayload) isPayload()    {}
func (IncomePayload) isPayload()          {}
func (ExpensesPayload) isPayload()        {}
func (SpendingPayload) isPayload()        {}
func (CashFlowPayload) isPayload()        {}
func (LunchPayload) isPayload()           {}
func (UnknownPayload) isPayload()         {}

// TransactionView is the presentation shape of a transaction.
type TransactionView struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Time     string          `json:"time,omitempty"`
	Account  string          `json:"account_id"`
	Merchant string          `json:"merchant"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Type     string          `json:"type"`
	Ticker   string          `json:"ticker,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

func newTransactionView(txn model.Transaction) TransactionView {
	view := TransactionView{
		ID:       txn.ID,
		Date:     txn.Date.Format(time.DateOnly),
		Account:  txn.AccountID,
		Merchant: txn.Merchant(),
		Name:     txn.Name,
		Category: txn.Category(),
		Type:     txn.Type,
		Ticker:   txn.Ticker,
		Amount:   decimal.NewFromFloat(txn.Amount).Round(2),
	}
	if txn.PostedAt != nil {
		view.Time = txn.PostedAt.Format("15:04")
	}
	return view
}

func newTransactionViews(txns []model.Transaction, limit int) []TransactionView {
	n := len(txns)
	if limit > 0 && n > limit {
		n = limit
	}
	views := make([]TransactionView, 0, n)
	for _, txn := range txns[:n] {
		views = append(views, newTransactionView(txn))
	}
	return views
}
