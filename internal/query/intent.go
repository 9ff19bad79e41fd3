// Package query turns free-text finance questions into structured queries.
package query

import (
	"encoding/json"
	"time"
)

// Intent is the kind of financial question a query asks.
type Intent string

// Supported intents.
const (
	IntentNetWorth         Intent = "net_worth"
	IntentPerformance      Intent = "performance"
	IntentAllocation       Intent = "allocation"
	IntentHoldings         Intent = "holdings"
	IntentTransactions     Intent = "transactions"
	IntentIncome           Intent = "income"
	IntentExpenses         Intent = "expenses"
	IntentSpendingCategory Intent = "spending_category"
	IntentDividends        Intent = "dividends"
	IntentCashFlow         Intent = "cash_flow"
	IntentMerchant         Intent = "merchant"
	IntentLunch            Intent = "lunch"
	IntentUnknown          Intent = "unknown"
)

// String implements fmt.Stringer.
func (i Intent) String() string {
	return string(i)
}

// TimeRange is an inclusive pair of calendar dates.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days between start and end,
// independent of any DST change in their location.
func (r TimeRange) Days() int {
	return int(calendarDate(r.End).Sub(calendarDate(r.Start)).Hours() / 24)
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MarshalJSON renders both ends as calendar dates.
func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: r.Start.Format(time.DateOnly),
		End:   r.End.Format(time.DateOnly),
	})
}

// ParsedQuery is the structured form of one incoming question.
type ParsedQuery struct {
	TimeRange       *TimeRange
	AmountThreshold *float64
	Raw             string
	Intent          Intent
	AccountFilter   string
	Category        string
	Merchant        string
}
