package service

import (
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/shopspring/decimal"
)

// AccountValue is one account's contribution to net worth.
type AccountValue struct {
	AccountID   string            `json:"account_id"`
	AccountName string            `json:"account_name"`
	AccountType model.AccountType `json:"account_type"`
	Value       decimal.Decimal   `json:"value"`
}

// NetWorthSummary is net worth as of a single date.
type NetWorthSummary struct {
	Date             time.Time       `json:"date"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetWorth         decimal.Decimal `json:"net_worth"`
	InvestmentValue  decimal.Decimal `json:"investment_value"`
	CashValue        decimal.Decimal `json:"cash_value"`
	Accounts         []AccountValue  `json:"account_breakdown"`
	AccountCount     int             `json:"account_count"`
}

// PerformanceSummary compares net worth at the two ends of a period.
type PerformanceSummary struct {
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	StartValue       decimal.Decimal `json:"start_value"`
	EndValue         decimal.Decimal `json:"end_value"`
	AbsoluteReturn   decimal.Decimal `json:"absolute_return"`
	PercentReturn    decimal.Decimal `json:"percent_return"`
	AnnualizedReturn decimal.Decimal `json:"annualized_return"`
	Days             int             `json:"days"`
}

// MonthlyPerformance is the net worth change within one calendar month.
type MonthlyPerformance struct {
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Month         string          `json:"month"`
	StartValue    decimal.Decimal `json:"start_value"`
	EndValue      decimal.Decimal `json:"end_value"`
	Return        decimal.Decimal `json:"return"`
	ReturnPercent decimal.Decimal `json:"return_percent"`
}

// AllocationSlice is one group in an allocation breakdown: a security, an
// account or a security type, depending on the breakdown.
type AllocationSlice struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Ticker   string          `json:"ticker,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Quantity decimal.Decimal `json:"quantity"`
	Percent  decimal.Decimal `json:"allocation_percent"`
	Count    int             `json:"count"`
}

// AllocationSummary breaks current holdings down three ways, each sorted by
// value descending.
type AllocationSummary struct {
	AsOf       time.Time         `json:"as_of_date"`
	TotalValue decimal.Decimal   `json:"total_value"`
	BySecurity []AllocationSlice `json:"by_security"`
	ByAccount  []AllocationSlice `json:"by_account"`
	ByType     []AllocationSlice `json:"by_type"`
}

// GroupTotal is a count and unsigned total for one group of transactions.
type GroupTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// IncomeSummary totals income over a period.
type IncomeSummary struct {
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	ByType           []GroupTotal    `json:"by_type"`
	TransactionCount int             `json:"transaction_count"`
}

// ExpenseSummary totals expenses over a period. Totals are positive.
type ExpenseSummary struct {
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	ByCategory        []GroupTotal    `json:"by_category"`
	ByPrimaryCategory []GroupTotal    `json:"by_primary_category"`
	TransactionCount  int             `json:"transaction_count"`
}
