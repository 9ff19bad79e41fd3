package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return today.Add(10*time.Hour + 30*time.Minute) }

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func newAnalyzer(t *testing.T, opts testutil.TestDBOptions) *Analyzer {
	t.Helper()
	db := testutil.SetupTestDBWithOptions(t, opts)
	return New(db.Storage, fixedNow)
}

func TestAnalyzer_CurrentNetWorth(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Accounts: testutil.Accounts(),
		Holdings: testutil.Holdings(day(time.March, 1)),
	})

	got, err := a.CurrentNetWorth(context.Background(), today)
	require.NoError(t, err)

	assertDecimal(t, "16000", got.InvestmentValue)
	assertDecimal(t, "3200", got.CashValue)
	assertDecimal(t, "19200", got.TotalAssets)
	assertDecimal(t, "450", got.TotalLiabilities)
	assertDecimal(t, "18750", got.NetWorth)
	assert.Equal(t, 3, got.AccountCount)
	assert.Len(t, got.Accounts, 3)
}

func TestAnalyzer_CurrentNetWorth_BeforeHoldings(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Accounts: testutil.Accounts(),
		Holdings: testutil.Holdings(day(time.March, 1)),
	})

	got, err := a.CurrentNetWorth(context.Background(), day(time.February, 1))
	require.NoError(t, err)

	// No holdings yet, so the brokerage falls back to its zero balance.
	assertDecimal(t, "0", got.InvestmentValue)
	assertDecimal(t, "2750", got.NetWorth)
}

func TestAnalyzer_NetWorthHistory(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Snapshots: []model.NetWorthSnapshot{
			{Date: day(time.February, 1), NetWorth: 100},
			{Date: day(time.March, 1), NetWorth: 110},
			{Date: day(time.March, 10), NetWorth: 120},
		},
	})

	got, err := a.NetWorthHistory(context.Background(), day(time.February, 15), today)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(time.March, 1), got[0].Date)
}

func TestAnalyzer_Performance(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Snapshots: []model.NetWorthSnapshot{
			{Date: day(time.January, 1), NetWorth: 10000},
			{Date: day(time.March, 1), NetWorth: 11000},
		},
	})

	got, err := a.Performance(context.Background(), day(time.January, 1), day(time.March, 1))
	require.NoError(t, err)

	assert.Equal(t, 60, got.Days)
	assertDecimal(t, "10000", got.StartValue)
	assertDecimal(t, "11000", got.EndValue)
	assertDecimal(t, "1000", got.AbsoluteReturn)
	assertDecimal(t, "10", got.PercentReturn)
	assert.True(t, got.AnnualizedReturn.GreaterThan(got.PercentReturn))
}

func TestAnalyzer_Performance_ZeroStart(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{})

	got, err := a.Performance(context.Background(), day(time.January, 1), today)
	require.NoError(t, err)
	assertDecimal(t, "0", got.PercentReturn)
	assertDecimal(t, "0", got.AnnualizedReturn)
}

func TestAnalyzer_MonthlyPerformance(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Snapshots: []model.NetWorthSnapshot{
			{Date: day(time.January, 1), NetWorth: 1000},
			{Date: day(time.January, 31), NetWorth: 1100},
		},
	})

	got, err := a.MonthlyPerformance(context.Background(), 2)
	require.NoError(t, err)

	// today-60 days is 2024-01-14, so January, February and partial March.
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01", got[0].Month)
	assertDecimal(t, "100", got[0].Return)
	assertDecimal(t, "10", got[0].ReturnPercent)
	assert.Equal(t, "2024-02", got[1].Month)
	assert.Equal(t, day(time.February, 29), got[1].EndDate)
	assert.Equal(t, "2024-03", got[2].Month)
	assert.Equal(t, today, got[2].EndDate)
}

func TestAnalyzer_Allocation(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Accounts: testutil.Accounts(),
		Holdings: testutil.Holdings(day(time.March, 1)),
	})

	got, err := a.Allocation(context.Background(), "")
	require.NoError(t, err)

	assertDecimal(t, "16000", got.TotalValue)
	require.Len(t, got.BySecurity, 3)
	assert.Equal(t, "VTI", got.BySecurity[0].Ticker)
	assertDecimal(t, "62.5", got.BySecurity[0].Percent)

	require.Len(t, got.ByType, 2)
	assert.Equal(t, "etf", got.ByType[0].Key)
	assert.Equal(t, 2, got.ByType[0].Count)
	assertDecimal(t, "85", got.ByType[0].Percent)

	require.Len(t, got.ByAccount, 1)
	assert.Equal(t, "Fidelity Brokerage", got.ByAccount[0].Label)
	assertDecimal(t, "100", got.ByAccount[0].Percent)
}

func TestAnalyzer_TopHoldings(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Accounts: testutil.Accounts(),
		Holdings: testutil.Holdings(day(time.March, 1)),
	})
	ctx := context.Background()

	top, err := a.TopHoldings(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "BND", top[1].Ticker)

	none, err := a.TopHoldings(ctx, 20, "checking")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnalyzer_IncomeAndExpenses(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Accounts: testutil.Accounts(),
		Transactions: []model.Transaction{
			testutil.NewTransaction("pay1").On(day(time.March, 1)).Earn(2500, "salary").Build(),
			testutil.NewTransaction("pay2").On(day(time.March, 8)).Earn(2500, "salary").Build(),
			testutil.NewTransaction("div").On(day(time.March, 5)).Account("brokerage").Dividend(40, "VTI", 40).Build(),
			testutil.NewTransaction("old").On(day(time.January, 5)).Earn(999, "salary").Build(),
			testutil.NewTransaction("rent").On(day(time.March, 1)).Spend(1800).Category("housing").Build(),
			testutil.NewTransaction("food1").On(day(time.March, 2)).Spend(45.25).Category("groceries").Provider("FOOD_AND_DRINK", "").Build(),
			testutil.NewTransaction("food2").On(day(time.March, 9)).Spend(30.10).Category("groceries").Provider("FOOD_AND_DRINK", "").Build(),
			testutil.NewTransaction("misc").On(day(time.March, 10)).Spend(5).Build(),
		},
	})
	ctx := context.Background()
	start := day(time.March, 1)

	income, err := a.IncomeSummary(ctx, start, today, "")
	require.NoError(t, err)
	assertDecimal(t, "5040", income.TotalIncome)
	assert.Equal(t, 3, income.TransactionCount)
	require.Len(t, income.ByType, 2)
	assert.Equal(t, "salary", income.ByType[0].Name)
	assertDecimal(t, "5000", income.ByType[0].Total)

	checkingOnly, err := a.IncomeSummary(ctx, start, today, "checking")
	require.NoError(t, err)
	assertDecimal(t, "5000", checkingOnly.TotalIncome)

	expenses, err := a.ExpenseSummary(ctx, start, today, "")
	require.NoError(t, err)
	assertDecimal(t, "1880.35", expenses.TotalExpenses)
	assert.Equal(t, 4, expenses.TransactionCount)
	require.Len(t, expenses.ByCategory, 3)
	assert.Equal(t, "housing", expenses.ByCategory[0].Name)
	assert.Equal(t, "groceries", expenses.ByCategory[1].Name)
	assertDecimal(t, "75.35", expenses.ByCategory[1].Total)
	assert.Equal(t, 2, expenses.ByCategory[1].Count)
	assert.Equal(t, "uncategorized", expenses.ByCategory[2].Name)
	assert.Equal(t, "uncategorized", expenses.ByPrimaryCategory[0].Name)
}

func TestAnalyzer_Snapshot(t *testing.T) {
	a := newAnalyzer(t, testutil.TestDBOptions{
		Accounts: testutil.Accounts(),
		Holdings: testutil.Holdings(day(time.March, 1)),
	})

	snap, err := a.Snapshot(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, today, snap.Date)
	assert.InDelta(t, 18750, snap.NetWorth, 0.001)
	assert.Equal(t, 3, snap.AccountCount)
}
