package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTransactions(t *testing.T, store *SQLiteStorage) []model.Transaction {
	t.Helper()

	txns := []model.Transaction{
		{
			ID: "t1", AccountID: "checking", Date: day(2024, time.March, 1), PostedAt: clock(2024, time.March, 1, 12, 30),
			Name: "CHIPOTLE 0123", MerchantName: "Chipotle", Amount: -12.50, Type: model.TypeExpense,
			ExpenseCategory: "restaurants", PrimaryCategory: "FOOD_AND_DRINK", IsExpense: true,
		},
		{
			ID: "t2", AccountID: "checking", Date: day(2024, time.March, 5),
			Name: "KING SOOPERS #12", MerchantName: "King Soupers", Amount: -87.50, Type: model.TypeExpense,
			ExpenseCategory: "groceries", IsExpense: true,
		},
		{
			ID: "t3", AccountID: "credit", Date: day(2024, time.March, 10),
			Name: "Brewery Bar 50% off", Amount: -30, Type: model.TypeExpense,
			DetailedCategory: "FOOD_AND_DRINK_BEER_WINE_AND_LIQUOR", IsExpense: true,
		},
		{
			ID: "t4", AccountID: "checking", Date: day(2024, time.March, 15),
			Name: "ACME PAYROLL", Amount: 2500, Type: model.TypeIncome, IncomeType: "salary", IsIncome: true,
		},
		{
			ID: "t5", AccountID: "brokerage", Date: day(2024, time.March, 20),
			Name: "VTI DIVIDEND", Amount: 42.10, Type: model.TypeDividend, Ticker: "VTI", Quantity: 12.5, IsIncome: true,
			IncomeType: "dividend",
		},
	}

	n, err := store.SaveTransactions(context.Background(), txns)
	require.NoError(t, err)
	require.Equal(t, len(txns), n)
	return txns
}

func ids(txns []model.Transaction) []string {
	out := make([]string, len(txns))
	for i, txn := range txns {
		out[i] = txn.ID
	}
	return out
}

func TestSaveTransactions_SkipsDuplicates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	txns := seedTransactions(t, store)

	n, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(txns), count)
}

func TestSaveTransactions_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		txns    []model.Transaction
	}{
		{name: "nil slice", txns: nil, wantErr: ErrNilParameter},
		{name: "empty slice", txns: []model.Transaction{}, wantErr: ErrEmptySlice},
		{name: "missing id", txns: []model.Transaction{{Date: day(2024, 1, 1), Name: "x", AccountID: "a"}}, wantErr: ErrInvalidTransaction},
		{name: "missing account", txns: []model.Transaction{{ID: "x", Date: day(2024, 1, 1), Name: "x"}}, wantErr: ErrInvalidTransaction},
		{
			name:    "both expense and income",
			txns:    []model.Transaction{{ID: "x", Date: day(2024, 1, 1), Name: "x", AccountID: "a", IsExpense: true, IsIncome: true}},
			wantErr: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveTransactions(ctx, tt.txns)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQueryTransactions(t *testing.T) {
	store := createTestStorage(t)
	seedTransactions(t, store)

	start := day(2024, time.March, 5)
	end := day(2024, time.March, 15)

	tests := []struct {
		name   string
		want   []string
		filter service.TransactionFilter
	}{
		{name: "everything newest first", want: []string{"t5", "t4", "t3", "t2", "t1"}},
		{name: "inclusive date range", filter: service.TransactionFilter{StartDate: &start, EndDate: &end}, want: []string{"t4", "t3", "t2"}},
		{name: "account", filter: service.TransactionFilter{AccountID: "checking"}, want: []string{"t4", "t2", "t1"}},
		{name: "merchant is case-insensitive", filter: service.TransactionFilter{MerchantContains: "CHIPOTLE"}, want: []string{"t1"}},
		{name: "merchant falls back to name", filter: service.TransactionFilter{MerchantContains: "brewery"}, want: []string{"t3"}},
		{name: "category matches detailed field", filter: service.TransactionFilter{CategoryContains: "beer"}, want: []string{"t3"}},
		{name: "category matches primary field", filter: service.TransactionFilter{CategoryContains: "food"}, want: []string{"t3", "t1"}},
		{name: "category matches merchant", filter: service.TransactionFilter{CategoryContains: "soupers"}, want: []string{"t2"}},
		{name: "like wildcards are literal", filter: service.TransactionFilter{MerchantContains: "%"}, want: []string{"t3"}},
		{name: "expenses only", filter: service.TransactionFilter{ExpensesOnly: true}, want: []string{"t3", "t2", "t1"}},
		{name: "income only", filter: service.TransactionFilter{IncomeOnly: true}, want: []string{"t5", "t4"}},
		{name: "type", filter: service.TransactionFilter{Type: model.TypeDividend}, want: []string{"t5"}},
		{name: "minimum magnitude", filter: service.TransactionFilter{ExpensesOnly: true, MinAbsAmount: 30}, want: []string{"t3", "t2"}},
		{name: "limit", filter: service.TransactionFilter{Limit: 2}, want: []string{"t5", "t4"}},
		{name: "no match", filter: service.TransactionFilter{MerchantContains: "starbucks"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.QueryTransactions(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestQueryTransactions_InvalidFilter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	start := day(2024, time.March, 10)
	end := day(2024, time.March, 1)

	_, err := store.QueryTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = store.QueryTransactions(ctx, service.TransactionFilter{ExpensesOnly: true, IncomeOnly: true})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = store.QueryTransactions(ctx, service.TransactionFilter{Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestQueryTransactions_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	seedTransactions(t, store)

	txns, err := store.QueryTransactions(context.Background(), service.TransactionFilter{})
	require.NoError(t, err)
	byID := make(map[string]model.Transaction, len(txns))
	for _, txn := range txns {
		byID[txn.ID] = txn
	}

	got, ok := byID["t1"]
	require.True(t, ok)
	require.NotNil(t, got.PostedAt)
	assert.Equal(t, 12, got.PostedAt.Hour())
	assert.Equal(t, 30, got.PostedAt.Minute())
	assert.Equal(t, day(2024, time.March, 1), got.Date)
	assert.Equal(t, "Chipotle", got.MerchantName)
	assert.Equal(t, "restaurants", got.ExpenseCategory)
	assert.Equal(t, "FOOD_AND_DRINK", got.PrimaryCategory)
	assert.InDelta(t, -12.50, got.Amount, 0.001)
	assert.True(t, got.IsExpense)
	assert.NotEmpty(t, got.Hash)

	div, ok := byID["t5"]
	require.True(t, ok)
	assert.Nil(t, div.PostedAt)
	assert.Equal(t, "VTI", div.Ticker)
	assert.InDelta(t, 12.5, div.Quantity, 0.001)
}

func TestGetLatestTransactionDate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetLatestTransactionDate(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	seedTransactions(t, store)
	latest, err := store.GetLatestTransactionDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.March, 20), latest)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%star%", likePattern("STAR"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
