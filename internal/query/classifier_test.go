package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentClassifier_Classify(t *testing.T) {
	c := NewIntentClassifier(DefaultPatterns())

	tests := []struct {
		want    Intent
		queries []string
	}{
		{IntentNetWorth, []string{"what is my net worth", "show me my net worth", "how much am i worth", "net worth"}},
		{IntentPerformance, []string{"how is my portfolio performing", "portfolio performance", "what's my return", "show performance"}},
		{IntentHoldings, []string{"what stocks do i own", "show my holdings", "list my investments"}},
		{IntentAllocation, []string{"how is my portfolio allocated", "portfolio allocation", "asset allocation"}},
		{IntentIncome, []string{"how much did i earn", "show my income", "what's my income"}},
		{IntentExpenses, []string{"how much did i spend", "show my expenses", "what did i spend"}},
		{IntentSpendingCategory, []string{"how much did i spend on beer", "spending on restaurants", "how much for gas", "alcohol spending"}},
		{IntentDividends, []string{"how much in dividends", "show dividends", "dividend income"}},
		{IntentCashFlow, []string{"what's my cash flow", "show cash flow", "income vs expenses"}},
		{IntentMerchant, []string{"how much at starbucks", "spending at amazon", "transactions at chipotle"}},
		{IntentLunch, []string{"how much on lunch", "lunch spending", "how much for lunch"}},
		{IntentTransactions, []string{"show transactions", "list transactions", "recent transactions"}},
		{IntentUnknown, []string{"hello", "random text", "", "xyz123"}},
	}

	for _, tt := range tests {
		for _, q := range tt.queries {
			t.Run(string(tt.want)+"/"+q, func(t *testing.T) {
				assert.Equal(t, tt.want, c.Classify(q))
			})
		}
	}
}

func TestIntentClassifier_Precedence(t *testing.T) {
	c := NewIntentClassifier(DefaultPatterns())

	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{name: "lunch shadows expenses and category", query: "lunch expenses last month", want: IntentLunch},
		{name: "cash flow shadows income", query: "income vs expenses this year", want: IntentCashFlow},
		{name: "merchant shadows category", query: "spent at costco on groceries", want: IntentMerchant},
		{name: "category shadows expenses", query: "grocery expenses", want: IntentSpendingCategory},
		{name: "stopword capture falls to expenses", query: "the expenses", want: IntentExpenses},
		{name: "dividends shadow income", query: "dividend income this year", want: IntentDividends},
		{name: "income shadows performance", query: "how much did i earn in returns", want: IntentIncome},
		{name: "holdings shadow allocation", query: "holdings distribution", want: IntentHoldings},
		{name: "holdings rule shadows top holdings", query: "top holdings", want: IntentHoldings},
		{name: "transactions shadow net worth", query: "transactions touching assets", want: IntentTransactions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.query))
		})
	}
}

func TestIntentClassifier_RuleOrder(t *testing.T) {
	c := NewIntentClassifier(DefaultPatterns())

	var order []string
	for _, r := range c.Rules() {
		order = append(order, r.Name)
	}
	assert.Equal(t, "lunch,cash_flow,merchant,spending_category,dividends,income,expenses,performance,holdings,allocation,transactions,net_worth",
		strings.Join(order, ","))
}

func TestIntentClassifier_RulesIndependently(t *testing.T) {
	c := NewIntentClassifier(DefaultPatterns())

	samples := map[Intent]string{
		IntentLunch:            "takeout lunch",
		IntentCashFlow:         "p&l",
		IntentMerchant:         "spent at target",
		IntentSpendingCategory: "travel costs",
		IntentDividends:        "dividend payout",
		IntentIncome:           "paycheck",
		IntentExpenses:         "outflow",
		IntentPerformance:      "profit",
		IntentHoldings:         "securities",
		IntentAllocation:       "breakdown",
		IntentTransactions:     "trades",
		IntentNetWorth:         "portfolio value",
	}

	for _, rule := range c.Rules() {
		sample, ok := samples[rule.Intent]
		require.True(t, ok, rule.Name)
		assert.True(t, rule.Match(sample), "rule %s should match %q", rule.Name, sample)
	}
}

func TestIntentClassifier_Deterministic(t *testing.T) {
	c := NewIntentClassifier(DefaultPatterns())

	for _, q := range []string{"lunch expenses last month", "spending at starbucks", "xyz123", "net worth"} {
		first := c.Classify(q)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, c.Classify(q))
		}
	}
}
