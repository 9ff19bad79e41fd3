package query

// Rule is one step of the intent precedence chain.
type Rule struct {
	Match  func(text string) bool
	Name   string
	Intent Intent
}

// IntentClassifier maps text to an Intent by evaluating rules in order and
// returning the first that matches. Earlier rules shadow later ones: "lunch
// expenses" is Lunch, never Expenses.
type IntentClassifier struct {
	rules []Rule
}

// NewIntentClassifier builds the standard precedence chain.
func NewIntentClassifier(p *Patterns) *IntentClassifier {
	return &IntentClassifier{rules: []Rule{
		{Name: "lunch", Intent: IntentLunch, Match: func(t string) bool { return matchAny(p.Lunch, t) }},
		{Name: "cash_flow", Intent: IntentCashFlow, Match: func(t string) bool { return matchAny(p.CashFlow, t) }},
		{Name: "merchant", Intent: IntentMerchant, Match: func(t string) bool {
			_, ok := firstCapture(p.Merchant, t, p.MerchantStopwords)
			return ok
		}},
		{Name: "spending_category", Intent: IntentSpendingCategory, Match: func(t string) bool {
			_, ok := firstCapture(p.SpendingCategory, t, p.CategoryStopwords)
			return ok
		}},
		{Name: "dividends", Intent: IntentDividends, Match: func(t string) bool { return matchAny(p.Dividends, t) }},
		{Name: "income", Intent: IntentIncome, Match: func(t string) bool { return matchAny(p.Income, t) }},
		{Name: "expenses", Intent: IntentExpenses, Match: func(t string) bool { return matchAny(p.Expenses, t) }},
		{Name: "performance", Intent: IntentPerformance, Match: func(t string) bool { return matchAny(p.Performance, t) }},
		{Name: "holdings", Intent: IntentHoldings, Match: func(t string) bool { return matchAny(p.Holdings, t) }},
		{Name: "allocation", Intent: IntentAllocation, Match: func(t string) bool { return matchAny(p.Allocation, t) }},
		{Name: "transactions", Intent: IntentTransactions, Match: func(t string) bool { return matchAny(p.Transactions, t) }},
		{Name: "net_worth", Intent: IntentNetWorth, Match: func(t string) bool { return matchAny(p.NetWorth, t) }},
	}}
}

// Classify returns the intent of lowercased text.
func (c *IntentClassifier) Classify(text string) Intent {
	for _, rule := range c.rules {
		if rule.Match(text) {
			return rule.Intent
		}
	}
	return IntentUnknown
}

// Rules returns the precedence chain in evaluation order.
func (c *IntentClassifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
