package query

import "regexp"

// CategoryAlias maps a canonical spending category to its synonyms.
type CategoryAlias struct {
	Category string
	Synonyms []string
}

// Patterns holds the static pattern tables used by the classifier and the
// extractor. Tables are compiled once and never mutated.
type Patterns struct {
	Lunch            []*regexp.Regexp
	CashFlow         []*regexp.Regexp
	Merchant         []*regexp.Regexp
	SpendingCategory []*regexp.Regexp
	Dividends        []*regexp.Regexp
	Income           []*regexp.Regexp
	Expenses         []*regexp.Regexp
	Performance      []*regexp.Regexp
	Holdings         []*regexp.Regexp
	Allocation       []*regexp.Regexp
	Transactions     []*regexp.Regexp
	NetWorth         []*regexp.Regexp

	// Captures equal to one of these words are not categories or merchants.
	CategoryStopwords map[string]bool
	MerchantStopwords map[string]bool

	Aliases []CategoryAlias
}

// DefaultPatterns returns the built-in pattern tables.
func DefaultPatterns() *Patterns {
	return &Patterns{
		Lunch: compileAll(
			`lunch`,
			`lunch\s+spending`,
			`spent\s+on\s+lunch`,
			`how\s+much\s+(?:did\s+i\s+)?spend\s+on\s+lunch`,
			`lunch\s+expenses`,
			`takeout\s+lunch`,
		),
		CashFlow: compileAll(
			`cash\s+flow`,
			`income\s+vs\s+expenses`,
			`money\s+in\s+vs\s+out`,
			`profit\s+and\s+loss`,
			`p&l`,
			`earnings\s+vs\s+spending`,
		),
		Merchant: compileAll(
			`spent\s+at\s+([\p{L}\p{N}_]+)`,
			`([\p{L}\p{N}_]+)\s+transactions\s+at`,
			`transactions\s+at\s+([\p{L}\p{N}_]+)`,
			`how\s+much\s+at\s+([\p{L}\p{N}_]+)`,
			`purchases\s+from\s+([\p{L}\p{N}_]+)`,
			`spending\s+at\s+([\p{L}\p{N}_]+)`,
		),
		SpendingCategory: compileAll(
			`spent\s+on\s+([\p{L}\p{N}_]+)`,
			`spending\s+on\s+([\p{L}\p{N}_]+)`,
			`([\p{L}\p{N}_]+)\s+spending`,
			`how\s+much\s+(?:did\s+i\s+)?spend\s+on\s+([\p{L}\p{N}_]+)`,
			`how\s+much\s+for\s+([\p{L}\p{N}_]+)`,
			`([\p{L}\p{N}_]+)\s+expenses`,
			`([\p{L}\p{N}_]+)\s+costs`,
		),
		Dividends: compileAll(
			`dividends`,
			`dividend\s+income`,
			`dividend\s+payout`,
			`how\s+much\s+in\s+dividends`,
		),
		Income: compileAll(
			`income`,
			`salary`,
			`paystub`,
			`paycheck`,
			`earnings`,
			`how\s+much\s+did\s+i\s+earn`,
			`how\s+much\s+do\s+i\s+make`,
			`revenue`,
			`payroll`,
		),
		Expenses: compileAll(
			`expenses`,
			`spending`,
			`spent`,
			`costs`,
			`how\s+much\s+did\s+i\s+spend`,
			`what\s+did\s+i\s+spend`,
			`outgoings`,
			`outflow`,
		),
		Performance: compileAll(
			`performance`,
			`performing`,
			`how\s+did\s+(?:my\s+)?portfolio\s+do`,
			`how\s+is\s+(?:my\s+)?portfolio\s+performing`,
			`return`,
			`gain`,
			`loss`,
			`profit`,
			`how\s+much\s+did\s+i\s+(?:make|lose)`,
		),
		Holdings: compileAll(
			`holdings`,
			`stocks`,
			`securities`,
			`what\s+do\s+i\s+own`,
			`investments`,
			`list\s+(?:my\s+)?investments`,
		),
		Allocation: compileAll(
			`allocation`,
			`allocated`,
			`breakdown`,
			`distribution`,
			`what\s+am\s+i\s+invested\s+in`,
			`how\s+is\s+(?:my\s+)?portfolio\s+allocated`,
			`top\s+holdings`,
		),
		Transactions: compileAll(
			`transactions`,
			`trades`,
			`activity`,
			`what\s+did\s+i\s+(?:buy|sell)`,
		),
		NetWorth: compileAll(
			`net\s+worth`,
			`how\s+much\s+am\s+i\s+worth`,
			`total\s+value`,
			`portfolio\s+value`,
			`assets`,
		),
		CategoryStopwords: wordSet("my", "the", "show", "what", "how", "all", "total"),
		MerchantStopwords: wordSet("my", "the", "show", "list", "all", "recent"),
		Aliases: []CategoryAlias{
			{Category: "beer", Synonyms: []string{"beer", "alcohol", "bar", "brewery", "pub", "liquor", "wine", "drinks"}},
			{Category: "restaurants", Synonyms: []string{"restaurant", "dining", "food", "eat", "cafe", "coffee", "lunch", "dinner"}},
			{Category: "gas", Synonyms: []string{"gas", "fuel", "gasoline", "petrol", "filling station"}},
			{Category: "groceries", Synonyms: []string{"grocery", "supermarket", "food store", "grocery store"}},
			{Category: "bills", Synonyms: []string{"bill", "utility", "electric", "water", "internet", "phone", "cable"}},
			{Category: "entertainment", Synonyms: []string{"entertainment", "movie", "theater", "concert", "streaming"}},
			{Category: "shopping", Synonyms: []string{"shopping", "retail", "store", "amazon", "online"}},
			{Category: "transport", Synonyms: []string{"transport", "uber", "lyft", "taxi", "transit", "bus", "train"}},
			{Category: "health", Synonyms: []string{"health", "medical", "doctor", "pharmacy", "gym", "fitness"}},
		},
	}
}

// Canonical maps a token to its canonical category name, if it has one.
func (p *Patterns) Canonical(token string) (string, bool) {
	for _, alias := range p.Aliases {
		if token == alias.Category {
			return alias.Category, true
		}
		for _, synonym := range alias.Synonyms {
			if token == synonym {
				return alias.Category, true
			}
		}
	}
	return "", false
}

// firstCapture runs patterns in order and returns the first capture that is
// not a stopword.
func firstCapture(patterns []*regexp.Regexp, text string, stopwords map[string]bool) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		if stopwords[m[1]] {
			continue
		}
		return m[1], true
	}
	return "", false
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
