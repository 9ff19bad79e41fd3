package query

import (
	"regexp"
	"strconv"
	"strings"
)

// ParameterExtractor pulls filters out of query text: account, category,
// merchant and an amount threshold. All methods expect lowercased text.
type ParameterExtractor struct {
	patterns       *Patterns
	accountExprs   []*regexp.Regexp
	merchantAtExpr *regexp.Regexp
	amountExprs    []*regexp.Regexp
	aliasExprs     []aliasExpr
}

type aliasExpr struct {
	re       *regexp.Regexp
	category string
}

// NewParameterExtractor builds an extractor over the given pattern tables.
func NewParameterExtractor(patterns *Patterns) *ParameterExtractor {
	e := &ParameterExtractor{
		patterns: patterns,
		accountExprs: compileAll(
			`in\s+account\s+"?([^"]+)"?`,
			`from\s+([\p{L}\p{N}_]+)\s+account`,
			`in\s+([\p{L}\p{N}_]+)(?:\s+account)?`,
		),
		merchantAtExpr: regexp.MustCompile(`(?:at|from)\s+([\p{L}\p{N}\s]+?)(?:\s|$|,|\.)`),
		amountExprs: compileAll(
			`(?:more|greater|over|above)\s+(?:than\s+)?\$?(\d+(?:\.\d+)?)`,
			`(?:less|under|below)\s+(?:than\s+)?\$?(\d+(?:\.\d+)?)`,
			`\$(\d+(?:\.\d+)?)\s+(?:or\s+)?(?:more|greater|over)`,
			`\$(\d+(?:\.\d+)?)\s+(?:or\s+)?(?:less|under)`,
		),
	}
	for _, alias := range patterns.Aliases {
		for _, synonym := range alias.Synonyms {
			e.aliasExprs = append(e.aliasExprs, aliasExpr{
				re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(synonym) + `\b`),
				category: alias.Category,
			})
		}
	}
	return e
}

// Account returns the account name or id the query is scoped to.
func (e *ParameterExtractor) Account(text string) (string, bool) {
	for _, re := range e.accountExprs {
		if m := re.FindStringSubmatch(text); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// Category returns the canonical spending category the query names. A
// captured word with no alias entry is returned as-is.
func (e *ParameterExtractor) Category(text string) (string, bool) {
	if token, ok := firstCapture(e.patterns.SpendingCategory, text, e.patterns.CategoryStopwords); ok {
		if canonical, known := e.patterns.Canonical(token); known {
			return canonical, true
		}
		return token, true
	}

	for _, alias := range e.aliasExprs {
		if alias.re.MatchString(text) {
			return alias.category, true
		}
	}
	return "", false
}

// Merchant returns the merchant the query names.
func (e *ParameterExtractor) Merchant(text string) (string, bool) {
	if merchant, ok := firstCapture(e.patterns.Merchant, text, e.patterns.MerchantStopwords); ok {
		return merchant, true
	}
	if m := e.merchantAtExpr.FindStringSubmatch(text); m != nil {
		if merchant := strings.TrimSpace(m[1]); merchant != "" {
			return merchant, true
		}
	}
	return "", false
}

// AmountThreshold returns the first dollar amount phrased as a bound.
// Whether the bound was a minimum or a maximum is not reported.
func (e *ParameterExtractor) AmountThreshold(text string) (float64, bool) {
	for _, re := range e.amountExprs {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}
