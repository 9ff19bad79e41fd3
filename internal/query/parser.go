package query

import (
	"strings"
	"time"
)

// Parser classifies a query and extracts its parameters in one pass.
type Parser struct {
	classifier *IntentClassifier
	extractor  *ParameterExtractor
	resolver   *TimeRangeResolver
}

// NewParser creates a parser over the default pattern tables. A nil clock
// means time.Now.
func NewParser(now func() time.Time) *Parser {
	return NewParserWithPatterns(DefaultPatterns(), now)
}

// NewParserWithPatterns creates a parser over custom pattern tables.
func NewParserWithPatterns(p *Patterns, now func() time.Time) *Parser {
	return &Parser{
		classifier: NewIntentClassifier(p),
		extractor:  NewParameterExtractor(p),
		resolver:   NewTimeRangeResolver(now),
	}
}

// Parse turns raw text into a ParsedQuery. It never fails: unmatched text
// yields IntentUnknown with no parameters.
func (p *Parser) Parse(raw string) ParsedQuery {
	text := strings.ToLower(raw)

	q := ParsedQuery{
		Raw:    raw,
		Intent: p.classifier.Classify(text),
	}
	if tr, ok := p.resolver.Resolve(text); ok {
		q.TimeRange = &tr
	}
	if account, ok := p.extractor.Account(text); ok {
		q.AccountFilter = account
	}
	if category, ok := p.extractor.Category(text); ok {
		q.Category = category
	}
	if merchant, ok := p.extractor.Merchant(text); ok {
		q.Merchant = merchant
	}
	if threshold, ok := p.extractor.AmountThreshold(text); ok {
		q.AmountThreshold = &threshold
	}
	return q
}

// Today returns the parser clock's current date.
func (p *Parser) Today() time.Time {
	return p.resolver.Today()
}
