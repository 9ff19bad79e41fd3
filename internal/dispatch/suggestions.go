package dispatch

// UnknownMessage is returned for queries no rule recognizes.
const UnknownMessage = "Could not understand query"

// Suggestions returns example queries that every rule chain understands.
func Suggestions() []string {
	return []string{
		"What's my net worth?",
		"How much did I earn last month?",
		"How much did I spend on beer?",
		"Show my expenses",
		"What are my dividends?",
		"How's my cash flow?",
		"How much at Starbucks?",
		"How much did I spend on lunch?",
	}
}

func unknownPayload(raw string) UnknownPayload {
	return UnknownPayload{
		Message:     UnknownMessage,
		Query:       raw,
		Suggestions: Suggestions(),
	}
}
