package query

import (
	"regexp"
	"strconv"
	"time"
)

// approxDaysPerMonth is the month length "last N months" counts back with.
const approxDaysPerMonth = 30

type timePhrase struct {
	re      *regexp.Regexp
	resolve func(today time.Time, m []string) (TimeRange, bool)
}

// TimeRangeResolver maps relative date phrases to concrete date ranges.
// Phrases are tried in a fixed order and the first match wins, so a query
// naming two periods only honors whichever is listed first.
type TimeRangeResolver struct {
	now     func() time.Time
	phrases []timePhrase
}

// NewTimeRangeResolver creates a resolver. A nil clock means time.Now.
func NewTimeRangeResolver(now func() time.Time) *TimeRangeResolver {
	if now == nil {
		now = time.Now
	}
	return &TimeRangeResolver{
		now: now,
		phrases: []timePhrase{
			{regexp.MustCompile(`today`), func(today time.Time, _ []string) (TimeRange, bool) {
				return TimeRange{Start: today, End: today}, true
			}},
			{regexp.MustCompile(`yesterday`), func(today time.Time, _ []string) (TimeRange, bool) {
				d := today.AddDate(0, 0, -1)
				return TimeRange{Start: d, End: d}, true
			}},
			{regexp.MustCompile(`this\s+week`), func(today time.Time, _ []string) (TimeRange, bool) {
				return TimeRange{Start: today.AddDate(0, 0, -isoWeekday(today)), End: today}, true
			}},
			{regexp.MustCompile(`last\s+week`), func(today time.Time, _ []string) (TimeRange, bool) {
				wd := isoWeekday(today)
				return TimeRange{
					Start: today.AddDate(0, 0, -(wd + 7)),
					End:   today.AddDate(0, 0, -(wd + 1)),
				}, true
			}},
			{regexp.MustCompile(`this\s+month`), func(today time.Time, _ []string) (TimeRange, bool) {
				return TimeRange{Start: firstOfMonth(today), End: today}, true
			}},
			{regexp.MustCompile(`last\s+month`), func(today time.Time, _ []string) (TimeRange, bool) {
				end := firstOfMonth(today).AddDate(0, 0, -1)
				return TimeRange{Start: firstOfMonth(end), End: end}, true
			}},
			{regexp.MustCompile(`past\s+(\d+)\s+days?`), trailingDays},
			{regexp.MustCompile(`last\s+(\d+)\s+days?`), trailingDays},
			{regexp.MustCompile(`last\s+(\d+)\s+months?`), func(today time.Time, m []string) (TimeRange, bool) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					return TimeRange{}, false
				}
				return TimeRange{
					Start: firstOfMonth(today.AddDate(0, 0, -n*approxDaysPerMonth)),
					End:   today,
				}, true
			}},
			{regexp.MustCompile(`last\s+year`), func(today time.Time, _ []string) (TimeRange, bool) {
				return TimeRange{Start: today.AddDate(0, 0, -365), End: today}, true
			}},
			{regexp.MustCompile(`this\s+year`), func(today time.Time, _ []string) (TimeRange, bool) {
				return TimeRange{Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), End: today}, true
			}},
		},
	}
}

// Resolve returns the range named by text, or false when text names none.
// Text is expected to be lowercased already.
func (r *TimeRangeResolver) Resolve(text string) (TimeRange, bool) {
	today := r.Today()
	for _, p := range r.phrases {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if tr, ok := p.resolve(today, m); ok {
			return tr, true
		}
	}
	return TimeRange{}, false
}

// Today returns the current date at midnight in the clock's location.
func (r *TimeRangeResolver) Today() time.Time {
	return truncateDay(r.now())
}

func trailingDays(today time.Time, m []string) (TimeRange, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return TimeRange{}, false
	}
	return TimeRange{Start: today.AddDate(0, 0, -n), End: today}, true
}

// isoWeekday returns days since Monday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
