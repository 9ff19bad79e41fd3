package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday.
var fixedNow = time.Date(2024, time.March, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeRangeResolver_Resolve(t *testing.T) {
	r := NewTimeRangeResolver(fixedClock)

	tests := []struct {
		name      string
		text      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{name: "today", text: "what did i spend today", wantStart: day(2024, 3, 14), wantEnd: day(2024, 3, 14)},
		{name: "yesterday", text: "spending yesterday", wantStart: day(2024, 3, 13), wantEnd: day(2024, 3, 13)},
		{name: "this week starts monday", text: "this week", wantStart: day(2024, 3, 11), wantEnd: day(2024, 3, 14)},
		{name: "last week is monday to sunday", text: "last week", wantStart: day(2024, 3, 4), wantEnd: day(2024, 3, 10)},
		{name: "this month", text: "this month", wantStart: day(2024, 3, 1), wantEnd: day(2024, 3, 14)},
		{name: "last month covers leap day", text: "last month", wantStart: day(2024, 2, 1), wantEnd: day(2024, 2, 29)},
		{name: "past n days", text: "past 30 days", wantStart: day(2024, 2, 13), wantEnd: day(2024, 3, 14)},
		{name: "last n days singular", text: "last 1 day", wantStart: day(2024, 3, 13), wantEnd: day(2024, 3, 14)},
		{name: "last n months uses 30 day months", text: "last 3 months", wantStart: day(2023, 12, 1), wantEnd: day(2024, 3, 14)},
		{name: "this year", text: "this year", wantStart: day(2024, 1, 1), wantEnd: day(2024, 3, 14)},
		{name: "last year is trailing 365 days", text: "last year", wantStart: day(2023, 3, 15), wantEnd: day(2024, 3, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
		})
	}
}

func TestTimeRangeResolver_NoMatch(t *testing.T) {
	r := NewTimeRangeResolver(fixedClock)

	_, ok := r.Resolve("what is my net worth")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestTimeRangeResolver_FirstPhraseWins(t *testing.T) {
	r := NewTimeRangeResolver(fixedClock)

	// "last month" is listed before "last year", regardless of text order.
	got, ok := r.Resolve("last year compared to last month")
	require.True(t, ok)
	assert.Equal(t, day(2024, 2, 1), got.Start)
	assert.Equal(t, day(2024, 2, 29), got.End)
}

func TestTimeRangeResolver_RangesEndByToday(t *testing.T) {
	phrases := []string{
		"today", "yesterday", "this week", "last week", "this month", "last month",
		"past 7 days", "last 90 days", "last 6 months", "this year", "last year",
	}

	// Every weekday and a month boundary.
	clocks := []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 3, 23, 59, 0, 0, time.UTC),
		time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 6, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 7, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 8, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC),
	}

	for _, now := range clocks {
		now := now
		r := NewTimeRangeResolver(func() time.Time { return now })
		today := r.Today()
		for _, phrase := range phrases {
			got, ok := r.Resolve(phrase)
			require.True(t, ok, phrase)
			assert.False(t, got.Start.After(got.End), "%s at %s", phrase, now)
			assert.False(t, got.End.After(today), "%s at %s", phrase, now)
		}
	}
}

func TestTimeRangeResolver_OverflowingCountSkipped(t *testing.T) {
	r := NewTimeRangeResolver(fixedClock)

	_, ok := r.Resolve("past 99999999999999999999999 days")
	assert.False(t, ok)
}
