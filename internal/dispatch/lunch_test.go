package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-ask/internal/confidence"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/query"
	"github.com/Veraticus/spice-ask/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lunchFixtures() []model.Transaction {
	return []model.Transaction{
		// Accepted: both score 100.
		testutil.NewTransaction("l1").On(day(time.February, 5)).At(12, 30).Merchant("Chipotle").Category("restaurants").Spend(12.50).Build(),
		testutil.NewTransaction("l2").On(day(time.February, 20)).At(12, 10).Merchant("Chipotle").Spend(9.75).Build(),
		// Uncertain: both score 40.
		testutil.NewTransaction("u1").On(day(time.February, 15)).At(12, 0).Merchant("Corner Deli").Spend(40).Build(),
		testutil.NewTransaction("u2").On(day(time.February, 18)).At(20, 0).Merchant("Panera").Spend(45).Build(),
		// Candidate scoring 10.
		testutil.NewTransaction("r1").On(day(time.February, 10)).At(12, 30).Merchant("King Soupers").
			Provider("FOOD_AND_DRINK", "FOOD_AND_DRINK_GROCERIES").Spend(87.50).Build(),
		// Not a candidate.
		testutil.NewTransaction("n1").On(day(time.February, 7)).At(18, 0).Merchant("Home Depot").Spend(120).Build(),
		// Out of range.
		testutil.NewTransaction("o1").On(day(time.March, 2)).At(12, 0).Merchant("Chipotle").Spend(10).Build(),
		// Income is never lunch.
		testutil.NewTransaction("i1").On(day(time.February, 9)).At(12, 0).Merchant("Chipotle").Earn(12, "refund").Build(),
	}
}

func TestDispatcher_Ask_Lunch(t *testing.T) {
	d := newStoreDispatcher(t, lunchFixtures()...)

	resp, err := d.Ask(context.Background(), "how much did I spend on lunch last month")
	require.NoError(t, err)

	assert.Equal(t, query.IntentLunch, resp.Intent)
	require.NotNil(t, resp.Range)
	assert.Equal(t, day(time.February, 1), resp.Range.Start)
	assert.Equal(t, 5, resp.Extra["candidates"])
	assert.Equal(t, 1, resp.Extra["rejected"])
	assert.NotContains(t, resp.Extra, "default_range")

	payload, ok := resp.Payload.(LunchPayload)
	require.True(t, ok, "payload is %T", resp.Payload)

	t.Run("accepted", func(t *testing.T) {
		b := payload.Accepted
		assert.Equal(t, 2, b.Count)
		assertDecimal(t, "22.25", b.Total)

		require.Len(t, b.Transactions, 2)
		assert.Equal(t, "l2", b.Transactions[0].ID)
		assert.Equal(t, "12:10", b.Transactions[0].Time)
		assertDecimal(t, "9.75", b.Transactions[0].Amount)
		assert.Equal(t, 100, b.Transactions[0].Confidence)

		l1 := b.Transactions[1]
		assert.Equal(t, []string{
			"Lunch time (12:30)",
			"Known lunch merchant",
			"Typical lunch amount ($12.50)",
		}, l1.Reasons)

		require.Len(t, b.Merchants, 1)
		assert.Equal(t, "Chipotle", b.Merchants[0].Merchant)
		assert.Equal(t, 2, b.Merchants[0].Count)
		assertDecimal(t, "22.25", b.Merchants[0].Total)
		assertDecimal(t, "100", b.Merchants[0].AverageConfidence)
	})

	t.Run("uncertain", func(t *testing.T) {
		b := payload.Uncertain
		assert.Equal(t, 2, b.Count)
		assertDecimal(t, "85", b.Total)

		require.Len(t, b.Transactions, 2)
		assert.Equal(t, "u2", b.Transactions[0].ID)
		assert.Equal(t, 40, b.Transactions[0].Confidence)
		// Uncertain previews keep every reason.
		assert.Len(t, b.Transactions[1].Reasons, 3)

		require.Len(t, b.Merchants, 2)
		assert.Equal(t, "Panera", b.Merchants[0].Merchant)
		assert.Equal(t, "Corner Deli", b.Merchants[1].Merchant)
		assertDecimal(t, "40", b.Merchants[1].AverageConfidence)
	})
}

func TestDispatcher_Ask_LunchDefaultRange(t *testing.T) {
	d := newStoreDispatcher(t, lunchFixtures()...)

	resp, err := d.Ask(context.Background(), "lunch")
	require.NoError(t, err)

	require.NotNil(t, resp.Range)
	assert.Equal(t, time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC), resp.Range.Start)
	assert.Equal(t, true, resp.Extra["default_range"])

	payload, ok := resp.Payload.(LunchPayload)
	require.True(t, ok, "payload is %T", resp.Payload)
	// The March purchase is now in range.
	assert.Equal(t, 3, payload.Accepted.Count)
}

func TestNewLunchBucket_Caps(t *testing.T) {
	scorer := confidence.NewDefaultScorer()

	var items []scored
	for i := 0; i < AcceptedPreviewLimit+5; i++ {
		txn := testutil.NewTransaction(string(rune('A'+i))).At(12, 0).Merchant("Subway").Spend(10).Build()
		items = append(items, scored{txn: txn, assessment: scorer.Score(txn)})
	}

	b := newLunchBucket(items, AcceptedPreviewLimit, AcceptedReasonLimit)

	assert.Equal(t, AcceptedPreviewLimit+5, b.Count)
	assert.Len(t, b.Transactions, AcceptedPreviewLimit)
	assertDecimal(t, "350", b.Total)
	for _, tx := range b.Transactions {
		assert.LessOrEqual(t, len(tx.Reasons), AcceptedReasonLimit)
	}
}

func TestMerchantBreakdown_AverageRounded(t *testing.T) {
	items := []scored{
		{txn: testutil.NewTransaction("a").Merchant("Deli").Build(), assessment: confidence.Assessment{Score: 60, Amount: 10}},
		{txn: testutil.NewTransaction("b").Merchant("Deli").Build(), assessment: confidence.Assessment{Score: 65, Amount: 10}},
		{txn: testutil.NewTransaction("c").Merchant("Deli").Build(), assessment: confidence.Assessment{Score: 65, Amount: 10}},
		{txn: testutil.NewTransaction("d").Merchant("Cafe").Build(), assessment: confidence.Assessment{Score: 90, Amount: 30}},
	}

	got := merchantBreakdown(items)

	require.Len(t, got, 2)
	// Ties on total break by name.
	assert.Equal(t, "Cafe", got[0].Merchant)
	assert.Equal(t, "Deli", got[1].Merchant)
	assertDecimal(t, "63.3", got[1].AverageConfidence)
	assert.Equal(t, 3, got[1].Count)
}
