package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

func sampleCards() []engine.Card {
	return []engine.Card{
		{ID: "visa", Name: "Visa Platinum", Billing: engine.BillingProfile{CutDay: 15, PaymentDays: 20}, ColorTag: "2196F3"},
		{ID: "mc", Name: "Mastercard Gold", Billing: engine.BillingProfile{CutDay: 5, PaymentDays: 25}, ColorTag: "FFC107"},
		{ID: "amex", Name: "Amex Preferred", Billing: engine.BillingProfile{CutDay: 22, PaymentDays: 1}, ColorTag: "4CAF50"},
	}
}

func TestProject_SortedByDueDate(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	snaps := engine.Project(sampleCards(), now)
	require.Len(t, snaps, 3)

	// amex: cut Jan 22 -> due Jan 23; mc: cut Feb 5 -> due Mar 2; visa: cut Feb 15 -> due Mar 7.
	assert.Equal(t, []string{"amex", "mc", "visa"}, []string{snaps[0].ID, snaps[1].ID, snaps[2].ID})
	assert.Equal(t, time.Date(2025, 1, 23, 0, 0, 0, 0, time.UTC), snaps[0].PaymentDueDate)
	assert.Equal(t, 3, snaps[0].DaysUntil)
	assert.Equal(t, engine.UrgencyUrgent, snaps[0].Urgency)
	assert.Equal(t, engine.UrgencyNormal, snaps[2].Urgency)
	assert.Equal(t, "4CAF50", snaps[0].ColorTag)
}

func TestProject_TiesOrderedByName(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	same := engine.BillingProfile{CutDay: 10, PaymentDays: 10}
	cards := []engine.Card{
		{ID: "2", Name: "Zeta", Billing: same},
		{ID: "1", Name: "Alpha", Billing: same},
	}

	snaps := engine.Project(cards, now)
	assert.Equal(t, "Alpha", snaps[0].Name)
	assert.Equal(t, "Zeta", snaps[1].Name)
}

func TestProject_JSONShape(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	data, err := json.Marshal(engine.Project(sampleCards()[:1], now))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "visa", decoded[0]["id"])
	assert.Equal(t, "normal", decoded[0]["status"])
	assert.Equal(t, "2196F3", decoded[0]["color"])
	assert.Contains(t, decoded[0], "payment_due_date")
}

func TestDueWithin(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	due := engine.DueWithin(sampleCards(), now, 7)
	require.Len(t, due, 1)
	assert.Equal(t, "amex", due[0].ID)

	assert.Empty(t, engine.DueWithin(sampleCards(), now, 1))
}

func TestDueWithin_SpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Clocks jump forward at 02:00 on Mar 9, 2025.
	now := time.Date(2025, 3, 8, 23, 30, 0, 0, loc)
	cards := []engine.Card{
		{ID: "eight", Name: "Eight days", Billing: engine.BillingProfile{CutDay: 9, PaymentDays: 7}},
		{ID: "seven", Name: "Seven days", Billing: engine.BillingProfile{CutDay: 9, PaymentDays: 6}},
	}

	due := engine.DueWithin(cards, now, 7)
	require.Len(t, due, 1)
	assert.Equal(t, "seven", due[0].ID)
	assert.Equal(t, 7, due[0].DaysUntil)
}

func TestUpcomingCuts(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	cuts := engine.UpcomingCuts(sampleCards(), now)
	require.Len(t, cuts, 3)
	assert.Equal(t, "amex", cuts[0].Card.ID)
	assert.Equal(t, time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC), cuts[0].Date)
	assert.Equal(t, "mc", cuts[1].Card.ID)
	assert.Equal(t, "visa", cuts[2].Card.ID)
}

func TestFilterByUrgency(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	urgent := engine.FilterByUrgency(sampleCards(), now, engine.UrgencyUrgent)
	require.Len(t, urgent, 1)
	assert.Equal(t, "amex", urgent[0].ID)

	assert.Empty(t, engine.FilterByUrgency(sampleCards(), now, engine.UrgencyOverdue))
	assert.Len(t, engine.FilterByUrgency(sampleCards(), now, engine.UrgencyNormal), 2)
}
