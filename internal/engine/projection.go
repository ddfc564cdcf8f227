package engine

import (
	"cmp"
	"slices"
	"time"
)

// Snapshot is the flattened, read-only view of a card consumed by widgets and
// the JSON feed.
type Snapshot struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NextCutDate    time.Time `json:"next_cut_date"`
	PaymentDueDate time.Time `json:"payment_due_date"`
	DaysUntil      int       `json:"days_until_payment"`
	ColorTag       string    `json:"color"`
	Urgency        Urgency   `json:"status"`
}

// Project computes a snapshot per card relative to now, sorted by ascending
// payment due date. Ties keep a stable order by name then id.
func Project(cards []Card, now time.Time) []Snapshot {
	out := make([]Snapshot, 0, len(cards))
	for _, c := range cards {
		due := c.PaymentDueDate(now)
		days := DaysUntil(now, due)
		out = append(out, Snapshot{
			ID:             c.ID,
			Name:           c.Name,
			NextCutDate:    c.NextCutDate(now),
			PaymentDueDate: due,
			DaysUntil:      days,
			ColorTag:       c.ColorTag,
			Urgency:        UrgencyFor(days),
		})
	}
	slices.SortStableFunc(out, func(a, b Snapshot) int {
		if c := a.PaymentDueDate.Compare(b.PaymentDueDate); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// DueWithin returns the snapshots whose payment falls on a calendar day
// between today and today+days, both inclusive.
func DueWithin(cards []Card, now time.Time, days int) []Snapshot {
	var out []Snapshot
	for _, s := range Project(cards, now) {
		if s.DaysUntil >= 0 && s.DaysUntil <= days {
			out = append(out, s)
		}
	}
	return out
}

// CutEntry pairs a card with its next statement date.
type CutEntry struct {
	Card Card
	Date time.Time
}

// UpcomingCuts lists the next statement date of every card, earliest first.
func UpcomingCuts(cards []Card, now time.Time) []CutEntry {
	out := make([]CutEntry, 0, len(cards))
	for _, c := range cards {
		out = append(out, CutEntry{Card: c, Date: c.NextCutDate(now)})
	}
	slices.SortStableFunc(out, func(a, b CutEntry) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// FilterByUrgency keeps the cards currently in the given urgency band.
func FilterByUrgency(cards []Card, now time.Time, u Urgency) []Card {
	var out []Card
	for _, c := range cards {
		if c.Urgency(now) == u {
			out = append(out, c)
		}
	}
	return out
}
