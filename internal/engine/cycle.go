package engine

import (
	"time"

	"github.com/viczaid25/CreditCardApp/internal/config"
)

// Urgency classifies how close a payment due date is.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyUpcoming
	UrgencyUrgent
	UrgencyOverdue
)

var urgencyNames = [...]string{"normal", "upcoming", "urgent", "overdue"}

func (u Urgency) String() string {
	if u < UrgencyNormal || u > UrgencyOverdue {
		return "unknown"
	}
	return urgencyNames[u]
}

// Color returns the palette colour associated with the urgency band.
func (u Urgency) Color() string {
	switch u {
	case UrgencyUpcoming:
		return config.ColorYellow
	case UrgencyUrgent:
		return config.ColorOrange
	case UrgencyOverdue:
		return config.ColorRed
	default:
		return config.ColorGreen
	}
}

// MessageKey returns the translation key of the urgency label.
func (u Urgency) MessageKey() string {
	switch u {
	case UrgencyUpcoming:
		return config.TKeyStatusUpcoming
	case UrgencyUrgent:
		return config.TKeyStatusUrgent
	case UrgencyOverdue:
		return config.TKeyStatusOverdue
	default:
		return config.TKeyStatusNormal
	}
}

// MarshalText encodes the urgency by name, used by the widget snapshot.
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// NextCutDate returns the next statement date at or after ref, at midnight in
// ref's location.
//
// The candidate is built in ref's month with the day clamped to the month's
// length (cutDay 31 in February yields Feb 28/29). If it is strictly before ref,
// the same rule is applied to the following month.
func NextCutDate(p BillingProfile, ref time.Time) time.Time {
	year, month, _ := ref.Date()
	cut := clampedDate(year, month, p.CutDay, ref.Location())
	if cut.Before(ref) {
		cut = clampedDate(year, month+1, p.CutDay, ref.Location())
	}
	return cut
}

// PaymentDueDate adds PaymentDays calendar days to NextCutDate.
func PaymentDueDate(p BillingProfile, ref time.Time) time.Time {
	return NextCutDate(p, ref).AddDate(0, 0, p.PaymentDays)
}

// DaysUntilPayment is DaysUntil(ref, PaymentDueDate(p, ref)).
func DaysUntilPayment(p BillingProfile, ref time.Time) int {
	return DaysUntil(ref, PaymentDueDate(p, ref))
}

// DaysUntil counts whole calendar days from ref's date to target's date.
// Time of day is ignored; the result is negative when target lies in the past.
func DaysUntil(ref, target time.Time) int {
	ry, rm, rd := ref.Date()
	ty, tm, td := target.In(ref.Location()).Date()
	from := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// UrgencyFor maps days until payment to an urgency band:
// <=0 overdue, 1..3 urgent, 4..7 upcoming, >7 normal.
func UrgencyFor(daysUntilPayment int) Urgency {
	switch {
	case daysUntilPayment <= 0:
		return UrgencyOverdue
	case daysUntilPayment <= config.UrgentMaxDays:
		return UrgencyUrgent
	case daysUntilPayment <= config.UpcomingMaxDays:
		return UrgencyUpcoming
	default:
		return UrgencyNormal
	}
}

// clampedDate builds midnight of (year, month, day) with day capped at the
// month's length. month may overflow into the next year.
func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

// daysIn returns the number of days in the month. Day 0 of the next month
// normalizes to the last day of this one.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
