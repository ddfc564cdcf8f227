package engine

import (
	"strings"
	"time"

	"github.com/viczaid25/CreditCardApp/internal/config"
)

// BillingProfile holds the two recurrence rules of a card's billing cycle.
type BillingProfile struct {
	// CutDay is the statement day of month (1-31). Months shorter than CutDay
	// use their last day.
	CutDay int

	// PaymentDays is the offset in days from the cut date to the payment due date (1-30).
	PaymentDays int
}

// Validate rejects values outside the declared ranges.
// The calculator assumes a validated profile.
func (p BillingProfile) Validate() error {
	if p.CutDay < config.MinCutDay || p.CutDay > config.MaxCutDay {
		return &ValidationError{Field: config.FlagCutDay, Key: config.TKeyErrCutDay}
	}
	if p.PaymentDays < config.MinPaymentDays || p.PaymentDays > config.MaxPaymentDays {
		return &ValidationError{Field: config.FlagPaymentDays, Key: config.TKeyErrPaymentDays}
	}
	return nil
}

// Card is a credit card tracked by the calendar.
type Card struct {
	// ID is opaque and stable for the card's lifetime. Reminder keys derive from it.
	ID string

	// Name is the non-empty display name.
	Name string

	Billing BillingProfile

	// ColorTag is a display attribute (hex colour without '#'); the core ignores it.
	ColorTag string

	LastUpdated time.Time
}

// Validate checks the name and the billing profile.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: config.FlagName, Key: config.TKeyErrNameEmpty}
	}
	return c.Billing.Validate()
}

// NextCutDate is the card's next statement date relative to ref.
func (c Card) NextCutDate(ref time.Time) time.Time {
	return NextCutDate(c.Billing, ref)
}

// PaymentDueDate is the due date of the cycle closing at NextCutDate(ref).
func (c Card) PaymentDueDate(ref time.Time) time.Time {
	return PaymentDueDate(c.Billing, ref)
}

// DaysUntilPayment counts calendar days from ref to PaymentDueDate(ref).
func (c Card) DaysUntilPayment(ref time.Time) int {
	return DaysUntilPayment(c.Billing, ref)
}

// Urgency classifies the card's upcoming payment relative to ref.
func (c Card) Urgency(ref time.Time) Urgency {
	return UrgencyFor(c.DaysUntilPayment(ref))
}
