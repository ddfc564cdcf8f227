package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/viczaid25/CreditCardApp/internal/config"
)

// ReminderKind identifies which of the two per-card reminders a request is.
type ReminderKind int

const (
	KindCut ReminderKind = iota
	KindPayment
)

func (k ReminderKind) String() string {
	if k == KindPayment {
		return "payment"
	}
	return "cut"
}

// ReminderKey derives the sink key of a (card, kind) pair. Re-issuing a request
// with the same key replaces the pending one.
func ReminderKey(cardID string, kind ReminderKind) string {
	if kind == KindPayment {
		return config.KeyPrefixPayment + cardID
	}
	return config.KeyPrefixCut + cardID
}

// ReminderKeys returns both keys owned by a card.
func ReminderKeys(cardID string) []string {
	return []string{ReminderKey(cardID, KindPayment), ReminderKey(cardID, KindCut)}
}

// ReminderRequest is one pending reminder handed to the notification sink.
type ReminderRequest struct {
	Key    string
	CardID string
	Kind   ReminderKind
	FireAt time.Time
	Title  string
	Body   string
}

// NotificationSink is the external keyed store of pending reminders.
// Upsert must replace any pending entry with the same key; Cancel must ignore
// keys that are not pending.
type NotificationSink interface {
	IsAuthorized() bool
	Upsert(ctx context.Context, req ReminderRequest) error
	Cancel(ctx context.Context, keys []string) error
	CancelAll(ctx context.Context) error
}

// ReminderPolicy controls when reminders fire.
type ReminderPolicy struct {
	// DaysBefore is the payment reminder lead time before the due date.
	DaysBefore int
	// Hour and Minute are the local time of day both reminders fire at.
	Hour   int
	Minute int
}

// DefaultReminderPolicy fires at 09:00, three days before the due date.
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		DaysBefore: config.DefaultDaysBefore,
		Hour:       config.DefaultReminderHour,
		Minute:     config.DefaultReminderMinute,
	}
}

// Scheduler turns cards into reminder requests and keeps the sink in sync.
type Scheduler struct {
	Clock  Clock
	Sink   NotificationSink
	Policy ReminderPolicy

	// FormatReminder allows the caller to inject localized reminder text.
	// date is the cut date for KindCut and the due date for KindPayment.
	FormatReminder func(kind ReminderKind, card Card, date time.Time) (title, body string)

	// OnDenied is called once when reconcile is skipped for lack of
	// authorization, and again only after authorization was seen granted.
	OnDenied func()

	deniedReported atomic.Bool
}

// NewScheduler creates a scheduler with the default policy.
func NewScheduler(clock Clock, sink NotificationSink) *Scheduler {
	return &Scheduler{
		Clock:  clock,
		Sink:   sink,
		Policy: DefaultReminderPolicy(),
	}
}

// Requests builds the cut-date and payment reminders of a card relative to the clock.
func (s *Scheduler) Requests(card Card) []ReminderRequest {
	now := s.Clock.Now()
	cut := NextCutDate(card.Billing, now)
	due := cut.AddDate(0, 0, card.Billing.PaymentDays)

	cutTitle, cutBody := s.format(KindCut, card, cut)
	payTitle, payBody := s.format(KindPayment, card, due)

	return []ReminderRequest{
		{
			Key:    ReminderKey(card.ID, KindPayment),
			CardID: card.ID,
			Kind:   KindPayment,
			FireAt: s.atTimeOfDay(due.AddDate(0, 0, -s.Policy.DaysBefore)),
			Title:  payTitle,
			Body:   payBody,
		},
		{
			Key:    ReminderKey(card.ID, KindCut),
			CardID: card.ID,
			Kind:   KindCut,
			FireAt: s.atTimeOfDay(cut),
			Title:  cutTitle,
			Body:   cutBody,
		},
	}
}

// Reconcile schedules both reminders of a card, replacing any pending ones.
// It is a silent no-op while the sink is not authorized.
func (s *Scheduler) Reconcile(ctx context.Context, card Card) error {
	log := slog.With(
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyCardID, card.ID,
	)

	if !s.Sink.IsAuthorized() {
		s.reportDenied(ctx, log)
		return nil
	}
	s.deniedReported.Store(false)

	for _, req := range s.Requests(card) {
		if err := s.Sink.Upsert(ctx, req); err != nil {
			// Never leave one kind scheduled without the other.
			err = fmt.Errorf("schedule %s reminder for %s: %w", req.Kind, card.ID, err)
			if cerr := s.Sink.Cancel(ctx, ReminderKeys(card.ID)); cerr != nil {
				return errors.Join(err, fmt.Errorf("roll back reminders for %s: %w", card.ID, cerr))
			}
			return err
		}
		log.DebugContext(ctx, config.MsgReminderUpsert,
			config.LogKeyKey, req.Key,
			config.LogKeyKind, req.Kind.String(),
			config.LogKeyFireAt, req.FireAt,
		)
	}
	return nil
}

// Cancel removes both reminders of a card. Missing keys are not an error.
func (s *Scheduler) Cancel(ctx context.Context, cardID string) error {
	keys := ReminderKeys(cardID)
	if err := s.Sink.Cancel(ctx, keys); err != nil {
		return fmt.Errorf("cancel reminders for %s: %w", cardID, err)
	}
	slog.DebugContext(ctx, config.MsgReminderCancel,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyCardID, cardID,
		config.LogKeyKeys, keys,
	)
	return nil
}

// RescheduleAll clears every pending reminder and reconciles each card.
// A failing card does not stop the others; all failures are returned joined.
func (s *Scheduler) RescheduleAll(ctx context.Context, cards []Card) error {
	slog.InfoContext(ctx, config.MsgRescheduleAll,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyCount, len(cards),
	)

	if err := s.Sink.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancel all reminders: %w", err)
	}

	var errs []error
	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Reconcile(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) reportDenied(ctx context.Context, log *slog.Logger) {
	if s.deniedReported.Swap(true) {
		return
	}
	log.InfoContext(ctx, config.MsgNotAuthorized)
	if s.OnDenied != nil {
		s.OnDenied()
	}
}

func (s *Scheduler) atTimeOfDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, s.Policy.Hour, s.Policy.Minute, 0, 0, day.Location())
}

func (s *Scheduler) format(kind ReminderKind, card Card, date time.Time) (string, string) {
	if s.FormatReminder != nil {
		return s.FormatReminder(kind, card, date)
	}
	if kind == KindPayment {
		return config.FallbackPaymentTitle,
			fmt.Sprintf(config.FallbackPaymentBody, card.Name, date.Format(config.DateFormatDisplay))
	}
	return config.FallbackCutTitle, fmt.Sprintf(config.FallbackCutBody, card.Name)
}
