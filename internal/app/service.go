// Package app wires the card store, the reminder scheduler and the
// notification sink into the operations the command line exposes.
package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"github.com/viczaid25/CreditCardApp/internal/notify"
)

// CardStore persists the full card list.
type CardStore interface {
	Load(ctx context.Context) ([]engine.Card, error)
	Save(ctx context.Context, cards []engine.Card) error
}

// FeedPublisher receives the rendered feeds.
type FeedPublisher interface {
	UpdateCalendar(data []byte)
	UpdateSnapshot(snaps []engine.Snapshot) error
}

// CardPatch lists the fields to change on a card. Nil fields, empty strings and
// out-of-range numbers leave the current value untouched.
type CardPatch struct {
	Name        *string
	CutDay      *int
	PaymentDays *int
	ColorTag    *string
}

// CardService keeps the in-memory card list, the store and the pending
// reminders consistent.
type CardService struct {
	store     CardStore
	scheduler *engine.Scheduler
	clock     engine.Clock

	// NewID and PickColor are replaceable for deterministic tests.
	NewID     func() string
	PickColor func() string

	mu    sync.Mutex
	cards []engine.Card
}

// NewCardService creates a service with an empty card list. Call Load before use.
func NewCardService(store CardStore, scheduler *engine.Scheduler, clock engine.Clock) *CardService {
	return &CardService{
		store:     store,
		scheduler: scheduler,
		clock:     clock,
		NewID:     uuid.NewString,
		PickColor: randomPaletteColor,
	}
}

func randomPaletteColor() string {
	return config.Palette[rand.IntN(len(config.Palette))]
}

// Load replaces the in-memory list with the stored one.
func (s *CardService) Load(ctx context.Context) error {
	cards, err := s.store.Load(ctx)
	if err != nil {
		return &engine.StorageError{Op: "load", Err: err}
	}

	s.mu.Lock()
	s.cards = cards
	s.mu.Unlock()

	slog.DebugContext(ctx, config.MsgCardsLoaded,
		config.LogKeyComponent, config.CompService,
		config.LogKeyCount, len(cards),
	)
	return nil
}

// AddCard validates and stores a new card, then schedules its reminders.
// An empty colorTag picks a random palette colour.
func (s *CardService) AddCard(ctx context.Context, name string, cutDay, paymentDays int, colorTag string) (engine.Card, error) {
	card := engine.Card{
		Name:        strings.TrimSpace(name),
		Billing:     engine.BillingProfile{CutDay: cutDay, PaymentDays: paymentDays},
		ColorTag:    colorTag,
		LastUpdated: s.clock.Now(),
	}
	if err := card.Validate(); err != nil {
		return engine.Card{}, err
	}
	if card.ColorTag == "" {
		card.ColorTag = s.PickColor()
	}
	card.ID = s.NewID()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = append(s.cards, card)
	scheduleErr := s.scheduler.Reconcile(ctx, card)
	saveErr := s.save(ctx)

	slog.InfoContext(ctx, config.MsgCardAdded,
		config.LogKeyComponent, config.CompService,
		config.LogKeyCardID, card.ID,
		config.LogKeyName, card.Name,
	)
	return card, errors.Join(saveErr, scheduleErr)
}

// UpdateCard applies a patch to a card, replacing its reminders.
func (s *CardService) UpdateCard(ctx context.Context, id string, patch CardPatch) (engine.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return engine.Card{}, engine.ErrCardNotFound
	}

	card := applyPatch(s.cards[idx], patch)
	card.LastUpdated = s.clock.Now()

	cancelErr := s.scheduler.Cancel(ctx, id)
	s.cards[idx] = card
	scheduleErr := s.scheduler.Reconcile(ctx, card)
	saveErr := s.save(ctx)

	slog.InfoContext(ctx, config.MsgCardUpdated,
		config.LogKeyComponent, config.CompService,
		config.LogKeyCardID, card.ID,
		config.LogKeyName, card.Name,
	)
	return card, errors.Join(saveErr, cancelErr, scheduleErr)
}

func applyPatch(card engine.Card, patch CardPatch) engine.Card {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		card.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.CutDay != nil && *patch.CutDay >= config.MinCutDay && *patch.CutDay <= config.MaxCutDay {
		card.Billing.CutDay = *patch.CutDay
	}
	if patch.PaymentDays != nil && *patch.PaymentDays >= config.MinPaymentDays && *patch.PaymentDays <= config.MaxPaymentDays {
		card.Billing.PaymentDays = *patch.PaymentDays
	}
	if patch.ColorTag != nil && *patch.ColorTag != "" {
		card.ColorTag = *patch.ColorTag
	}
	return card
}

// DeleteCard cancels a card's reminders and removes it.
func (s *CardService) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return engine.ErrCardNotFound
	}

	cancelErr := s.scheduler.Cancel(ctx, id)
	s.cards = slices.Delete(s.cards, idx, idx+1)
	saveErr := s.save(ctx)

	slog.InfoContext(ctx, config.MsgCardDeleted,
		config.LogKeyComponent, config.CompService,
		config.LogKeyCardID, id,
	)
	return errors.Join(saveErr, cancelErr)
}

// ListCards returns a copy of the current list in insertion order.
func (s *CardService) ListCards() []engine.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cards)
}

// Snapshots projects the current list at the clock's time.
func (s *CardService) Snapshots() []engine.Snapshot {
	return engine.Project(s.ListCards(), s.clock.Now())
}

// RescheduleAll rebuilds every pending reminder from the current list.
func (s *CardService) RescheduleAll(ctx context.Context) error {
	return s.scheduler.RescheduleAll(ctx, s.ListCards())
}

// HandleFired schedules the next occurrence of a delivered reminder. The list
// is reloaded first since cards may have been edited by another process.
func (s *CardService) HandleFired(ctx context.Context, fired engine.ReminderRequest) {
	log := slog.With(
		config.LogKeyComponent, config.CompService,
		config.LogKeyCardID, fired.CardID,
	)

	if err := s.Load(ctx); err != nil {
		log.WarnContext(ctx, config.ErrStoreRead, config.LogKeyError, err)
	}

	s.mu.Lock()
	idx := s.indexOf(fired.CardID)
	var card engine.Card
	if idx >= 0 {
		card = s.cards[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		log.InfoContext(ctx, config.MsgFiredCardMissing, config.LogKeyKey, fired.Key)
		return
	}

	// A payment reminder can land before the cut date it belongs to. Rescheduling
	// would then produce the same fire time again, so drop it until the next cut.
	stale := false
	for _, next := range s.scheduler.Requests(card) {
		if next.Kind == fired.Kind && !next.FireAt.After(fired.FireAt) {
			stale = true
		}
	}

	if err := s.scheduler.Reconcile(ctx, card); err != nil {
		log.ErrorContext(ctx, config.ErrReschedule, config.LogKeyError, err)
		return
	}
	if stale {
		if err := s.scheduler.Sink.Cancel(ctx, []string{fired.Key}); err != nil {
			log.ErrorContext(ctx, config.ErrReschedule, config.LogKeyError, err)
		}
	}
}

// WatchAuthorization reschedules everything each time the sink becomes
// authorized. It returns the unsubscribe func.
func (s *CardService) WatchAuthorization(sink notify.Sink) func() {
	return sink.OnAuthorizationChanged(func(granted bool) {
		if !granted {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.DispatchTimeout)
		defer cancel()

		if err := s.RescheduleAll(ctx); err != nil {
			slog.Error(config.ErrReschedule,
				config.LogKeyComponent, config.CompService,
				config.LogKeyError, err,
			)
		}
	})
}

// PublishFeed renders the pending reminders and the snapshots to pub.
func (s *CardService) PublishFeed(ctx context.Context, pub FeedPublisher, sink notify.Sink) error {
	pending, err := sink.Pending(ctx)
	if err != nil {
		return err
	}
	data, err := notify.RenderCalendar(pending, s.clock.Now())
	if err != nil {
		return err
	}
	pub.UpdateCalendar(data)

	if err := pub.UpdateSnapshot(s.Snapshots()); err != nil {
		return err
	}

	slog.DebugContext(ctx, config.MsgFeedRefreshed,
		config.LogKeyComponent, config.CompService,
		config.LogKeyCount, len(pending),
	)
	return nil
}

func (s *CardService) indexOf(id string) int {
	return slices.IndexFunc(s.cards, func(c engine.Card) bool { return c.ID == id })
}

// save persists the list. Callers hold mu. A failure leaves memory as-is.
func (s *CardService) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.cards); err != nil {
		return &engine.StorageError{Op: "save", Err: err}
	}
	return nil
}
