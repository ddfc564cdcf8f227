// Package notify holds the notification side of the reminder engine: keyed
// stores of pending reminders, the authorization subscription, the iCalendar
// rendering of what is pending and the dispatcher that fires due reminders.
package notify

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// Sink is a notification sink that also exposes its pending entries and the
// authorization switch.
type Sink interface {
	engine.NotificationSink

	// Pending lists the reminders waiting to fire, earliest first.
	Pending(ctx context.Context) ([]engine.ReminderRequest, error)

	// SetAuthorized records whether the user allows reminders. Handlers run
	// only when the value actually changes.
	SetAuthorized(ctx context.Context, authorized bool) error

	// OnAuthorizationChanged registers a handler and returns its unsubscribe func.
	OnAuthorizationChanged(fn func(granted bool)) (unsubscribe func())
}

// authHub fans out authorization transitions to subscribers.
type authHub struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(bool)
}

func (h *authHub) subscribe(fn func(bool)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handlers == nil {
		h.handlers = make(map[int]func(bool))
	}
	id := h.next
	h.next++
	h.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.handlers, id)
		})
	}
}

// publish calls every handler outside the lock so handlers may use the sink.
func (h *authHub) publish(granted bool) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.handlers))
	for id := range h.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.handlers[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(granted)
	}
}

func sortByFireAt(reqs []engine.ReminderRequest) {
	slices.SortFunc(reqs, func(a, b engine.ReminderRequest) int {
		if c := a.FireAt.Compare(b.FireAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}
