package notify

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// MemorySink keeps pending reminders in process memory.
type MemorySink struct {
	mu         sync.RWMutex
	authorized bool
	pending    map[string]engine.ReminderRequest
	hub        authHub
}

var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty sink with the given authorization state.
func NewMemorySink(authorized bool) *MemorySink {
	return &MemorySink{
		authorized: authorized,
		pending:    make(map[string]engine.ReminderRequest),
	}
}

func (s *MemorySink) IsAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorized
}

func (s *MemorySink) SetAuthorized(_ context.Context, authorized bool) error {
	s.mu.Lock()
	changed := s.authorized != authorized
	s.authorized = authorized
	s.mu.Unlock()

	if changed {
		slog.Info(config.MsgAuthChanged,
			config.LogKeyComponent, config.CompSink,
			config.LogKeyAuthorized, authorized,
		)
		s.hub.publish(authorized)
	}
	return nil
}

func (s *MemorySink) OnAuthorizationChanged(fn func(granted bool)) func() {
	return s.hub.subscribe(fn)
}

func (s *MemorySink) Upsert(ctx context.Context, req engine.ReminderRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[req.Key] = req
	return nil
}

func (s *MemorySink) Cancel(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.pending, k)
	}
	return nil
}

func (s *MemorySink) CancelAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.pending)
	return nil
}

func (s *MemorySink) Pending(ctx context.Context) ([]engine.ReminderRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := slices.Collect(maps.Values(s.pending))
	s.mu.RUnlock()

	sortByFireAt(out)
	return out, nil
}
