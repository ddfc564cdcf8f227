package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// Deliverer shows a due reminder to the user.
type Deliverer interface {
	Deliver(ctx context.Context, req engine.ReminderRequest) error
}

// DeliverFunc adapts a function to Deliverer.
type DeliverFunc func(ctx context.Context, req engine.ReminderRequest) error

func (f DeliverFunc) Deliver(ctx context.Context, req engine.ReminderRequest) error {
	return f(ctx, req)
}

// LogDeliverer delivers reminders as structured log records.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, req engine.ReminderRequest) error {
	slog.InfoContext(ctx, req.Title,
		config.LogKeyComponent, config.CompDispatcher,
		config.LogKeyKey, req.Key,
		config.LogKeyCardID, req.CardID,
		config.LogKeyKind, req.Kind.String(),
		"body", req.Body,
	)
	return nil
}

// Dispatcher periodically fires the reminders whose time has come and removes
// them from the sink.
type Dispatcher struct {
	Sink      Sink
	Clock     engine.Clock
	Deliverer Deliverer

	// AfterFire runs after a reminder was delivered and removed.
	AfterFire func(ctx context.Context, req engine.ReminderRequest)

	// OnTick runs at the end of every scheduled tick.
	OnTick func(ctx context.Context)

	spec string
	cron *cron.Cron
}

// NewDispatcher creates a dispatcher running on a cron spec (e.g. "@every 1m").
func NewDispatcher(sink Sink, clock engine.Clock, deliverer Deliverer, spec string) *Dispatcher {
	return &Dispatcher{
		Sink:      sink,
		Clock:     clock,
		Deliverer: deliverer,
		spec:      spec,
	}
}

// Start registers the tick job and starts the cron engine.
func (d *Dispatcher) Start() error {
	c := cron.New(cron.WithLocation(time.Local))

	_, err := c.AddFunc(d.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.DispatchTimeout)
		defer cancel()

		if _, err := d.Tick(ctx); err != nil {
			slog.Error(config.ErrDeliver,
				config.LogKeyComponent, config.CompDispatcher,
				config.LogKeyError, err,
			)
		}
		if d.OnTick != nil {
			d.OnTick(ctx)
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %q: %w", config.ErrDispatchSpec, d.spec, err)
	}

	d.cron = c
	d.cron.Start()
	slog.Info(config.MsgDispatchStart,
		config.LogKeyComponent, config.CompDispatcher,
		config.LogKeySpec, d.spec,
	)
	return nil
}

// Stop halts the cron engine and waits for a running tick to finish.
func (d *Dispatcher) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
	slog.Info(config.MsgDispatchStop, config.LogKeyComponent, config.CompDispatcher)
}

// Tick delivers every pending reminder due at the clock's current time and
// returns how many were delivered. Nothing fires while the sink is not authorized.
// A failed delivery keeps its entry pending for the next tick.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	if !d.Sink.IsAuthorized() {
		return 0, nil
	}

	pending, err := d.Sink.Pending(ctx)
	if err != nil {
		return 0, err
	}

	now := d.Clock.Now()
	delivered := 0
	var errs []error

	for _, req := range pending {
		if req.FireAt.After(now) {
			// Pending is sorted, nothing later is due either.
			break
		}
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		if err := d.Deliverer.Deliver(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", req.Key, err))
			continue
		}
		if err := d.Sink.Cancel(ctx, []string{req.Key}); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", req.Key, err))
			continue
		}
		delivered++

		msg := config.MsgReminderFired
		if late := now.Sub(req.FireAt); late > time.Minute {
			msg = config.MsgReminderLate
			slog.InfoContext(ctx, msg,
				config.LogKeyComponent, config.CompDispatcher,
				config.LogKeyKey, req.Key,
				config.LogKeyLateBy, late.String(),
			)
		} else {
			slog.DebugContext(ctx, msg,
				config.LogKeyComponent, config.CompDispatcher,
				config.LogKeyKey, req.Key,
			)
		}

		if d.AfterFire != nil {
			d.AfterFire(ctx, req)
		}
	}

	slog.DebugContext(ctx, config.MsgDispatchTick,
		config.LogKeyComponent, config.CompDispatcher,
		config.LogKeyCount, delivered,
	)
	return delivered, errors.Join(errs...)
}
