package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"github.com/viczaid25/CreditCardApp/internal/store"
)

type sinkSchema struct {
	Version    int              `toml:"version"`
	Authorized bool             `toml:"authorized"`
	Reminders  []reminderSchema `toml:"reminders"`
}

type reminderSchema struct {
	Key    string `toml:"key"`
	CardID string `toml:"card_id"`
	Kind   string `toml:"kind"`
	FireAt string `toml:"fire_at"`
	Title  string `toml:"title"`
	Body   string `toml:"body"`
}

// FileSink persists pending reminders and the authorization flag in a TOML
// file, so CLI invocations and the long-running dispatcher share one queue.
// Every operation re-reads the file.
type FileSink struct {
	path string
	mu   sync.Mutex
	hub  authHub
}

var _ Sink = (*FileSink)(nil)

// NewFileSink returns a sink stored at path. Missing files read as an empty,
// unauthorized sink.
func NewFileSink(path string) (*FileSink, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve reminders path: %w", err)
	}
	return &FileSink{path: filepath.Clean(abs)}, nil
}

func (s *FileSink) IsAuthorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		slog.Warn(config.ErrSinkRead,
			config.LogKeyComponent, config.CompSink,
			config.LogKeyFile, s.path,
			config.LogKeyError, err,
		)
		return false
	}
	return file.Authorized
}

func (s *FileSink) SetAuthorized(ctx context.Context, authorized bool) error {
	changed := false
	err := s.update(ctx, func(file *sinkSchema) {
		changed = file.Authorized != authorized
		file.Authorized = authorized
	})
	if err != nil {
		return err
	}

	if changed {
		slog.Info(config.MsgAuthChanged,
			config.LogKeyComponent, config.CompSink,
			config.LogKeyAuthorized, authorized,
		)
		s.hub.publish(authorized)
	}
	return nil
}

func (s *FileSink) OnAuthorizationChanged(fn func(granted bool)) func() {
	return s.hub.subscribe(fn)
}

func (s *FileSink) Upsert(ctx context.Context, req engine.ReminderRequest) error {
	return s.update(ctx, func(file *sinkSchema) {
		entry := toReminderSchema(req)
		for i := range file.Reminders {
			if file.Reminders[i].Key == req.Key {
				file.Reminders[i] = entry
				return
			}
		}
		file.Reminders = append(file.Reminders, entry)
	})
}

func (s *FileSink) Cancel(ctx context.Context, keys []string) error {
	return s.update(ctx, func(file *sinkSchema) {
		file.Reminders = slices.DeleteFunc(file.Reminders, func(r reminderSchema) bool {
			return slices.Contains(keys, r.Key)
		})
	})
}

func (s *FileSink) CancelAll(ctx context.Context) error {
	return s.update(ctx, func(file *sinkSchema) {
		file.Reminders = nil
	})
}

func (s *FileSink) Pending(ctx context.Context) ([]engine.ReminderRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	file, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]engine.ReminderRequest, 0, len(file.Reminders))
	for _, r := range file.Reminders {
		req, err := fromReminderSchema(r)
		if err != nil {
			// Skipped rather than fired at the zero time.
			slog.WarnContext(ctx, config.ErrSinkDecode,
				config.LogKeyComponent, config.CompSink,
				config.LogKeyKey, r.Key,
				config.LogKeyError, err,
			)
			continue
		}
		out = append(out, req)
	}
	sortByFireAt(out)
	return out, nil
}

// update runs a read-modify-write cycle under the sink lock.
func (s *FileSink) update(ctx context.Context, mutate func(*sinkSchema)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}
	mutate(&file)
	file.Version = config.FileSchemaVersion

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSinkWrite, err)
	}
	if err := store.WriteAtomic(s.path, data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSinkWrite, err)
	}
	return nil
}

func (s *FileSink) read() (sinkSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sinkSchema{}, nil
		}
		return sinkSchema{}, fmt.Errorf("%s: %w", config.ErrSinkRead, err)
	}

	var file sinkSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return sinkSchema{}, fmt.Errorf("%s: %w", config.ErrSinkDecode, err)
	}
	if file.Version > config.FileSchemaVersion {
		return sinkSchema{}, fmt.Errorf("%s: %d", config.ErrStoreVersion, file.Version)
	}
	return file, nil
}

func toReminderSchema(r engine.ReminderRequest) reminderSchema {
	return reminderSchema{
		Key:    r.Key,
		CardID: r.CardID,
		Kind:   r.Kind.String(),
		FireAt: r.FireAt.Format(config.DateTimeFormat),
		Title:  r.Title,
		Body:   r.Body,
	}
}

func fromReminderSchema(r reminderSchema) (engine.ReminderRequest, error) {
	kind := engine.KindCut
	if r.Kind == engine.KindPayment.String() {
		kind = engine.KindPayment
	}
	fireAt, err := time.Parse(config.DateTimeFormat, r.FireAt)
	if err != nil {
		return engine.ReminderRequest{}, fmt.Errorf("fire_at of %s: %w", r.Key, err)
	}
	return engine.ReminderRequest{
		Key:    r.Key,
		CardID: r.CardID,
		Kind:   kind,
		FireAt: fireAt,
		Title:  r.Title,
		Body:   r.Body,
	}, nil
}
