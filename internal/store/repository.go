package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

type fileSchema struct {
	Version int          `toml:"version"`
	Cards   []cardSchema `toml:"cards"`
}

type cardSchema struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	CutDay      int    `toml:"cut_day"`
	PaymentDays int    `toml:"payment_days"`
	Color       string `toml:"color,omitempty"`
	LastUpdated string `toml:"last_updated,omitempty"`
}

// Repository persists the card list as a single TOML document.
type Repository struct {
	path string
	mu   sync.RWMutex
}

// NewRepository returns a store backed by path. The file is created on first save.
func NewRepository(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	return &Repository{path: filepath.Clean(abs)}, nil
}

// Path returns the absolute file location.
func (r *Repository) Path() string {
	return r.path
}

// Load returns every stored card. A missing file yields an empty list.
func (r *Repository) Load(ctx context.Context) ([]engine.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []engine.Card{}, nil
		}
		return nil, fmt.Errorf("%s: %w", config.ErrStoreRead, err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreDecode, err)
	}
	if file.Version > config.FileSchemaVersion {
		return nil, fmt.Errorf("%s: %d", config.ErrStoreVersion, file.Version)
	}

	cards := make([]engine.Card, 0, len(file.Cards))
	for _, c := range file.Cards {
		cards = append(cards, fromSchema(c))
	}
	return cards, nil
}

// Save replaces the stored list with cards.
func (r *Repository) Save(ctx context.Context, cards []engine.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := fileSchema{Version: config.FileSchemaVersion, Cards: make([]cardSchema, 0, len(cards))}
	for _, c := range cards {
		file.Cards = append(file.Cards, toSchema(c))
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreEncode, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := WriteAtomic(r.path, data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	return nil
}

func toSchema(c engine.Card) cardSchema {
	s := cardSchema{
		ID:          c.ID,
		Name:        c.Name,
		CutDay:      c.Billing.CutDay,
		PaymentDays: c.Billing.PaymentDays,
		Color:       c.ColorTag,
	}
	if !c.LastUpdated.IsZero() {
		s.LastUpdated = c.LastUpdated.Format(time.RFC3339Nano)
	}
	return s
}

func fromSchema(s cardSchema) engine.Card {
	c := engine.Card{
		ID:       s.ID,
		Name:     s.Name,
		Billing:  engine.BillingProfile{CutDay: s.CutDay, PaymentDays: s.PaymentDays},
		ColorTag: s.Color,
	}
	if s.LastUpdated != "" {
		if t, err := time.Parse(time.RFC3339Nano, s.LastUpdated); err == nil {
			c.LastUpdated = t
		}
	}
	return c
}
