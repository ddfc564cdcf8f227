package engine

import (
	"errors"
	"fmt"

	"github.com/viczaid25/CreditCardApp/internal/config"
)

// ErrCardNotFound is returned when an edit or delete targets an unknown card id.
var ErrCardNotFound = errors.New(config.ErrCardNotFound)

// ValidationError reports user input rejected before it reaches the calculator.
// Key is a translation key so the caller can show a localized message.
type ValidationError struct {
	Field string
	Key   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", config.ErrValidation, e.Field, e.Key)
}

// StorageError wraps a persistence failure. In-memory state is kept as-is when it occurs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", config.ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
