package store

import (
	"errors"

	"github.com/devaloi/safecast/internal/domain"
)

// ErrNotFound is returned when an alert does not exist.
var ErrNotFound = errors.New("alert not found")

// Store defines the alert persistence interface.
type Store interface {
	// Save persists an alert and returns it with ID and CreatedAt set.
	Save(a domain.Alert) (domain.Alert, error)
	// History returns the last `limit` alerts for a user, newest first.
	History(userID string, limit int) ([]domain.Alert, error)
	// Resolve marks an alert as resolved.
	Resolve(id int64) error
	// Close releases any resources held by the store.
	Close() error
}
