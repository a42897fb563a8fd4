// Package repository defines the event store contract and its backends.
package repository

import (
	"context"

	"github.com/okian/sportsevents/internal/domain/model"
)

// Store provides append-only access to stored events. Implementations must
// be safe for concurrent use and are opened once per process.
type Store interface {
	// Put writes e keyed by e.EventID. An existing record with the same key
	// is overwritten without a check.
	Put(ctx context.Context, e model.Event) error

	// GetByKey returns the event with the given id.
	// Returns ErrNotFound if no such event exists.
	GetByKey(ctx context.Context, eventID string) (model.Event, error)

	// QueryByMatch returns up to limit events of a match ordered by
	// timestamp, newest first when newestFirst is set. No matches yield an
	// empty, non-nil slice.
	QueryByMatch(ctx context.Context, matchID string, limit int, newestFirst bool) ([]model.Event, error)

	// ScanAll returns every stored event in no particular order.
	ScanAll(ctx context.Context) ([]model.Event, error)

	// Close releases the backend.
	Close() error
}
