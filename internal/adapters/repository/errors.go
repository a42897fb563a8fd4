package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound         = errors.New("event not found")
	ErrStoreUnavailable = errors.New("event store unavailable")
	ErrInvalidLimit     = errors.New("invalid query limit")
	ErrUnknownBackend   = errors.New("unknown store backend")
)
