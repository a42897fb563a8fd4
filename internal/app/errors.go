package app

import (
	"errors"
	"fmt"

	"github.com/okian/sportsevents/internal/adapters/repository"
	"github.com/okian/sportsevents/internal/domain/model"
)

// Error kinds returned by Service. Handlers map each kind to a status code.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	errMalformedBody  = errors.New("malformed request body")
	errUnknownField   = errors.New("unknown field in request body")
	errMissingEventID = errors.New("missing event_id")
	errMissingMatchID = errors.New("missing match_id")
)

// kind names an error for logs and metrics.
func kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}

// classify maps lower-layer errors onto the kinds above.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrInvalidEvent), errors.Is(err, repository.ErrInvalidLimit):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// ErrNoStore is returned by New when no store was configured.
var ErrNoStore = errors.New("app: no event store configured")
