// Package app implements the sports event operations shared by the HTTP
// server and the Lambda functions.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sportsevents/internal/adapters/repository"
	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/pkg/logger"
	"github.com/okian/sportsevents/pkg/metrics"
)

// MatchEventsLimit is the number of most recent events returned per match.
const MatchEventsLimit = 5

// Operation names used in logs and metrics.
const (
	OpLogEvent        = "log_event"
	OpGetEvent        = "get_event"
	OpListEvents      = "list_events"
	OpListMatchEvents = "list_match_events"
)

// Service validates and stores events and reads them back. It holds no
// mutable state and is safe for concurrent use.
type Service struct {
	store  repository.Store
	logger logger.Logger

	eventIDPrefix string
	now           func() time.Time
	newID         func() string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the event store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventIDPrefix sets the prefix of generated event ids.
func WithEventIDPrefix(prefix string) Option {
	return func(s *Service) {
		s.eventIDPrefix = prefix
	}
}

// WithClock overrides the time source used for server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the id generator. The prefix is still applied.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs a Service. WithStore is required.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		eventIDPrefix: "EVT-",
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		return nil, ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("events")
	return s, nil
}

// LogEvent decodes payload, validates it and stores it under a fresh id.
// A caller-supplied event_id is discarded. The timestamp is stored as UTC
// RFC3339 whatever layout it arrived in; a missing one is filled with the
// current time.
func (s *Service) LogEvent(ctx context.Context, payload []byte) (model.Event, error) {
	e, err := decodeEvent(payload)
	if err != nil {
		return model.Event{}, err
	}
	if err := e.Validate(); err != nil {
		return model.Event{}, classify(err)
	}

	e.EventID = s.eventIDPrefix + s.newID()
	ts := s.now()
	if e.Timestamp != "" {
		if ts, err = model.ParseTimestamp(e.Timestamp); err != nil {
			return model.Event{}, classify(err)
		}
	}
	e.Timestamp = model.FormatTimestamp(ts)

	if err := s.store.Put(ctx, e); err != nil {
		return model.Event{}, classify(err)
	}
	metrics.RecordEventLogged(e.EventType)
	s.logger.Debug(ctx, "event logged",
		logger.String("event_id", e.EventID),
		logger.String("match_id", e.MatchID),
		logger.String("event_type", e.EventType),
	)
	return e, nil
}

// decodeEvent reads a single JSON object with no fields outside the event schema.
func decodeEvent(payload []byte) (model.Event, error) {
	var e model.Event
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return model.Event{}, fmt.Errorf("%w: %w: %w", ErrValidation, errUnknownField, err)
		}
		return model.Event{}, fmt.Errorf("%w: %w: %w", ErrValidation, errMalformedBody, err)
	}
	if dec.More() {
		return model.Event{}, fmt.Errorf("%w: %w: trailing data", ErrValidation, errMalformedBody)
	}
	return e, nil
}

// GetEvent returns one event by id.
func (s *Service) GetEvent(ctx context.Context, eventID string) (model.Event, error) {
	if strings.TrimSpace(eventID) == "" {
		return model.Event{}, fmt.Errorf("%w: %w", ErrValidation, errMissingEventID)
	}
	e, err := s.store.GetByKey(ctx, eventID)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrNotFound) {
			metrics.RecordEmptyLookup(OpGetEvent)
		}
		return model.Event{}, err
	}
	return e, nil
}

// ListEvents returns every stored event. An empty store is not an error.
func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return events, nil
}

// ListMatchEvents returns the MatchEventsLimit most recent events of a
// match, newest first. A match without events yields ErrNotFound.
func (s *Service) ListMatchEvents(ctx context.Context, matchID string) ([]model.Event, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errMissingMatchID)
	}
	events, err := s.store.QueryByMatch(ctx, matchID, MatchEventsLimit, true)
	if err != nil {
		return nil, classify(err)
	}
	if len(events) == 0 {
		metrics.RecordEmptyLookup(OpListMatchEvents)
		return nil, fmt.Errorf("%w: no events for match %s", ErrNotFound, matchID)
	}
	return events, nil
}
