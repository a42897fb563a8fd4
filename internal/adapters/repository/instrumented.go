package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/pkg/metrics"
)

// Operation labels for store metrics.
const (
	opPut          = "put"
	opGetByKey     = "get_by_key"
	opQueryByMatch = "query_by_match"
	opScanAll      = "scan_all"
)

// instrumented records latency and outcome of every call on the wrapped Store.
type instrumented struct {
	backend string
	next    Store
}

// NewInstrumented wraps next so each call is reported under backend.
func NewInstrumented(backend string, next Store) Store {
	return &instrumented{backend: backend, next: next}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordStoreOperation(s.backend, op, outcome, float64(time.Since(start).Microseconds())/1000)
}

func (s *instrumented) Put(ctx context.Context, e model.Event) error {
	start := time.Now()
	err := s.next.Put(ctx, e)
	s.observe(opPut, start, err)
	return err
}

func (s *instrumented) GetByKey(ctx context.Context, eventID string) (model.Event, error) {
	start := time.Now()
	e, err := s.next.GetByKey(ctx, eventID)
	s.observe(opGetByKey, start, err)
	return e, err
}

func (s *instrumented) QueryByMatch(ctx context.Context, matchID string, limit int, newestFirst bool) ([]model.Event, error) {
	start := time.Now()
	events, err := s.next.QueryByMatch(ctx, matchID, limit, newestFirst)
	s.observe(opQueryByMatch, start, err)
	return events, err
}

func (s *instrumented) ScanAll(ctx context.Context) ([]model.Event, error) {
	start := time.Now()
	events, err := s.next.ScanAll(ctx)
	s.observe(opScanAll, start, err)
	return events, err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
