package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/internal/domain/types"
	"github.com/okian/sportsevents/pkg/logger"
	"github.com/okian/sportsevents/pkg/metrics"
)

// Path parameter names.
const (
	ParamEventID = "event_id"
	ParamMatchID = "match_id"
)

// Request is the transport-neutral input of a handler.
type Request struct {
	Body           []byte
	PathParameters map[string]string
}

// Response pairs an envelope with its status code.
type Response struct {
	StatusCode int
	Envelope   types.Envelope
}

// JSON renders the envelope body.
func (r Response) JSON() ([]byte, error) {
	return r.Envelope.Marshal()
}

// HandleLogEvent stores the event in the request body.
func (s *Service) HandleLogEvent(ctx context.Context, req Request) Response {
	start := time.Now()
	e, err := s.LogEvent(ctx, req.Body)
	if err != nil {
		return s.failure(ctx, OpLogEvent, start, err, "Event failed to log.")
	}
	return Response{
		StatusCode: http.StatusCreated,
		Envelope: types.Envelope{
			Status:  types.StatusSuccess,
			Message: "Event successfully logged.",
			EventID: e.EventID,
		},
	}
}

// HandleGetEvent returns the event named by the event_id path parameter.
func (s *Service) HandleGetEvent(ctx context.Context, req Request) Response {
	start := time.Now()
	e, err := s.GetEvent(ctx, req.PathParameters[ParamEventID])
	if err != nil {
		return s.failure(ctx, OpGetEvent, start, err, "Failed to retrieve the event.")
	}
	return Response{
		StatusCode: http.StatusOK,
		Envelope:   types.Envelope{Status: types.StatusSuccess, Event: &e},
	}
}

// HandleListEvents returns every stored event.
func (s *Service) HandleListEvents(ctx context.Context, _ Request) Response {
	start := time.Now()
	events, err := s.ListEvents(ctx)
	if err != nil {
		return s.failure(ctx, OpListEvents, start, err, "Failed to retrieve all events.")
	}
	return Response{
		StatusCode: http.StatusOK,
		Envelope:   types.Envelope{Status: types.StatusSuccess, Events: events},
	}
}

// HandleListMatchEvents returns the latest events of the match named by the
// match_id path parameter.
func (s *Service) HandleListMatchEvents(ctx context.Context, req Request) Response {
	start := time.Now()
	events, err := s.ListMatchEvents(ctx, req.PathParameters[ParamMatchID])
	if err != nil {
		return s.failure(ctx, OpListMatchEvents, start, err, "Failed to retrieve match events.")
	}
	return Response{
		StatusCode: http.StatusOK,
		Envelope:   types.Envelope{Status: types.StatusSuccess, MatchEvents: events},
	}
}

// failure logs err and turns it into an error envelope. Store failures get
// storeMsg; the underlying error text never reaches the caller.
func (s *Service) failure(ctx context.Context, op string, start time.Time, err error, storeMsg string) Response {
	k := kind(err)
	code, msg := http.StatusInternalServerError, storeMsg
	switch {
	case errors.Is(err, ErrValidation):
		code, msg = http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, notFoundMessage(op)
	}

	fields := []logger.Field{
		logger.String("operation", op),
		logger.String("kind", k),
		logger.Error(err),
	}
	if code >= http.StatusInternalServerError {
		metrics.RecordErrorByType(k, "error")
		metrics.RecordErrorLatency(op, k, float64(time.Since(start).Microseconds())/1000)
		s.logger.Error(ctx, "request failed", fields...)
	} else {
		metrics.RecordErrorByType(k, "warning")
		s.logger.Warn(ctx, "request rejected", fields...)
	}

	return Response{
		StatusCode: code,
		Envelope:   types.Envelope{Status: types.StatusError, Message: msg},
	}
}

func validationMessage(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return "Invalid event: " + verr.Reason + "."
	}
	return "Invalid request: " + validationReason(err) + "."
}

// validationReason covers the few validation failures raised here rather
// than in the model.
func validationReason(err error) string {
	switch {
	case errors.Is(err, errMissingEventID):
		return "missing event_id"
	case errors.Is(err, errMissingMatchID):
		return "missing match_id"
	case errors.Is(err, errMalformedBody):
		return "body must be a JSON object"
	case errors.Is(err, errUnknownField):
		return "body has fields outside the event schema"
	default:
		return "malformed input"
	}
}

func notFoundMessage(op string) string {
	if op == OpListMatchEvents {
		return "No events found for match."
	}
	return "Event not found."
}
