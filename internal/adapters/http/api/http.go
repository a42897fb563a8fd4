// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/sportsevents/internal/app"
	"github.com/okian/sportsevents/internal/domain/types"
	"github.com/okian/sportsevents/pkg/logger"
)

// maxBodyBytes bounds POST /events payloads.
const maxBodyBytes = 1 << 20

// Handlers are the event operations exposed over HTTP. *app.Service
// implements them.
type Handlers interface {
	HandleLogEvent(ctx context.Context, req app.Request) app.Response
	HandleGetEvent(ctx context.Context, req app.Request) app.Response
	HandleListEvents(ctx context.Context, req app.Request) app.Response
	HandleListMatchEvents(ctx context.Context, req app.Request) app.Response
}

type handlerFunc func(ctx context.Context, req app.Request) app.Response

// Server wires HTTP routes for the business API.
type Server struct {
	handlers Handlers
	health   *HealthHandler
	logger   logger.Logger
}

// NewServer creates a new API server over h.
func NewServer(h Handlers) *Server {
	return &Server{
		handlers: h,
		health:   NewHealthHandler(),
		logger:   logger.Named("api"),
	}
}

// Register attaches all HTTP routes to mux. Paths mirror the gateway
// resources the service was first deployed behind.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.health.HandleMetrics, "metrics"))

	mux.HandleFunc("POST /events", MetricsMiddleware(s.adapt(s.handlers.HandleLogEvent), "log_event"))
	mux.HandleFunc("GET /events", MetricsMiddleware(s.adapt(s.handlers.HandleListEvents), "list_events"))
	mux.HandleFunc("GET /events/{match_id}", MetricsMiddleware(s.adapt(s.handlers.HandleListMatchEvents, app.ParamMatchID), "list_match_events"))
	mux.HandleFunc("GET /event/{event_id}", MetricsMiddleware(s.adapt(s.handlers.HandleGetEvent, app.ParamEventID), "get_event"))
}

// adapt turns a transport-neutral handler into an http.HandlerFunc, copying
// the named path values into the request.
func (s *Server) adapt(h handlerFunc, params ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := app.Request{PathParameters: make(map[string]string, len(params))}
		for _, p := range params {
			req.PathParameters[p] = r.PathValue(p)
		}

		if r.Method == http.MethodPost {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				s.logger.Warn(r.Context(), "read request body", logger.Error(err))
				writeEnvelope(w, http.StatusBadRequest, types.Envelope{
					Status:  types.StatusError,
					Message: bodyErrorMessage(err),
				})
				return
			}
			req.Body = body
		}

		resp := h(r.Context(), req)
		writeEnvelope(w, resp.StatusCode, resp.Envelope)
	}
}

func bodyErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "Invalid request: body too large."
	}
	return "Invalid request: body could not be read."
}

func writeEnvelope(w http.ResponseWriter, status int, env types.Envelope) {
	body, err := env.Marshal()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
