// Package lambda adapts the event handlers to API Gateway proxy events.
package lambda

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/okian/sportsevents/internal/app"
	"github.com/okian/sportsevents/internal/config"
	"github.com/okian/sportsevents/internal/domain/types"
	"github.com/okian/sportsevents/pkg/logger"
)

// HandlerFunc is the signature passed to lambda.Start.
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Handlers are the event operations a function can serve.
type Handlers interface {
	HandleLogEvent(ctx context.Context, req app.Request) app.Response
	HandleGetEvent(ctx context.Context, req app.Request) app.Response
	HandleListEvents(ctx context.Context, req app.Request) app.Response
	HandleListMatchEvents(ctx context.Context, req app.Request) app.Response
}

type operation func(ctx context.Context, req app.Request) app.Response

// Handler returns a function serving one operation, named as in
// config.Handler*. An empty name serves every route through Route.
func Handler(name string, h Handlers) (HandlerFunc, error) {
	if name == "" {
		return Route(h), nil
	}
	op, ok := operations(h)[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	return wrap(op), nil
}

// Route dispatches on HTTPMethod and Resource. Unknown routes get a 404
// envelope.
func Route(h Handlers) HandlerFunc {
	routes := map[string]operation{
		http.MethodPost + " /events":           h.HandleLogEvent,
		http.MethodGet + " /events":            h.HandleListEvents,
		http.MethodGet + " /events/{match_id}": h.HandleListMatchEvents,
		http.MethodGet + " /event/{event_id}":  h.HandleGetEvent,
	}
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		op, ok := routes[req.HTTPMethod+" "+req.Resource]
		if !ok {
			logger.Get().Warn(ctx, "no route",
				logger.String("method", req.HTTPMethod),
				logger.String("resource", req.Resource),
			)
			return toProxy(app.Response{
				StatusCode: http.StatusNotFound,
				Envelope:   types.Envelope{Status: types.StatusError, Message: "Route not found."},
			}), nil
		}
		return wrap(op)(ctx, req)
	}
}

func operations(h Handlers) map[string]operation {
	return map[string]operation{
		config.HandlerLogEvent:        h.HandleLogEvent,
		config.HandlerGetEvent:        h.HandleGetEvent,
		config.HandlerListEvents:      h.HandleListEvents,
		config.HandlerListMatchEvents: h.HandleListMatchEvents,
	}
}

func wrap(op operation) HandlerFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		in, err := toRequest(req)
		if err != nil {
			return toProxy(app.Response{
				StatusCode: http.StatusBadRequest,
				Envelope:   types.Envelope{Status: types.StatusError, Message: "Invalid request: body is not valid base64."},
			}), nil
		}
		return toProxy(op(ctx, in)), nil
	}
}

func toRequest(req events.APIGatewayProxyRequest) (app.Request, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return app.Request{}, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}
	return app.Request{Body: body, PathParameters: req.PathParameters}, nil
}

func toProxy(resp app.Response) events.APIGatewayProxyResponse {
	body, err := resp.JSON()
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"status": "error", "message": "Failed to encode response."}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
