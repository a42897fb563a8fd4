package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sportsevents/internal/adapters/repository"
	"github.com/okian/sportsevents/internal/app"
	"github.com/okian/sportsevents/internal/config"
	"github.com/okian/sportsevents/internal/domain/types"
	"github.com/okian/sportsevents/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// recorder answers every operation with 200 and remembers what it saw.
type recorder struct {
	op  string
	req app.Request
}

func (r *recorder) answer(op string, req app.Request) app.Response {
	r.op, r.req = op, req
	return app.Response{StatusCode: http.StatusOK, Envelope: types.Envelope{Status: types.StatusSuccess}}
}

func (r *recorder) HandleLogEvent(_ context.Context, req app.Request) app.Response {
	return r.answer(config.HandlerLogEvent, req)
}

func (r *recorder) HandleGetEvent(_ context.Context, req app.Request) app.Response {
	return r.answer(config.HandlerGetEvent, req)
}

func (r *recorder) HandleListEvents(_ context.Context, req app.Request) app.Response {
	return r.answer(config.HandlerListEvents, req)
}

func (r *recorder) HandleListMatchEvents(_ context.Context, req app.Request) app.Response {
	return r.answer(config.HandlerListMatchEvents, req)
}

func TestRoute(t *testing.T) {
	ctx := context.Background()

	Convey("Given a router over a recorder", t, func() {
		rec := &recorder{}
		route := Route(rec)

		Convey("When each gateway resource is invoked", func() {
			cases := map[string]events.APIGatewayProxyRequest{
				config.HandlerLogEvent:        {HTTPMethod: "POST", Resource: "/events", Body: "{}"},
				config.HandlerListEvents:      {HTTPMethod: "GET", Resource: "/events"},
				config.HandlerListMatchEvents: {HTTPMethod: "GET", Resource: "/events/{match_id}", PathParameters: map[string]string{"match_id": "M1"}},
				config.HandlerGetEvent:        {HTTPMethod: "GET", Resource: "/event/{event_id}", PathParameters: map[string]string{"event_id": "EVT-1"}},
			}

			Convey("Then the matching operation runs", func() {
				for want, req := range cases {
					resp, err := route(ctx, req)
					So(err, ShouldBeNil)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
					So(resp.Headers["Content-Type"], ShouldEqual, "application/json")
					So(rec.op, ShouldEqual, want)
				}
			})
		})

		Convey("When the body is base64 encoded", func() {
			_, err := route(ctx, events.APIGatewayProxyRequest{
				HTTPMethod:      "POST",
				Resource:        "/events",
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"match_id":"M1"}`)),
				IsBase64Encoded: true,
			})

			Convey("Then the handler sees the decoded bytes", func() {
				So(err, ShouldBeNil)
				So(string(rec.req.Body), ShouldEqual, `{"match_id":"M1"}`)
			})
		})

		Convey("When the base64 body is corrupt", func() {
			resp, err := route(ctx, events.APIGatewayProxyRequest{
				HTTPMethod: "POST", Resource: "/events", Body: "%%%", IsBase64Encoded: true,
			})
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(rec.op, ShouldBeEmpty)
		})

		Convey("When the route is unknown", func() {
			resp, err := route(ctx, events.APIGatewayProxyRequest{HTTPMethod: "DELETE", Resource: "/events"})

			Convey("Then a 404 envelope comes back", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(resp.Body, ShouldContainSubstring, `"status": "error"`)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given a recorder", t, func() {
		rec := &recorder{}

		Convey("When pinning a known operation", func() {
			h, err := Handler(config.HandlerGetEvent, rec)
			So(err, ShouldBeNil)

			Convey("Then it ignores method and resource", func() {
				_, err := h(context.Background(), events.APIGatewayProxyRequest{
					PathParameters: map[string]string{"event_id": "EVT-1"},
				})
				So(err, ShouldBeNil)
				So(rec.op, ShouldEqual, config.HandlerGetEvent)
				So(rec.req.PathParameters["event_id"], ShouldEqual, "EVT-1")
			})
		})

		Convey("When the name is empty", func() {
			h, err := Handler("", rec)
			So(err, ShouldBeNil)
			So(h, ShouldNotBeNil)
		})

		Convey("When the name is unknown", func() {
			_, err := Handler("delete_event", rec)
			So(errors.Is(err, ErrUnknownHandler), ShouldBeTrue)
		})
	})
}

func TestRoute_EndToEnd(t *testing.T) {
	ctx := context.Background()

	Convey("Given a router over a real service", t, func() {
		store, err := repository.NewBadgerStore("")
		So(err, ShouldBeNil)
		defer store.Close()
		svc, err := app.New(app.WithStore(store))
		So(err, ShouldBeNil)
		route := Route(svc)

		Convey("When logging then fetching an event", func() {
			created, err := route(ctx, events.APIGatewayProxyRequest{
				HTTPMethod: "POST",
				Resource:   "/events",
				Body:       `{"match_id":"M1","event_type":"card","team":"A","opponent":"B","event_details":{"color":"red"}}`,
			})
			So(err, ShouldBeNil)
			So(created.StatusCode, ShouldEqual, http.StatusCreated)

			var env types.Envelope
			So(json.Unmarshal([]byte(created.Body), &env), ShouldBeNil)

			got, err := route(ctx, events.APIGatewayProxyRequest{
				HTTPMethod:     "GET",
				Resource:       "/event/{event_id}",
				PathParameters: map[string]string{"event_id": env.EventID},
			})

			Convey("Then the stored event comes back", func() {
				So(err, ShouldBeNil)
				So(got.StatusCode, ShouldEqual, http.StatusOK)
				So(got.Body, ShouldContainSubstring, `"color": "red"`)
			})
		})
	})
}
