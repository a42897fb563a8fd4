package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sportsevents/internal/adapters/repository"
	"github.com/okian/sportsevents/internal/app"
	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

const goalPayload = `{
	"event_type": "goal",
	"team": "A",
	"opponent": "B",
	"match_id": "M1",
	"timestamp": "2024-01-01T00:00:00Z",
	"event_details": {
		"goal_type": "header",
		"minute": 10,
		"player": {"name": "X", "number": 9, "position": "FW"}
	}
}`

var eventIDPattern = regexp.MustCompile(`^EVT-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func newService(t *testing.T, opts ...app.Option) *app.Service {
	t.Helper()
	store, err := repository.NewBadgerStore("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc, err := app.New(append([]app.Option{app.WithStore(store)}, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// failingStore fails every call with a backend error.
type failingStore struct{}

var errBackend = fmt.Errorf("%w: AccessDeniedException: secret-arn", repository.ErrStoreUnavailable)

func (failingStore) Put(context.Context, model.Event) error { return errBackend }
func (failingStore) GetByKey(context.Context, string) (model.Event, error) {
	return model.Event{}, errBackend
}
func (failingStore) QueryByMatch(context.Context, string, int, bool) ([]model.Event, error) {
	return nil, errBackend
}
func (failingStore) ScanAll(context.Context) ([]model.Event, error) { return nil, errBackend }
func (failingStore) Close() error                                   { return nil }

func TestNew(t *testing.T) {
	Convey("Given no store", t, func() {
		_, err := app.New()

		Convey("Then construction fails", func() {
			So(errors.Is(err, app.ErrNoStore), ShouldBeTrue)
		})
	})
}

func TestService_LogEvent(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over an empty store", t, func() {
		svc := newService(t)

		Convey("When logging the goal scenario", func() {
			logged, err := svc.LogEvent(ctx, []byte(goalPayload))
			So(err, ShouldBeNil)

			Convey("Then the id is a prefixed UUID", func() {
				So(eventIDPattern.MatchString(logged.EventID), ShouldBeTrue)
			})

			Convey("And fetching it returns the same nested details", func() {
				got, err := svc.GetEvent(ctx, logged.EventID)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, logged)

				var want map[string]any
				So(json.Unmarshal([]byte(goalPayload), &want), ShouldBeNil)
				So(map[string]any(got.Details), ShouldResemble, want["event_details"])
			})

			Convey("And the client timestamp is kept", func() {
				So(logged.Timestamp, ShouldEqual, "2024-01-01T00:00:00Z")
			})
		})

		Convey("When the caller supplies an event_id", func() {
			payload := `{"event_id":"EVT-mine","match_id":"M1","event_type":"card","team":"A","opponent":"B"}`
			logged, err := svc.LogEvent(ctx, []byte(payload))

			Convey("Then it is replaced", func() {
				So(err, ShouldBeNil)
				So(logged.EventID, ShouldNotEqual, "EVT-mine")
				So(eventIDPattern.MatchString(logged.EventID), ShouldBeTrue)

				_, err := svc.GetEvent(ctx, "EVT-mine")
				So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			_, err := svc.LogEvent(ctx, []byte("{oops"))
			So(errors.Is(err, app.ErrValidation), ShouldBeTrue)
		})

		Convey("When a required field is missing", func() {
			_, err := svc.LogEvent(ctx, []byte(`{"match_id":"M1","event_type":"card","team":"A"}`))
			So(errors.Is(err, app.ErrValidation), ShouldBeTrue)
		})

		Convey("When the body carries a field outside the event schema", func() {
			_, err := svc.LogEvent(ctx, []byte(`{"match_id":"M1","event_type":"card","team":"A","opponent":"B","venue":"X"}`))

			Convey("Then it is rejected and nothing is stored", func() {
				So(errors.Is(err, app.ErrValidation), ShouldBeTrue)
				all, err := svc.ListEvents(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldBeEmpty)
			})
		})

		Convey("When the match_id contains a NUL byte", func() {
			_, err := svc.LogEvent(ctx, []byte(`{"match_id":"a\u0000b","event_type":"card","team":"A","opponent":"B"}`))
			So(errors.Is(err, app.ErrValidation), ShouldBeTrue)
		})

		Convey("When timestamps arrive in mixed layouts and offsets", func() {
			for _, ts := range []string{"2024-01-01T09:00:00Z", "2024-01-01 10:00:00", "2024-01-01T12:00:00+05:00"} {
				payload := fmt.Sprintf(`{"match_id":"MX","event_type":"card","team":"A","opponent":"B","timestamp":%q}`, ts)
				_, err := svc.LogEvent(ctx, []byte(payload))
				So(err, ShouldBeNil)
			}

			Convey("Then they are stored in UTC and listed newest first by instant", func() {
				events, err := svc.ListMatchEvents(ctx, "MX")
				So(err, ShouldBeNil)
				got := make([]string, 0, len(events))
				for _, e := range events {
					got = append(got, e.Timestamp)
				}
				So(got, ShouldResemble, []string{"2024-01-01T10:00:00Z", "2024-01-01T09:00:00Z", "2024-01-01T07:00:00Z"})
			})
		})

		Convey("When event_details is not an object", func() {
			_, err := svc.LogEvent(ctx, []byte(`{"match_id":"M1","event_type":"card","team":"A","opponent":"B","event_details":"red"}`))
			So(errors.Is(err, app.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a service with a fixed clock and ids", t, func() {
		now := time.Date(2024, 6, 1, 18, 30, 0, 0, time.FixedZone("X", 7200))
		svc := newService(t,
			app.WithClock(func() time.Time { return now }),
			app.WithIDGenerator(func() string { return "fixed" }),
			app.WithEventIDPrefix("GOAL-"),
		)

		Convey("When the timestamp is absent", func() {
			logged, err := svc.LogEvent(ctx, []byte(`{"match_id":"M1","event_type":"card","team":"A","opponent":"B"}`))

			Convey("Then the server time is stored in UTC", func() {
				So(err, ShouldBeNil)
				So(logged.EventID, ShouldEqual, "GOAL-fixed")
				So(logged.Timestamp, ShouldEqual, "2024-06-01T16:30:00Z")
			})
		})
	})

	Convey("Given a failing store", t, func() {
		svc, err := app.New(app.WithStore(failingStore{}))
		So(err, ShouldBeNil)

		Convey("When logging", func() {
			_, err := svc.LogEvent(ctx, []byte(goalPayload))
			So(errors.Is(err, app.ErrStoreUnavailable), ShouldBeTrue)
		})
	})
}

func TestService_Reads(t *testing.T) {
	ctx := context.Background()

	Convey("Given a match with seven events", t, func() {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		tick := 0
		svc := newService(t, app.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}))
		var ids []string
		for i := 0; i < 7; i++ {
			e, err := svc.LogEvent(ctx, []byte(`{"match_id":"M1","event_type":"card","team":"A","opponent":"B"}`))
			So(err, ShouldBeNil)
			ids = append(ids, e.EventID)
		}

		Convey("When listing the match", func() {
			events, err := svc.ListMatchEvents(ctx, "M1")

			Convey("Then the five newest come back newest first", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, app.MatchEventsLimit)
				So(events[0].EventID, ShouldEqual, ids[6])
				So(events[4].EventID, ShouldEqual, ids[2])
				for i := 1; i < len(events); i++ {
					So(events[i-1].Timestamp > events[i].Timestamp, ShouldBeTrue)
				}
			})
		})

		Convey("When listing an unknown match", func() {
			_, err := svc.ListMatchEvents(ctx, "M404")
			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing everything", func() {
			all, err := svc.ListEvents(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 7)
		})
	})

	Convey("Given an empty store", t, func() {
		svc := newService(t)

		Convey("Then listing everything is empty, not an error", func() {
			all, err := svc.ListEvents(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)
		})

		Convey("Then a blank id is a validation error", func() {
			_, err := svc.GetEvent(ctx, "  ")
			So(errors.Is(err, app.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over an empty store", t, func() {
		svc := newService(t)

		Convey("When logging the goal scenario", func() {
			resp := svc.HandleLogEvent(ctx, app.Request{Body: []byte(goalPayload)})

			Convey("Then it answers 201 with the new id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(resp.Envelope.Status, ShouldEqual, "success")
				So(resp.Envelope.Message, ShouldEqual, "Event successfully logged.")
				So(eventIDPattern.MatchString(resp.Envelope.EventID), ShouldBeTrue)
			})

			Convey("And the event can be fetched", func() {
				got := svc.HandleGetEvent(ctx, app.Request{
					PathParameters: map[string]string{app.ParamEventID: resp.Envelope.EventID},
				})
				So(got.StatusCode, ShouldEqual, http.StatusOK)
				So(got.Envelope.Event.MatchID, ShouldEqual, "M1")

				body, err := got.JSON()
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "\n    \"event\": {")
				So(string(body), ShouldContainSubstring, `"goal_type": "header"`)
			})

			Convey("And the match lists it", func() {
				got := svc.HandleListMatchEvents(ctx, app.Request{
					PathParameters: map[string]string{app.ParamMatchID: "M1"},
				})
				So(got.StatusCode, ShouldEqual, http.StatusOK)
				So(got.Envelope.MatchEvents, ShouldHaveLength, 1)
			})
		})

		Convey("When the payload is invalid", func() {
			resp := svc.HandleLogEvent(ctx, app.Request{Body: []byte(`{"match_id":"M1","event_type":"goal","team":"A","opponent":"B"}`)})

			Convey("Then it answers 400 naming the problem", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(resp.Envelope.Status, ShouldEqual, "error")
				So(resp.Envelope.Message, ShouldEqual, "Invalid event: missing event_details.")
			})
		})

		Convey("When the payload has an unknown top-level field", func() {
			resp := svc.HandleLogEvent(ctx, app.Request{Body: []byte(`{"match_id":"M1","event_type":"card","team":"A","opponent":"B","venue":"X"}`)})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(resp.Envelope.Message, ShouldEqual, "Invalid request: body has fields outside the event schema.")
		})

		Convey("When the path parameter is missing", func() {
			resp := svc.HandleGetEvent(ctx, app.Request{})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(resp.Envelope.Message, ShouldEqual, "Invalid request: missing event_id.")
		})

		Convey("When fetching an unknown event", func() {
			resp := svc.HandleGetEvent(ctx, app.Request{
				PathParameters: map[string]string{app.ParamEventID: "EVT-nope"},
			})

			Convey("Then it answers 404 with no event", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(resp.Envelope.Status, ShouldEqual, "error")
				So(resp.Envelope.Event, ShouldBeNil)
				So(resp.Envelope.Message, ShouldEqual, "Event not found.")
			})
		})

		Convey("When listing an unknown match", func() {
			resp := svc.HandleListMatchEvents(ctx, app.Request{
				PathParameters: map[string]string{app.ParamMatchID: "M404"},
			})
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			So(resp.Envelope.Message, ShouldEqual, "No events found for match.")
		})

		Convey("When listing an empty store", func() {
			resp := svc.HandleListEvents(ctx, app.Request{})
			body, err := resp.JSON()

			Convey("Then it answers 200 with an empty list", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, `"events": []`)
			})
		})
	})

	Convey("Given a failing store", t, func() {
		svc, err := app.New(app.WithStore(failingStore{}))
		So(err, ShouldBeNil)

		Convey("Then every handler answers 500 without leaking the cause", func() {
			responses := []app.Response{
				svc.HandleLogEvent(ctx, app.Request{Body: []byte(goalPayload)}),
				svc.HandleGetEvent(ctx, app.Request{PathParameters: map[string]string{app.ParamEventID: "x"}}),
				svc.HandleListEvents(ctx, app.Request{}),
				svc.HandleListMatchEvents(ctx, app.Request{PathParameters: map[string]string{app.ParamMatchID: "x"}}),
			}
			for _, r := range responses {
				So(r.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(r.Envelope.Status, ShouldEqual, "error")
				So(r.Envelope.Message, ShouldNotContainSubstring, "secret-arn")
				So(r.Envelope.Message, ShouldNotBeBlank)
			}
		})
	})
}
