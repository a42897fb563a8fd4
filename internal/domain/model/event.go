// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"
)

// Timestamp layouts accepted on input. Generated timestamps use the first.
const (
	TimestampLayout       = time.RFC3339
	LegacyTimestampLayout = "2006-01-02 15:04:05"
)

// EventTypeGoal carries the goal sub-schema in event_details.
const EventTypeGoal = "goal"

// ErrInvalidEvent marks every validation failure from this package.
var ErrInvalidEvent = errors.New("invalid event")

// Event is one stored sports event. EventID is the primary key; MatchID and
// Timestamp form the by-match secondary index.
type Event struct {
	EventID   string  `json:"event_id" dynamodbav:"event_id"`
	MatchID   string  `json:"match_id" dynamodbav:"match_id"`
	Timestamp string  `json:"timestamp" dynamodbav:"timestamp"`
	EventType string  `json:"event_type" dynamodbav:"event_type"`
	Team      string  `json:"team" dynamodbav:"team"`
	Opponent  string  `json:"opponent" dynamodbav:"opponent"`
	Details   Details `json:"event_details,omitempty" dynamodbav:"event_details,omitempty"`
}

// Details is the free-form event_details object. It is stored as given so
// nested structures round-trip unchanged.
type Details map[string]any

// Player identifies the player in a goal event.
type Player struct {
	Name     string `json:"name"`
	Number   *int   `json:"number"`
	Position string `json:"position"`
}

// GoalDetails is the event_details schema for goal events.
type GoalDetails struct {
	GoalType string  `json:"goal_type"`
	Minute   *int    `json:"minute"`
	Player   *Player `json:"player"`
}

// Validate checks required fields and, for known event types, the
// event_details sub-schema. EventID is not checked: it is assigned by the
// writer after validation.
func (e Event) Validate() error {
	switch {
	case strings.TrimSpace(e.MatchID) == "":
		return invalid("missing match_id")
	case strings.IndexFunc(e.MatchID, unicode.IsControl) >= 0:
		return invalid("match_id must not contain control characters")
	case strings.TrimSpace(e.EventType) == "":
		return invalid("missing event_type")
	case strings.TrimSpace(e.Team) == "":
		return invalid("missing team")
	case strings.TrimSpace(e.Opponent) == "":
		return invalid("missing opponent")
	}
	if e.Timestamp != "" {
		if _, err := ParseTimestamp(e.Timestamp); err != nil {
			return err
		}
	}
	if e.EventType == EventTypeGoal {
		if _, err := e.Details.Goal(); err != nil {
			return err
		}
	}
	return nil
}

// Goal decodes the details as a goal and validates them.
func (d Details) Goal() (GoalDetails, error) {
	var g GoalDetails
	if len(d) == 0 {
		return g, invalid("missing event_details")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return g, invalid("unreadable event_details")
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return g, invalid("malformed goal event_details")
	}
	switch {
	case strings.TrimSpace(g.GoalType) == "":
		return g, invalid("missing event_details.goal_type")
	case g.Minute == nil:
		return g, invalid("missing event_details.minute")
	case *g.Minute < 0:
		return g, invalid("event_details.minute must not be negative")
	case g.Player == nil:
		return g, invalid("missing event_details.player")
	case strings.TrimSpace(g.Player.Name) == "":
		return g, invalid("missing event_details.player.name")
	case g.Player.Number == nil:
		return g, invalid("missing event_details.player.number")
	case strings.TrimSpace(g.Player.Position) == "":
		return g, invalid("missing event_details.player.position")
	}
	return g, nil
}

// ParseTimestamp accepts RFC3339 and the legacy "YYYY-MM-DD HH:MM:SS" form.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(LegacyTimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("invalid timestamp; must be RFC3339 or YYYY-MM-DD HH:MM:SS")
}

// FormatTimestamp renders t the way generated timestamps are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidationError carries the reason an event was rejected. It matches
// ErrInvalidEvent under errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return ErrInvalidEvent.Error() + ": " + e.Reason }

// Is reports whether target is ErrInvalidEvent.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidEvent }

func invalid(msg string) error {
	return &ValidationError{Reason: msg}
}
