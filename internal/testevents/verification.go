package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/okian/sportsevents/internal/app"
	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/pkg/logger"
)

// Verify reads back every accepted event and every match listing.
func Verify(ctx context.Context, c *Client, accepted []model.Event, stats *Stats) error {
	for _, want := range accepted {
		got, err := c.GetEvent(ctx, want.EventID)
		if err != nil {
			return err
		}
		if err := sameEvent(want, got); err != nil {
			return err
		}
		stats.EventsVerified++
	}

	for matchID, events := range byMatch(accepted) {
		got, err := c.ListMatchEvents(ctx, matchID)
		if err != nil {
			return err
		}
		if err := checkMatchListing(matchID, events, got); err != nil {
			return err
		}
		stats.MatchesVerified++
	}

	logger.Get().Info(ctx, "verification passed",
		logger.Int("events", stats.EventsVerified),
		logger.Int("matches", stats.MatchesVerified),
	)
	return nil
}

// sameEvent compares two events field by field through their JSON form, so
// nested details compare independently of map ordering.
func sameEvent(want, got model.Event) error {
	a, err := json.Marshal(want)
	if err != nil {
		return fmt.Errorf("marshal expected event: %w", err)
	}
	b, err := json.Marshal(got)
	if err != nil {
		return fmt.Errorf("marshal fetched event: %w", err)
	}
	if !bytes.Equal(a, b) {
		return fmt.Errorf("%w: event %s: sent %s, fetched %s", ErrMismatch, want.EventID, a, b)
	}
	return nil
}

// checkMatchListing expects the newest app.MatchEventsLimit events of the
// match, newest first.
func checkMatchListing(matchID string, sent, got []model.Event) error {
	want := append([]model.Event(nil), sent...)
	sort.Slice(want, func(i, j int) bool { return want[i].Timestamp > want[j].Timestamp })
	if len(want) > app.MatchEventsLimit {
		want = want[:app.MatchEventsLimit]
	}

	if len(got) != len(want) {
		return fmt.Errorf("%w: match %s listed %d events, want %d", ErrMismatch, matchID, len(got), len(want))
	}
	for i := range got {
		if i > 0 && got[i-1].Timestamp < got[i].Timestamp {
			return fmt.Errorf("%w: match %s not in descending timestamp order", ErrMismatch, matchID)
		}
		if got[i].EventID != want[i].EventID {
			return fmt.Errorf("%w: match %s position %d is %s, want %s", ErrMismatch, matchID, i, got[i].EventID, want[i].EventID)
		}
	}
	return nil
}

func byMatch(events []model.Event) map[string][]model.Event {
	out := make(map[string][]model.Event)
	for _, e := range events {
		out[e.MatchID] = append(out[e.MatchID], e)
	}
	return out
}
