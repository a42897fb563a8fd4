package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/sportsevents/internal/domain/model"
)

func testEvent(id, match, ts string) model.Event {
	return model.Event{
		EventID:   id,
		MatchID:   match,
		Timestamp: ts,
		EventType: model.EventTypeGoal,
		Team:      "A",
		Opponent:  "B",
		Details: model.Details{
			"goal_type": "header",
			"minute":    float64(10),
			"player":    map[string]any{"name": "X", "number": float64(9), "position": "FW"},
		},
	}
}

// runStoreContract exercises the behaviour every backend shares.
func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put then get returns the same record", func(t *testing.T) {
		s := open(t)
		want := testEvent("EVT-1", "M1", "2024-01-01T00:00:00Z")
		require.NoError(t, s.Put(ctx, want))

		got, err := s.GetByKey(ctx, "EVT-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		s := open(t)
		_, err := s.GetByKey(ctx, "EVT-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("query by match is newest first and limited", func(t *testing.T) {
		s := open(t)
		for i := 0; i < 7; i++ {
			ts := fmt.Sprintf("2024-01-01T00:%02d:00Z", i)
			require.NoError(t, s.Put(ctx, testEvent(fmt.Sprintf("EVT-%d", i), "M1", ts)))
		}
		require.NoError(t, s.Put(ctx, testEvent("EVT-other", "M2", "2024-01-01T01:00:00Z")))

		got, err := s.QueryByMatch(ctx, "M1", 5, true)
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, "EVT-6", got[0].EventID)
		assert.Equal(t, "EVT-2", got[4].EventID)
		for _, e := range got {
			assert.Equal(t, "M1", e.MatchID)
		}

		asc, err := s.QueryByMatch(ctx, "M1", 2, false)
		require.NoError(t, err)
		require.Len(t, asc, 2)
		assert.Equal(t, "EVT-0", asc[0].EventID)
		assert.Equal(t, "EVT-1", asc[1].EventID)
	})

	t.Run("query by unknown match is empty, not nil", func(t *testing.T) {
		s := open(t)
		got, err := s.QueryByMatch(ctx, "nope", 5, true)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query rejects a non-positive limit", func(t *testing.T) {
		s := open(t)
		_, err := s.QueryByMatch(ctx, "M1", 0, true)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("overwrite moves the event between matches", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(ctx, testEvent("EVT-1", "M1", "2024-01-01T00:00:00Z")))
		require.NoError(t, s.Put(ctx, testEvent("EVT-1", "M2", "2024-01-01T00:05:00Z")))

		m1, err := s.QueryByMatch(ctx, "M1", 5, true)
		require.NoError(t, err)
		assert.Empty(t, m1)

		m2, err := s.QueryByMatch(ctx, "M2", 5, true)
		require.NoError(t, err)
		require.Len(t, m2, 1)
		assert.Equal(t, "2024-01-01T00:05:00Z", m2[0].Timestamp)
	})

	t.Run("query does not return a match whose id extends the queried one", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(ctx, testEvent("EVT-1", "a\x00b", "2024-01-01T00:00:00Z")))
		require.NoError(t, s.Put(ctx, testEvent("EVT-2", "ab", "2024-01-01T00:01:00Z")))

		for _, newestFirst := range []bool{true, false} {
			got, err := s.QueryByMatch(ctx, "a", 5, newestFirst)
			require.NoError(t, err)
			assert.Empty(t, got)
		}

		own, err := s.QueryByMatch(ctx, "a\x00b", 5, true)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, "EVT-1", own[0].EventID)
	})

	t.Run("scan returns every event", func(t *testing.T) {
		s := open(t)
		empty, err := s.ScanAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Put(ctx, testEvent(fmt.Sprintf("EVT-%d", i), fmt.Sprintf("M%d", i), "2024-01-01T00:00:00Z")))
		}
		all, err := s.ScanAll(ctx)
		require.NoError(t, err)

		ids := make([]string, 0, len(all))
		for _, e := range all {
			ids = append(ids, e.EventID)
		}
		sort.Strings(ids)
		assert.Equal(t, []string{"EVT-0", "EVT-1", "EVT-2"}, ids)
	})
}

func TestBadgerStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := NewBadgerStore("")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "events.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, testEvent("EVT-1", "M1", "2024-01-01T00:00:00Z")))
	require.NoError(t, s.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByKey(ctx, "EVT-1")
	require.NoError(t, err)
	assert.Equal(t, "M1", got.MatchID)
}
