package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/okian/sportsevents/internal/domain/model"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
        event_id  TEXT PRIMARY KEY,
        match_id  TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        body      TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS events_match_timestamp ON events(match_id, timestamp)`,
}

// SQLiteStore keeps events in a single sqlite table. The whole record is
// stored as JSON; match_id and timestamp are copied out for the index.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrStoreUnavailable, err)
	}
	// sqlite serialises writers; one connection also keeps :memory: databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: create schema: %w", ErrStoreUnavailable, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Put replaces any existing row with the same event_id.
func (s *SQLiteStore) Put(ctx context.Context, e model.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.EventID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO events(event_id, match_id, timestamp, body) VALUES (?, ?, ?, ?)`,
		e.EventID, e.MatchID, e.Timestamp, string(body))
	if err != nil {
		return fmt.Errorf("%w: sqlite insert: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// GetByKey reads one row by primary key.
func (s *SQLiteStore) GetByKey(ctx context.Context, eventID string) (model.Event, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM events WHERE event_id = ?`, eventID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: sqlite select: %w", ErrStoreUnavailable, err)
	}
	var e model.Event
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return model.Event{}, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	return e, nil
}

// QueryByMatch uses the (match_id, timestamp) index.
func (s *SQLiteStore) QueryByMatch(ctx context.Context, matchID string, limit int, newestFirst bool) ([]model.Event, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	q := `SELECT body FROM events WHERE match_id = ? ORDER BY timestamp ASC LIMIT ?`
	if newestFirst {
		q = `SELECT body FROM events WHERE match_id = ? ORDER BY timestamp DESC LIMIT ?`
	}
	return s.query(ctx, q, matchID, limit)
}

// ScanAll returns every row.
func (s *SQLiteStore) ScanAll(ctx context.Context) ([]model.Event, error) {
	return s.query(ctx, `SELECT body FROM events`)
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite query: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: sqlite scan: %w", ErrStoreUnavailable, err)
		}
		var e model.Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: sqlite rows: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}
