package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/okian/sportsevents/internal/domain/model"
)

// Key prefixes for records in badger.
const (
	prefixEvent = "e:" // e:<event_id> -> event JSON
	prefixMatch = "m:" // m:<match_id>\x00<timestamp>\x00<event_id> -> nil
	keySep      = 0x00
)

// BadgerStore is an embedded Store for local runs and tests. It keeps a
// match index next to the primary records so by-match reads never scan.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a store at path. An empty path runs in memory.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", ErrStoreUnavailable, err)
	}
	return &BadgerStore{db: db}, nil
}

func eventKey(eventID string) []byte {
	return append([]byte(prefixEvent), eventID...)
}

func matchPrefix(matchID string) []byte {
	p := make([]byte, 0, len(prefixMatch)+len(matchID)+1)
	p = append(p, prefixMatch...)
	p = append(p, matchID...)
	return append(p, keySep)
}

func matchKey(e model.Event) []byte {
	k := matchPrefix(e.MatchID)
	k = append(k, e.Timestamp...)
	k = append(k, keySep)
	return append(k, e.EventID...)
}

// eventIDFromMatchKey returns the id after the last separator.
func eventIDFromMatchKey(key []byte) string {
	i := bytes.LastIndexByte(key, keySep)
	return string(key[i+1:])
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix), len(prefix)+1)
	copy(end, prefix)
	return append(end, 0xFF)
}

// Put writes the event and its index entry in one transaction, dropping a
// stale index entry when an existing key is overwritten.
func (s *BadgerStore) Put(_ context.Context, e model.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.EventID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(eventKey(e.EventID))
		switch {
		case err == nil:
			var old model.Event
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &old) }); err != nil {
				return fmt.Errorf("read previous event %s: %w", e.EventID, err)
			}
			if err := txn.Delete(matchKey(old)); err != nil {
				return fmt.Errorf("drop stale index for %s: %w", e.EventID, err)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.Set(eventKey(e.EventID), data); err != nil {
			return fmt.Errorf("write event %s: %w", e.EventID, err)
		}
		if err := txn.Set(matchKey(e), nil); err != nil {
			return fmt.Errorf("write match index %s: %w", e.MatchID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: badger put: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// GetByKey reads the primary record.
func (s *BadgerStore) GetByKey(_ context.Context, eventID string) (model.Event, error) {
	var e model.Event
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		e, err = getEvent(txn, eventID)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: badger get: %w", ErrStoreUnavailable, err)
	}
	return e, nil
}

// QueryByMatch walks the match index, in reverse for newest first.
func (s *BadgerStore) QueryByMatch(_ context.Context, matchID string, limit int, newestFirst bool) ([]model.Event, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	events := []model.Event{}
	prefix := matchPrefix(matchID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = newestFirst
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := prefix
		if newestFirst {
			seek = prefixEnd(prefix)
		}
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(events) < limit; it.Next() {
			e, err := getEvent(txn, eventIDFromMatchKey(it.Item().Key()))
			if err != nil {
				return err
			}
			// A match id containing the separator shares this key prefix.
			if e.MatchID != matchID {
				continue
			}
			events = append(events, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: badger query: %w", ErrStoreUnavailable, err)
	}
	return events, nil
}

// ScanAll iterates every primary record.
func (s *BadgerStore) ScanAll(_ context.Context) ([]model.Event, error) {
	events := []model.Event{}
	prefix := []byte(prefixEvent)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e model.Event
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
				return err
			}
			events = append(events, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: badger scan: %w", ErrStoreUnavailable, err)
	}
	return events, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func getEvent(txn *badger.Txn, eventID string) (model.Event, error) {
	var e model.Event
	item, err := txn.Get(eventKey(eventID))
	if err != nil {
		return e, err
	}
	err = item.Value(func(v []byte) error { return json.Unmarshal(v, &e) })
	return e, err
}
