// Package sequence issues human-readable document numbers (YEAR-NNN) for
// quotes and invoices. Counters are durable and local to one installation:
// two devices issuing numbers concurrently can collide, a known limitation
// of the design, not something to paper over here.
package sequence

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CounterStore is the durable counter collaborator. ReadInt returns 0 for
// keys never written.
type CounterStore interface {
	ReadInt(key string) (int64, error)
	WriteInt(key string, value int64) error
}

// Sequencer issues per-kind, per-epoch sequence numbers. The epoch is the
// numbering period after which counters reset — a calendar year with the
// default "2006" format.
type Sequencer struct {
	store       CounterStore
	epochFormat string
	now         func() time.Time
}

// New returns a Sequencer over the given counter store. epochFormat is a
// time layout; empty means yearly.
func New(store CounterStore, epochFormat string) *Sequencer {
	if epochFormat == "" {
		epochFormat = "2006"
	}
	return &Sequencer{store: store, epochFormat: epochFormat, now: time.Now}
}

// SetClock replaces the time source, for tests.
func (s *Sequencer) SetClock(now func() time.Time) { s.now = now }

func (s *Sequencer) key(kind string) string {
	return kind + ":" + s.now().Format(s.epochFormat)
}

func (s *Sequencer) epoch() string {
	return s.now().Format(s.epochFormat)
}

// Format renders a counter value as a document number. Values are zero-padded
// to three digits; past 999 the padding simply stops — uniqueness matters,
// aesthetics do not.
func Format(epoch string, n int64) string {
	return fmt.Sprintf("%s-%03d", epoch, n)
}

// Preview computes the next number for kind without persisting anything.
// Safe to call any number of times; used for display before a document is
// finalized.
func (s *Sequencer) Preview(kind string) (string, error) {
	n, err := s.store.ReadInt(s.key(kind))
	if err != nil {
		return "", fmt.Errorf("reading counter for %s: %w", kind, err)
	}
	return Format(s.epoch(), n+1), nil
}

// Next increments the durable counter for kind and returns the new number.
// Not idempotent: calling it twice for one logical finalization burns a
// number (a gap, not an error). Callers invoke it exactly once per document.
func (s *Sequencer) Next(kind string) (string, error) {
	key := s.key(kind)
	if inc, ok := s.store.(interface{ IncrementInt(string) (int64, error) }); ok {
		n, err := inc.IncrementInt(key)
		if err != nil {
			return "", fmt.Errorf("incrementing counter for %s: %w", kind, err)
		}
		return Format(s.epoch(), n), nil
	}
	n, err := s.store.ReadInt(key)
	if err != nil {
		return "", fmt.Errorf("reading counter for %s: %w", kind, err)
	}
	n++
	if err := s.store.WriteInt(key, n); err != nil {
		return "", fmt.Errorf("writing counter for %s: %w", kind, err)
	}
	return Format(s.epoch(), n), nil
}

// SQLCounterStore persists counters in the shop database and supports an
// atomic single-statement increment.
type SQLCounterStore struct {
	db *sql.DB
}

// NewSQLCounterStore returns a CounterStore backed by db.
func NewSQLCounterStore(db *sql.DB) *SQLCounterStore {
	return &SQLCounterStore{db: db}
}

func (s *SQLCounterStore) ReadInt(key string) (int64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT value FROM counters WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

func (s *SQLCounterStore) WriteInt(key string, value int64) error {
	_, err := s.db.Exec(`
		INSERT INTO counters (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// IncrementInt bumps the counter in one statement and returns the new value,
// so concurrent commits on the same device never read a stale count.
func (s *SQLCounterStore) IncrementInt(key string) (int64, error) {
	var v int64
	err := s.db.QueryRow(`
		INSERT INTO counters (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1
		RETURNING value
	`, key).Scan(&v)
	return v, err
}
