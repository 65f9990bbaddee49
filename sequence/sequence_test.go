package sequence

import (
	"fmt"
	"testing"
	"time"

	"github.com/kbelhadj/gestock/db"
)

// mapStore is a plain CounterStore without atomic increment support, to
// exercise the read/write fallback.
type mapStore map[string]int64

func (m mapStore) ReadInt(key string) (int64, error)  { return m[key], nil }
func (m mapStore) WriteInt(key string, v int64) error { m[key] = v; return nil }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPreviewIsRepeatable(t *testing.T) {
	s := New(mapStore{}, "")
	s.SetClock(fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	first, err := s.Preview("quote")
	if err != nil {
		t.Fatal(err)
	}
	if first != "2025-001" {
		t.Errorf("Preview = %q, want %q", first, "2025-001")
	}
	for i := 0; i < 5; i++ {
		got, err := s.Preview("quote")
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("Preview changed on repeat call: %q != %q", got, first)
		}
	}
}

func TestNextIsMonotonic(t *testing.T) {
	s := New(mapStore{}, "")
	s.SetClock(fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	seen := map[string]bool{}
	for i := 1; i <= 5; i++ {
		got, err := s.Next("invoice")
		if err != nil {
			t.Fatal(err)
		}
		want := fmt.Sprintf("2025-%03d", i)
		if got != want {
			t.Errorf("Next #%d = %q, want %q", i, got, want)
		}
		if seen[got] {
			t.Errorf("Next returned duplicate %q", got)
		}
		seen[got] = true
	}
}

func TestKindsAreIndependent(t *testing.T) {
	s := New(mapStore{}, "")
	s.SetClock(fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	if _, err := s.Next("quote"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Next("invoice")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2025-001" {
		t.Errorf("first invoice number = %q, want %q", got, "2025-001")
	}
}

func TestPaddingStopsBeyondThreeDigits(t *testing.T) {
	store := mapStore{"invoice:2025": 999}
	s := New(store, "")
	s.SetClock(fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	got, err := s.Next("invoice")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2025-1000" {
		t.Errorf("Next past 999 = %q, want %q", got, "2025-1000")
	}
}

func TestEpochRolloverResetsCounter(t *testing.T) {
	s := New(mapStore{}, "")
	s.SetClock(fixedClock(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))

	if got, _ := s.Next("quote"); got != "2025-001" {
		t.Fatalf("Next in 2025 = %q, want 2025-001", got)
	}

	s.SetClock(fixedClock(time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)))
	got, err := s.Next("quote")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2026-001" {
		t.Errorf("Next after rollover = %q, want %q", got, "2026-001")
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	store := mapStore{}
	s := New(store, "")
	s.SetClock(fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	if _, err := s.Preview("quote"); err != nil {
		t.Fatal(err)
	}
	if len(store) != 0 {
		t.Errorf("Preview wrote to the counter store: %v", store)
	}
}

func TestSQLCounterStore(t *testing.T) {
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if err := db.Migrate(d); err != nil {
		t.Fatal(err)
	}

	store := NewSQLCounterStore(d)

	if v, err := store.ReadInt("quote:2025"); err != nil || v != 0 {
		t.Fatalf("ReadInt on fresh key = %d, %v; want 0, nil", v, err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrementInt("quote:2025")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("IncrementInt = %d, want %d", got, want)
		}
	}

	if err := store.WriteInt("invoice:2025", 42); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.ReadInt("invoice:2025"); v != 42 {
		t.Errorf("ReadInt = %d, want 42", v)
	}

	// The sequencer should pick up the atomic path.
	s := New(store, "")
	s.SetClock(fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	got, err := s.Next("quote")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2025-004" {
		t.Errorf("Next over SQL store = %q, want %q", got, "2025-004")
	}
}
