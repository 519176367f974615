package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords(ids ...string) []record.Record {
	out := make([]record.Record, len(ids))
	for i, id := range ids {
		out[i] = record.Record{ID: id, Name: "name-" + id, Age: 20 + i}
	}
	return out
}

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testDecision(id, recordID string, kind decision.Kind, offset int) decision.Decision {
	return decision.Decision{
		ID:        id,
		RecordID:  recordID,
		Kind:      kind,
		Timestamp: testEpoch.Add(time.Duration(offset) * time.Second),
	}
}
