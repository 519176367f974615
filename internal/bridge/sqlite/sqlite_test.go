package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
	"github.com/roach88/swipedeck/internal/store"
)

func newSource(t *testing.T, ids ...string) (*Source, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "deck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	records := make([]record.Record, len(ids))
	for i, id := range ids {
		records[i] = record.Record{ID: id, Name: id}
	}
	require.NoError(t, st.ReplaceRecords(context.Background(), records))
	return New(st, WithPollInterval(5*time.Millisecond)), st
}

func next(t *testing.T, ch <-chan bridge.Batch) bridge.Batch {
	t.Helper()
	select {
	case b, ok := <-ch:
		require.True(t, ok, "channel closed")
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
		return bridge.Batch{}
	}
}

func TestFetchInitial(t *testing.T) {
	src, _ := newSource(t, "a", "b")
	got, err := src.FetchInitial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, record.IDs(got))
}

func TestFetchInitial_ClosedStore(t *testing.T) {
	src, st := newSource(t, "a")
	require.NoError(t, st.Close())

	_, err := src.FetchInitial(context.Background())
	assert.True(t, bridge.IsFetchError(err))
}

func TestSendThenObserve(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, _ := newSource(t, "a", "b", "c")
	ch := src.Observe(ctx)

	// Let the observer take its baseline before writing.
	time.Sleep(20 * time.Millisecond)

	d := decision.Decision{ID: "d1", RecordID: "a", Kind: decision.KindAccept, Timestamp: time.Now()}
	require.NoError(t, src.Send(ctx, d))
	assert.Equal(t, []string{"b", "c"}, record.IDs(next(t, ch).Records))

	// Redelivery changes nothing and reports no error.
	require.NoError(t, src.Send(ctx, d))

	rewind := decision.Decision{ID: "d2", RecordID: "a", Kind: decision.KindRewind, Timestamp: time.Now()}
	require.NoError(t, src.Send(ctx, rewind))
	assert.Equal(t, []string{"a", "b", "c"}, record.IDs(next(t, ch).Records))
}

func TestObserve_SeesExternalReseed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, st := newSource(t, "a")
	ch := src.Observe(ctx)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, st.ReplaceRecords(ctx, []record.Record{{ID: "x"}, {ID: "y"}}))
	assert.Equal(t, []string{"x", "y"}, record.IDs(next(t, ch).Records))
}

func TestSend_InvalidKind(t *testing.T) {
	src, _ := newSource(t, "a")
	err := src.Send(context.Background(), decision.Decision{ID: "d1", RecordID: "a", Kind: "maybe"})
	assert.True(t, bridge.IsSendError(err))
}

func TestObserve_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src, _ := newSource(t, "a")
	ch := src.Observe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
