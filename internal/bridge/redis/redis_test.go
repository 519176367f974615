package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// dialTest connects to SWIPEDECK_TEST_REDIS_ADDR, skipping when unset.
func dialTest(t *testing.T) *Source {
	t.Helper()
	addr := os.Getenv("SWIPEDECK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SWIPEDECK_TEST_REDIS_ADDR not set")
	}
	prefix := "swipedeck-test-" + time.Now().Format("150405.000000")
	src, err := Dial(context.Background(), Options{Addr: addr, Prefix: prefix, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() {
		k := src.Keys()
		src.rdb.Del(context.Background(), k.Deck, k.Decisions)
		src.Close()
	})
	return src
}

func TestDial_MissingAddr(t *testing.T) {
	_, err := Dial(context.Background(), Options{})
	assert.Error(t, err)
}

func TestLive_FetchObserveSend(t *testing.T) {
	src := dialTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got, err := src.FetchInitial(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	ch := src.Observe(ctx)
	// Subscription start is asynchronous; publish until the observer sees it.
	deck := []record.Record{{ID: "a"}, {ID: "b"}}
	var batch bridge.Batch
	require.Eventually(t, func() bool {
		_ = src.PublishDeck(ctx, deck)
		select {
		case batch = <-ch:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, record.IDs(batch.Records))

	got, err = src.FetchInitial(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, record.IDs(got))

	d := decision.Decision{ID: "d1", RecordID: "a", Kind: decision.KindAccept, Timestamp: time.Now().UTC()}
	require.NoError(t, src.Send(ctx, d))

	sent, err := src.Decisions(ctx, 0, -1)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "d1", sent[0].ID)
}
