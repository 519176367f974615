package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

func TestReplaceRecords_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := []record.Record{
		{ID: "a", Name: "Ada", Age: 31, Zodiac: "Leo", Location: "Oslo", Height: 170,
			Media: []record.Media{{URL: "https://x.test/a.jpg?w=1&h=2", Kind: record.MediaPhoto}}},
		{ID: "b", Name: "Bo"},
	}
	require.NoError(t, s.ReplaceRecords(ctx, in))

	got, err := s.ReadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestReplaceRecords_ReplacesOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceRecords(ctx, testRecords("a", "b", "c")))
	require.NoError(t, s.ReplaceRecords(ctx, testRecords("c", "a")))

	got, err := s.ReadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, record.IDs(got))
}

func TestReadRecords_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ReadRecords(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadUndecided(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceRecords(ctx, testRecords("a", "b", "c")))

	write := func(d decision.Decision) {
		t.Helper()
		_, err := s.WriteDecision(ctx, d)
		require.NoError(t, err)
	}
	undecided := func() []string {
		t.Helper()
		got, err := s.ReadUndecided(ctx)
		require.NoError(t, err)
		return record.IDs(got)
	}

	assert.Equal(t, []string{"a", "b", "c"}, undecided())

	write(testDecision("d1", "a", decision.KindAccept, 1))
	write(testDecision("d2", "b", decision.KindReject, 2))
	assert.Equal(t, []string{"c"}, undecided())

	write(testDecision("d3", "a", decision.KindRewind, 3))
	assert.Equal(t, []string{"a", "c"}, undecided())

	// Deciding again after a rewind hides it again.
	write(testDecision("d4", "a", decision.KindReject, 4))
	assert.Equal(t, []string{"c"}, undecided())
}

func TestWriteDecision_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inserted, err := s.WriteDecision(ctx, testDecision("d1", "a", decision.KindAccept, 0))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.WriteDecision(ctx, testDecision("d1", "a", decision.KindAccept, 0))
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := s.ReadDecisions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, testDecision("d1", "a", decision.KindAccept, 0), got[0])
}

func TestWriteDecision_RejectsInvalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteDecision(ctx, testDecision("d1", "a", "maybe", 0))
	assert.Error(t, err)

	_, err = s.WriteDecision(ctx, testDecision("", "a", decision.KindAccept, 0))
	assert.Error(t, err)
}

func TestMarshalMedia(t *testing.T) {
	got, err := marshalMedia(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	got, err = marshalMedia([]record.Media{{URL: "https://x.test/?a=1&b=2", Kind: record.MediaVideo}})
	require.NoError(t, err)
	assert.Equal(t, `[{"url":"https://x.test/?a=1&b=2","kind":"video"}]`, got)

	back, err := unmarshalMedia(got)
	require.NoError(t, err)
	assert.Equal(t, record.MediaVideo, back[0].Kind)
}
