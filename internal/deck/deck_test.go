package deck

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/swipedeck/internal/record"
)

func recs(ids ...string) []record.Record {
	out := make([]record.Record, len(ids))
	for i, id := range ids {
		out[i] = record.Record{ID: id, Name: "name-" + id}
	}
	return out
}

func currentID(t *testing.T, d *Deck) string {
	t.Helper()
	r, ok := d.Current()
	if !ok {
		return ""
	}
	return r.ID
}

func TestNew_StartsAtZero(t *testing.T) {
	d := New(recs("a", "b", "c"))
	assert.Equal(t, 0, d.Cursor())
	assert.Equal(t, 3, d.Len())
	assert.False(t, d.Exhausted())
	assert.Equal(t, "a", currentID(t, d))
}

func TestNew_Empty(t *testing.T) {
	d := New(nil)
	assert.True(t, d.Exhausted())
	_, ok := d.Current()
	assert.False(t, ok)
	assert.Empty(t, d.VisibleWindow(DefaultWindow))
}

func TestAdvance_IdempotentAtBoundary(t *testing.T) {
	d := New(recs("a", "b"))
	d.Advance()
	d.Advance()
	require.True(t, d.Exhausted())
	assert.Equal(t, 2, d.Cursor())

	d.Advance()
	assert.Equal(t, 2, d.Cursor(), "advance past exhaustion is a no-op")
}

func TestRetreat_NoopAtZero(t *testing.T) {
	d := New(recs("a", "b"))
	d.Retreat()
	assert.Equal(t, 0, d.Cursor())

	d.Advance()
	d.Retreat()
	assert.Equal(t, 0, d.Cursor())
}

func TestRetreatTo_NeverMovesForward(t *testing.T) {
	d := New(recs("a", "b", "c"))
	d.Advance()
	d.Advance()

	d.RetreatTo(5)
	assert.Equal(t, 2, d.Cursor())

	d.RetreatTo(1)
	assert.Equal(t, 1, d.Cursor())

	d.RetreatTo(-4)
	assert.Equal(t, 0, d.Cursor())
}

func TestVisibleWindow(t *testing.T) {
	d := New(recs("a", "b", "c", "d", "e"))
	assert.Equal(t, []string{"a", "b", "c"}, record.IDs(d.VisibleWindow(3)))

	d.Seek(3)
	assert.Equal(t, []string{"d", "e"}, record.IDs(d.VisibleWindow(3)))

	assert.Empty(t, d.VisibleWindow(0))
}

func TestVisibleWindow_IsACopy(t *testing.T) {
	d := New(recs("a", "b"))
	w := d.VisibleWindow(2)
	w[0] = record.Record{ID: "mutated"}
	assert.Equal(t, "a", currentID(t, d))
}

func TestReplaceAll_EmptyExhausts(t *testing.T) {
	d := New(recs("a", "b"))
	d.ReplaceAll(nil)

	assert.True(t, d.Exhausted())
	assert.Equal(t, 0, d.Cursor())
	_, ok := d.Current()
	assert.False(t, ok)
}

func TestReplaceAll_Realignment(t *testing.T) {
	tests := []struct {
		name    string
		old     []string
		cursor  int
		next    []string
		want    int
		current string
	}{
		{"fresh deck from empty", nil, 0, []string{"a", "b"}, 0, "a"},
		{"same deck keeps position", []string{"a", "b", "c"}, 1, []string{"a", "b", "c"}, 1, "b"},
		{"decided record removed upstream", []string{"a", "b"}, 1, []string{"b", "c"}, 0, "b"},
		{"current record reordered", []string{"a", "b", "c"}, 1, []string{"c", "a", "b"}, 2, "b"},
		{"current removed, later survivor wins", []string{"a", "b", "c", "d"}, 1, []string{"a", "c", "d"}, 1, "c"},
		{"exhausted deck gets appended records", []string{"a", "b"}, 2, []string{"a", "b", "c"}, 2, "c"},
		{"exhausted deck replaced by unseen records", []string{"a", "b"}, 2, []string{"x", "y"}, 0, "x"},
		{"only passed records survive", []string{"a", "b", "c"}, 2, []string{"b", "a"}, 2, ""},
		{"nothing survives", []string{"a", "b", "c"}, 1, []string{"x"}, 0, "x"},
		{"cursor at zero, first record removed", []string{"a", "b"}, 0, []string{"b", "c"}, 0, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(recs(tt.old...))
			d.Seek(tt.cursor)

			d.ReplaceAll(recs(tt.next...))

			assert.Equal(t, tt.want, d.Cursor())
			assert.Equal(t, tt.current, currentID(t, d))
		})
	}
}

func TestReplaceAll_DoesNotAliasInput(t *testing.T) {
	in := recs("a", "b")
	d := New(nil)
	d.ReplaceAll(in)
	in[0] = record.Record{ID: "z"}
	assert.Equal(t, "a", currentID(t, d))
}

func TestRestore(t *testing.T) {
	t.Run("present record pulls the cursor back", func(t *testing.T) {
		d := New(recs("a", "b", "c"))
		d.Seek(2)
		assert.Equal(t, 1, d.Restore(record.Record{ID: "b"}, 0))
		assert.Equal(t, "b", currentID(t, d))
		assert.Equal(t, 3, d.Len())
	})

	t.Run("present record ahead of the cursor is ignored", func(t *testing.T) {
		d := New(recs("a", "b", "c"))
		assert.Equal(t, 0, d.Restore(record.Record{ID: "c"}, 2))
		assert.Equal(t, "a", currentID(t, d))
	})

	t.Run("removed record is reinserted at its old position", func(t *testing.T) {
		// Upstream dropped the decided record "a" before undo ran.
		d := New(recs("b", "c"))
		assert.Equal(t, 0, d.Restore(record.Record{ID: "a"}, 0))
		assert.Equal(t, []string{"a", "b", "c"}, record.IDs(d.Records()))
		assert.Equal(t, "a", currentID(t, d))
	})

	t.Run("insert position is clamped", func(t *testing.T) {
		d := New(recs("a"))
		d.Advance()
		assert.Equal(t, 1, d.Restore(record.Record{ID: "z"}, 99))
		assert.Equal(t, "z", currentID(t, d))
		assert.False(t, d.Exhausted())
	})
}

// Random walks over every mutating operation must never break cursor bounds.
func TestDeck_CursorBoundsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{"a", "b", "c", "d", "e", "f", "g"}

	for run := 0; run < 50; run++ {
		d := New(nil)
		for step := 0; step < 200; step++ {
			switch rng.Intn(6) {
			case 0:
				d.Advance()
			case 1:
				d.Retreat()
			case 2:
				d.RetreatTo(rng.Intn(10) - 2)
			case 3:
				d.Seek(rng.Intn(12) - 3)
			case 4:
				n := rng.Intn(len(pool) + 1)
				perm := rng.Perm(len(pool))[:n]
				ids := make([]string, n)
				for i, p := range perm {
					ids[i] = pool[p]
				}
				d.ReplaceAll(recs(ids...))
			case 5:
				id := pool[rng.Intn(len(pool))]
				d.Restore(record.Record{ID: id}, rng.Intn(10)-2)
			}
			require.GreaterOrEqual(t, d.Cursor(), 0, fmt.Sprintf("run %d step %d", run, step))
			require.LessOrEqual(t, d.Cursor(), d.Len(), fmt.Sprintf("run %d step %d", run, step))
			require.Equal(t, d.Cursor() == d.Len(), d.Exhausted())
		}
	}
}
