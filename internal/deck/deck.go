// Package deck holds the ordered card sequence and its cursor.
//
// INVARIANTS:
//   - 0 <= cursor <= len(records); cursor == len(records) means exhausted
//   - record ids are unique within a deck (callers sanitise batches first)
//   - records are never mutated in place; ReplaceAll installs a fresh copy
//
// A Deck is not safe for concurrent use. It is owned by exactly one
// controller, which confines all calls to a single goroutine.
package deck

import "github.com/roach88/swipedeck/internal/record"

// DefaultWindow is the number of cards the presentation layer stacks.
const DefaultWindow = 3

// Deck is an ordered sequence of records plus a cursor.
type Deck struct {
	records []record.Record
	cursor  int
}

// New returns a deck holding records with the cursor at 0.
func New(records []record.Record) *Deck {
	return &Deck{records: record.Clone(records)}
}

// Len returns the number of records, decided or not.
func (d *Deck) Len() int { return len(d.records) }

// Cursor returns the index of the current record.
func (d *Deck) Cursor() int { return d.cursor }

// Exhausted reports whether every record has been passed.
func (d *Deck) Exhausted() bool { return d.cursor >= len(d.records) }

// Current returns the record under the cursor.
func (d *Deck) Current() (record.Record, bool) {
	if d.Exhausted() {
		return record.Record{}, false
	}
	return d.records[d.cursor], true
}

// Records returns a copy of the full sequence.
func (d *Deck) Records() []record.Record { return record.Clone(d.records) }

// VisibleWindow returns up to n records starting at the cursor.
// A non-positive n yields an empty window.
func (d *Deck) VisibleWindow(n int) []record.Record {
	if n <= 0 || d.Exhausted() {
		return []record.Record{}
	}
	end := min(d.cursor+n, len(d.records))
	return record.Clone(d.records[d.cursor:end])
}

// IndexOf returns the position of id, or -1.
func (d *Deck) IndexOf(id string) int {
	return indexOf(d.records, id)
}

// Advance moves past the current record. No-op once exhausted.
func (d *Deck) Advance() {
	d.cursor = min(d.cursor+1, len(d.records))
}

// Retreat moves back one record. No-op at the start.
func (d *Deck) Retreat() {
	d.cursor = max(d.cursor-1, 0)
}

// RetreatTo moves the cursor back to i. Targets at or beyond the current
// cursor are ignored, so a stale undo can never push the cursor forward.
func (d *Deck) RetreatTo(i int) {
	i = d.clamp(i)
	if i < d.cursor {
		d.cursor = i
	}
}

// Seek places the cursor on i, clamped to [0, len].
func (d *Deck) Seek(i int) {
	d.cursor = d.clamp(i)
}

// Restore puts r back under the cursor. If r is still in the deck the cursor
// moves back to it (never forward); otherwise r is inserted at clamp(at) and
// becomes current. Returns the resulting cursor.
func (d *Deck) Restore(r record.Record, at int) int {
	if i := indexOf(d.records, r.ID); i >= 0 {
		if i < d.cursor {
			d.cursor = i
		}
		return d.cursor
	}
	at = d.clamp(at)
	next := make([]record.Record, 0, len(d.records)+1)
	next = append(next, d.records[:at]...)
	next = append(next, r)
	next = append(next, d.records[at:]...)
	d.records = next
	d.cursor = at
	return at
}

// ReplaceAll installs a new sequence and realigns the cursor by identity.
//
// Realignment, first match wins:
//  1. the record under the old cursor still exists: follow it
//  2. some record after the old cursor still exists: land on the first one
//  3. some already-passed record still exists: land just after the last one
//  4. nothing survives: start over at 0
func (d *Deck) ReplaceAll(records []record.Record) {
	next := record.Clone(records)
	if next == nil {
		next = []record.Record{}
	}
	cursor := realign(d.records, d.cursor, next)
	d.records = next
	d.cursor = d.clamp(cursor)
}

func realign(old []record.Record, cursor int, next []record.Record) int {
	if len(next) == 0 {
		return 0
	}
	for i := cursor; i < len(old); i++ {
		if j := indexOf(next, old[i].ID); j >= 0 {
			return j
		}
	}
	passed := -1
	for i := 0; i < cursor && i < len(old); i++ {
		if j := indexOf(next, old[i].ID); j > passed {
			passed = j
		}
	}
	return passed + 1
}

func indexOf(records []record.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (d *Deck) clamp(i int) int {
	return max(0, min(i, len(d.records)))
}
