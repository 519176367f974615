// Package decision models what the user decided about a card and keeps the
// single most recent decision around for undo.
package decision

import (
	"fmt"
	"time"

	"github.com/roach88/swipedeck/internal/gesture"
	"github.com/roach88/swipedeck/internal/record"
)

// Kind is the action reported to the data source.
type Kind string

const (
	// KindAccept is a like.
	KindAccept Kind = "accept"
	// KindReject is a nope.
	KindReject Kind = "reject"
	// KindRewind retracts the previous decision on a record.
	KindRewind Kind = "rewind"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAccept, KindReject, KindRewind:
		return true
	}
	return false
}

// KindOf maps a gesture outcome onto a decision kind.
// gesture.None has no kind and reports false.
func KindOf(d gesture.Decision) (Kind, bool) {
	switch d {
	case gesture.Accept:
		return KindAccept, true
	case gesture.Reject:
		return KindReject, true
	}
	return "", false
}

// ParseKind parses the wire name of a kind, accepting the like/nope aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "accept", "like":
		return KindAccept, nil
	case "reject", "nope":
		return KindReject, nil
	case "rewind":
		return KindRewind, nil
	}
	return "", fmt.Errorf("unknown decision kind %q", s)
}

// Decision is the typed payload delivered to the data source.
//
// ID is unique per decision and lets a backend drop duplicate deliveries.
type Decision struct {
	ID        string    `json:"id"`
	RecordID  string    `json:"record_id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Pending is the undoable memory of the last commit.
type Pending struct {
	Record      record.Record
	PriorCursor int
	Kind        Kind
	ExitOffset  gesture.Vector
	DecisionID  string
}

// Log holds at most one pending decision.
// Not safe for concurrent use; owned by a single controller.
type Log struct {
	pending *Pending
}

// Record stores p, discarding whatever was pending before.
func (l *Log) Record(p Pending) {
	l.pending = &p
}

// TakeForUndo returns the pending decision and clears it.
// An empty log returns false; callers treat that as a silent no-op.
func (l *Log) TakeForUndo() (Pending, bool) {
	if l.pending == nil {
		return Pending{}, false
	}
	p := *l.pending
	l.pending = nil
	return p, true
}

// Peek returns the pending decision without clearing it.
func (l *Log) Peek() (Pending, bool) {
	if l.pending == nil {
		return Pending{}, false
	}
	return *l.pending, true
}

// Clear drops any pending decision.
func (l *Log) Clear() { l.pending = nil }
