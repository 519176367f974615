// Package bridge defines the contract between the swipe controller and
// whatever supplies records and receives decisions.
//
// The controller never depends on a concrete backend. Implementations live
// in subpackages:
//
//   - bridge/memory: in-process, seeded from a slice; removes decided records
//   - bridge/sqlite: local SQLite file with a records and a decisions table
//   - bridge/redis:  deck snapshot key, pub/sub deck channel, decisions list
//
// Every implementation must honour the same semantics:
//
//   - FetchInitial is one-shot and may fail with a FETCH_FAILED *Error.
//   - Observe returns a channel of full-deck batches (never deltas). The
//     channel is closed when ctx is cancelled or the provider finishes. A
//     batch carrying Err is a STREAM_FAILED report; the subscription goes on.
//   - Send delivers one decision, at most once from the caller's side.
//     Retrying, if any, is the implementation's business.
package bridge

import (
	"context"

	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// Batch is one delivery from a subscription.
type Batch struct {
	Records []record.Record
	Err     error
}

// Source is the data provider consumed by the swipe controller.
type Source interface {
	// FetchInitial loads the starting deck.
	FetchInitial(ctx context.Context) ([]record.Record, error)

	// Observe subscribes to full-deck replacements.
	Observe(ctx context.Context) <-chan Batch

	// Send reports a decision on a record.
	Send(ctx context.Context, d decision.Decision) error
}

// Closer is implemented by sources holding external resources.
type Closer interface {
	Close() error
}
