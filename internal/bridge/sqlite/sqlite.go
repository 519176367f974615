// Package sqlite adapts a local store.Store into a bridge.Source.
//
// Observers poll the store's revision counter and receive the undecided deck
// whenever it changes, including changes made by another process (for
// example `swipedeck seed` against the same file).
package sqlite

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
	"github.com/roach88/swipedeck/internal/store"
)

// DefaultPollInterval is how often observers check for changes.
const DefaultPollInterval = 250 * time.Millisecond

// Source serves a deck out of a SQLite store.
type Source struct {
	store    *store.Store
	interval time.Duration
	log      zerolog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithPollInterval sets the observer polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Source) { s.log = l }
}

// New wraps an open store. The caller keeps ownership of st.
func New(st *store.Store, opts ...Option) *Source {
	s := &Source{store: st, interval: DefaultPollInterval, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the database at path and wraps it. Close releases it.
func Open(path string, opts ...Option) (*Source, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return New(st, opts...), nil
}

// Close closes the underlying store.
func (s *Source) Close() error { return s.store.Close() }

// FetchInitial returns the undecided records.
func (s *Source) FetchInitial(ctx context.Context) ([]record.Record, error) {
	records, err := s.store.ReadUndecided(ctx)
	if err != nil {
		return nil, bridge.NewFetchError(err)
	}
	return records, nil
}

// Observe polls for changes and emits the full undecided deck on each one.
// The first poll establishes a baseline and emits nothing.
func (s *Source) Observe(ctx context.Context) <-chan bridge.Batch {
	out := make(chan bridge.Batch)

	go func() {
		defer close(out)

		emit := func(b bridge.Batch) bool {
			select {
			case out <- b:
				return true
			case <-ctx.Done():
				return false
			}
		}

		last, err := s.store.Revision(ctx)
		if err != nil {
			if ctx.Err() != nil || !emit(bridge.Batch{Err: bridge.NewStreamError(err)}) {
				return
			}
			last = -1
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			rev, err := s.store.Revision(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Warn().Err(err).Msg("poll revision failed")
				if !emit(bridge.Batch{Err: bridge.NewStreamError(err)}) {
					return
				}
				continue
			}
			if rev == last {
				continue
			}

			records, err := s.store.ReadUndecided(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !emit(bridge.Batch{Err: bridge.NewStreamError(err)}) {
					return
				}
				continue
			}
			last = rev
			s.log.Debug().Int64("revision", rev).Int("records", len(records)).Msg("deck changed")
			if !emit(bridge.Batch{Records: records}) {
				return
			}
		}
	}()

	return out
}

// Send appends d to the decision log. Redelivery of the same decision id
// is a no-op.
func (s *Source) Send(ctx context.Context, d decision.Decision) error {
	inserted, err := s.store.WriteDecision(ctx, d)
	if err != nil {
		return bridge.NewSendError(d.RecordID, err)
	}
	if !inserted {
		s.log.Debug().Str("decision", d.ID).Msg("duplicate decision ignored")
	}
	return nil
}

var (
	_ bridge.Source = (*Source)(nil)
	_ bridge.Closer = (*Source)(nil)
)
