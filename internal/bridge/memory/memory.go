// Package memory is an in-process bridge.Source.
//
// The source holds a seed deck in its original order. Accepting or rejecting a
// record hides it; rewinding a record shows it again in its seed position.
// Every change publishes the full remaining deck to all observers.
//
// Thread-safety: all methods are safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// Source is an in-memory data source.
type Source struct {
	mu        sync.Mutex
	seed      []record.Record
	hidden    map[string]bool
	sent      []decision.Decision
	observers map[int]chan bridge.Batch
	nextObs   int

	// rev counts deck changes; fetchedRev is rev as of the last FetchInitial.
	rev        uint64
	fetchedRev uint64

	fetchErr error
	sendErr  error
	latency  time.Duration
	log      zerolog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLatency delays every FetchInitial and Send by d.
func WithLatency(d time.Duration) Option {
	return func(s *Source) { s.latency = d }
}

// WithFetchError makes FetchInitial fail with err until cleared.
func WithFetchError(err error) Option {
	return func(s *Source) { s.fetchErr = err }
}

// WithSendError makes Send fail with err until cleared.
func WithSendError(err error) Option {
	return func(s *Source) { s.sendErr = err }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Source) { s.log = l }
}

// New creates a source seeded with records.
func New(records []record.Record, opts ...Option) *Source {
	s := &Source{
		seed:      record.Clone(records),
		hidden:    make(map[string]bool),
		observers: make(map[int]chan bridge.Batch),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchInitial returns the records that have not been decided.
func (s *Source) FetchInitial(ctx context.Context) ([]record.Record, error) {
	if err := s.wait(ctx); err != nil {
		return nil, bridge.NewFetchError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, bridge.NewFetchError(s.fetchErr)
	}
	s.fetchedRev = s.rev
	return s.visibleLocked(), nil
}

// Observe registers an observer. Only the latest batch is buffered: a slow
// observer skips intermediate decks and sees the newest one. If the deck
// changed since the last FetchInitial, the current deck is delivered first.
func (s *Source) Observe(ctx context.Context) <-chan bridge.Batch {
	mailbox := make(chan bridge.Batch, 1)
	out := make(chan bridge.Batch)

	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = mailbox
	if s.rev != s.fetchedRev {
		mailbox <- bridge.Batch{Records: s.visibleLocked()}
	}
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-mailbox:
				select {
				case out <- b:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Send records d and applies it to the deck.
func (s *Source) Send(ctx context.Context, d decision.Decision) error {
	if err := s.wait(ctx); err != nil {
		return bridge.NewSendError(d.RecordID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return bridge.NewSendError(d.RecordID, s.sendErr)
	}
	if !d.Kind.Valid() {
		return bridge.NewSendError(d.RecordID, fmt.Errorf("invalid kind %q", d.Kind))
	}

	s.sent = append(s.sent, d)
	switch d.Kind {
	case decision.KindAccept, decision.KindReject:
		s.hidden[d.RecordID] = true
	case decision.KindRewind:
		delete(s.hidden, d.RecordID)
	}
	s.log.Debug().Str("record", d.RecordID).Str("kind", string(d.Kind)).Msg("decision applied")
	s.rev++
	s.publishLocked(bridge.Batch{Records: s.visibleLocked()})
	return nil
}

// Publish replaces the seed deck and notifies observers.
// Hidden ids stay hidden if they reappear.
func (s *Source) Publish(records []record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = record.Clone(records)
	s.rev++
	s.publishLocked(bridge.Batch{Records: s.visibleLocked()})
}

// PublishError pushes a stream failure to observers.
func (s *Source) PublishError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(bridge.Batch{Err: bridge.NewStreamError(err)})
}

// SetFetchError sets or clears (nil) the injected fetch failure.
func (s *Source) SetFetchError(err error) {
	s.mu.Lock()
	s.fetchErr = err
	s.mu.Unlock()
}

// SetSendError sets or clears (nil) the injected send failure.
func (s *Source) SetSendError(err error) {
	s.mu.Lock()
	s.sendErr = err
	s.mu.Unlock()
}

// Sent returns a copy of every accepted decision in arrival order.
func (s *Source) Sent() []decision.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]decision.Decision, len(s.sent))
	copy(out, s.sent)
	return out
}

// Observers returns the number of live observers.
func (s *Source) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func (s *Source) visibleLocked() []record.Record {
	out := make([]record.Record, 0, len(s.seed))
	for _, r := range s.seed {
		if !s.hidden[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// publishLocked replaces whatever is waiting in each mailbox with b.
func (s *Source) publishLocked(b bridge.Batch) {
	for _, mb := range s.observers {
		select {
		case <-mb:
		default:
		}
		mb <- b
	}
}

func (s *Source) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ bridge.Source = (*Source)(nil)
