package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// ScriptedSource is a bridge.Source driven entirely by the test: batches
// arrive only when the test calls Deliver, and Send never changes the deck.
//
// Thread-safety: all methods are safe for concurrent use.
type ScriptedSource struct {
	mu        sync.Mutex
	initial   []record.Record
	fetchErr  error
	sendErr   error
	sent      []decision.Decision
	observers []*observer
	fetches   int

	// IgnoreCancel keeps observer channels open after their context ends,
	// like a source that does not honour cancellation.
	IgnoreCancel bool
}

type observer struct {
	ch     chan bridge.Batch
	closed bool
}

// NewScriptedSource creates a source whose FetchInitial returns initial.
func NewScriptedSource(initial []record.Record) *ScriptedSource {
	return &ScriptedSource{initial: record.Clone(initial)}
}

// FetchInitial returns the scripted initial deck or the scripted error.
func (s *ScriptedSource) FetchInitial(ctx context.Context) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if err := ctx.Err(); err != nil {
		return nil, bridge.NewFetchError(err)
	}
	if s.fetchErr != nil {
		return nil, bridge.NewFetchError(s.fetchErr)
	}
	return record.Clone(s.initial), nil
}

// Observe opens a new observer channel.
func (s *ScriptedSource) Observe(ctx context.Context) <-chan bridge.Batch {
	o := &observer{ch: make(chan bridge.Batch, 16)}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	ignore := s.IgnoreCancel
	s.mu.Unlock()

	if !ignore {
		go func() {
			<-ctx.Done()
			s.mu.Lock()
			defer s.mu.Unlock()
			if !o.closed {
				o.closed = true
				close(o.ch)
			}
		}()
	}
	return o.ch
}

// Send records d and returns the scripted send error.
func (s *ScriptedSource) Send(_ context.Context, d decision.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return bridge.NewSendError(d.RecordID, s.sendErr)
	}
	s.sent = append(s.sent, d)
	return nil
}

// SetInitial replaces what the next FetchInitial returns.
func (s *ScriptedSource) SetInitial(records []record.Record) {
	s.mu.Lock()
	s.initial = record.Clone(records)
	s.mu.Unlock()
}

// SetFetchError makes FetchInitial fail; nil clears it.
func (s *ScriptedSource) SetFetchError(err error) {
	s.mu.Lock()
	s.fetchErr = err
	s.mu.Unlock()
}

// SetSendError makes Send fail; nil clears it.
func (s *ScriptedSource) SetSendError(err error) {
	s.mu.Lock()
	s.sendErr = err
	s.mu.Unlock()
}

// Deliver pushes a batch to the most recent open observer. Reports false
// when there is none.
func (s *ScriptedSource) Deliver(b bridge.Batch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.observers) - 1; i >= 0; i-- {
		if o := s.observers[i]; !o.closed {
			o.ch <- b
			return true
		}
	}
	return false
}

// DeliverTo pushes a batch to observer i (in Observe call order), even a
// superseded one. Reports false when it is closed or out of range.
func (s *ScriptedSource) DeliverTo(i int, b bridge.Batch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.observers) || s.observers[i].closed {
		return false
	}
	s.observers[i].ch <- b
	return true
}

// WaitForObservers blocks until Observe has been called n times or timeout
// elapses.
func (s *ScriptedSource) WaitForObservers(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		got := len(s.observers)
		s.mu.Unlock()
		if got >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// OpenObservers returns the number of observers not yet closed.
func (s *ScriptedSource) OpenObservers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.observers {
		if !o.closed {
			n++
		}
	}
	return n
}

// Sent returns a copy of every successfully sent decision.
func (s *ScriptedSource) Sent() []decision.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]decision.Decision, len(s.sent))
	copy(out, s.sent)
	return out
}

// Fetches returns how many times FetchInitial was called.
func (s *ScriptedSource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

var _ bridge.Source = (*ScriptedSource)(nil)
