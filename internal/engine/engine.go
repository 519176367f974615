package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/swipe"
)

// Engine is the single-writer event loop.
//
// Thread-safety model:
//   - Post(), Enqueue(), AfterFunc(), Do(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// Everything a controller does happens inside Run, so a controller built on
// this engine must only be touched through Post or Do.
type Engine struct {
	queue     *eventQueue
	clock     *Clock
	log       zerolog.Logger
	processed atomic.Int64
	failed    atomic.Int64
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLogger sets the logger. Default: zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l.With().Str("component", "engine").Logger()
	}
}

// WithClock starts event numbering from a pre-configured clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an idle engine. Call Run to start processing.
func New(opts ...Option) *Engine {
	e := &Engine{
		queue: newEventQueue(),
		clock: NewClock(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue submits a named closure. Returns false once the engine stopped.
func (e *Engine) Enqueue(name string, fn func()) bool {
	return e.queue.Enqueue(Event{Name: name, Fn: fn})
}

// Post implements swipe.Scheduler. Work posted after Stop is dropped.
func (e *Engine) Post(fn func()) {
	if !e.Enqueue("post", fn) {
		e.log.Debug().Msg("post after stop dropped")
	}
}

// AfterFunc implements swipe.Scheduler: after d, fn is enqueued on the loop.
func (e *Engine) AfterFunc(d time.Duration, fn func()) swipe.Timer {
	return time.AfterFunc(d, func() {
		e.Enqueue("timer", fn)
	})
}

// Do runs fn on the loop and waits for it to finish.
// Returns ErrStopped if the engine no longer accepts events, or ctx.Err()
// if ctx ends first (fn may still run later in that case).
func (e *Engine) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !e.Enqueue("do", func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called; after Stop, events
// already queued are drained first.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: a panicking event is recovered and logged with its name
// and seq, and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info().Msg("engine starting")

	for {
		if event, ok := e.queue.TryDequeue(); ok {
			e.process(event)
			continue
		}

		select {
		case <-ctx.Done():
			e.log.Info().Msg("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A coalesced signal may be stale; only a closed, drained
			// queue ends the loop.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.log.Info().Msg("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the remaining events ran.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Processed returns how many events ran (including ones that panicked).
func (e *Engine) Processed() int64 { return e.processed.Load() }

// Failed returns how many events panicked.
func (e *Engine) Failed() int64 { return e.failed.Load() }

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock { return e.clock }

// process runs one event.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) process(ev Event) {
	seq := e.clock.Next()
	defer e.processed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			e.failed.Add(1)
			logEventError(e.log, NewPanicError(ev, seq, r))
		}
	}()

	if ev.Fn == nil {
		e.log.Warn().Str("event", ev.Name).Int64("seq", seq).Msg("event without work skipped")
		return
	}
	ev.Fn()
}

// logEventError logs an event failure with the context needed to line it
// up against the rest of the log.
func logEventError(l zerolog.Logger, err *RuntimeError) {
	l.Error().
		Str("code", string(err.Code)).
		Str("event", err.Event).
		Int64("seq", err.Seq).
		Msg(err.Message)
}

var _ swipe.Scheduler = (*Engine)(nil)
