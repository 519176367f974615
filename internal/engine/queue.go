package engine

import "sync"

// Event is one closure waiting to run on the loop.
type Event struct {
	// Name labels the event in logs ("post", "timer", "do", ...).
	Name string
	// Fn is the work to run.
	Fn func()
}

// eventQueue is an unbounded FIFO of events. Producers (bridge goroutines,
// timers, Do callers) never block; Run selects on signal alongside ctx.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // size 1; closed by Close
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends e. It reports false once the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Pending wakeups coalesce.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue pops the oldest event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Nil out the slot so the closure (and whatever it captured) can be
	// collected before the backing array is reallocated.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait fires when events may be available, and stays closed after Close.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close rejects further Enqueue calls. Queued events stay dequeueable.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
