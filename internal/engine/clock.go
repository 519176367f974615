package engine

import "sync/atomic"

// Clock is the loop's logical clock: every dequeued event is stamped with a
// strictly increasing seq. Log lines carry it so interleavings of user
// input, bridge results and timers can be reconstructed.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Only the Run goroutine calls Next in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
