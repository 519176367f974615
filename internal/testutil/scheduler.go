package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/swipedeck/internal/swipe"
)

// Scheduler is a manual swipe.Scheduler for tests. The test goroutine plays
// the loop: posted callbacks and timers only run when the test calls
// RunPending, Advance or FireAll.
//
// Post may be called from any goroutine (the controller's load and send
// tasks do). Everything else should be called from the test goroutine.
type Scheduler struct {
	mu     sync.Mutex
	posted []func()
	signal chan struct{}
	timers []*Timer
	now    time.Duration
	seq    int

	// LeakyStop makes Timer.Stop fail, as if the callback had already been
	// queued on a real loop. Used to exercise stale-timer handling.
	LeakyStop bool
}

// NewScheduler creates an idle scheduler at virtual time 0.
func NewScheduler() *Scheduler {
	return &Scheduler{signal: make(chan struct{}, 1)}
}

// Timer is a virtual-time timer.
type Timer struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the timer unless it already fired (or LeakyStop is set).
func (t *Timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.stopped || t.s.LeakyStop {
		return false
	}
	t.stopped = true
	return true
}

// Post queues fn.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// AfterFunc registers fn to run once virtual time reaches now+d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) swipe.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &Timer{s: s, at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// RunPending runs posted callbacks in FIFO order until none are left,
// including ones posted while running. Returns how many ran.
func (s *Scheduler) RunPending() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.posted) == 0 {
			s.mu.Unlock()
			return ran
		}
		fn := s.posted[0]
		s.posted[0] = nil
		s.posted = s.posted[1:]
		s.mu.Unlock()

		fn()
		ran++
	}
}

// Pending returns the number of queued callbacks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posted)
}

// WaitForPosts blocks until at least n callbacks are queued or timeout
// elapses. Reports whether the count was reached.
func (s *Scheduler) WaitForPosts(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if s.Pending() >= n {
			return true
		}
		select {
		case <-s.signal:
		case <-deadline.C:
			return s.Pending() >= n
		}
	}
}

// Advance moves virtual time forward by d and runs every live timer that
// came due, in deadline order. Returns how many fired.
func (s *Scheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	limit := s.now
	s.mu.Unlock()
	return s.fireUntil(limit)
}

// FireAll runs every live timer regardless of its deadline, advancing
// virtual time to the latest one. Returns how many fired.
func (s *Scheduler) FireAll() int {
	return s.fireUntil(-1)
}

// LiveTimers returns the number of timers that may still fire.
func (s *Scheduler) LiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if t.live(s.LeakyStop) {
			n++
		}
	}
	return n
}

// Now returns the virtual time.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// fireUntil fires due timers one at a time so callbacks that schedule new
// timers are honoured. A negative limit means no limit.
func (s *Scheduler) fireUntil(limit time.Duration) int {
	fired := 0
	for {
		s.mu.Lock()
		var due []*Timer
		for _, t := range s.timers {
			if t.live(s.LeakyStop) && (limit < 0 || t.at <= limit) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			s.compactLocked()
			s.mu.Unlock()
			return fired
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].seq < due[j].seq
		})
		next := due[0]
		next.fired = true
		if next.at > s.now {
			s.now = next.at
		}
		s.mu.Unlock()

		next.fn()
		fired++
	}
}

func (t *Timer) live(leaky bool) bool {
	if t.fired {
		return false
	}
	return !t.stopped || leaky
}

func (s *Scheduler) compactLocked() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.live(s.LeakyStop) {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept
}

var _ swipe.Scheduler = (*Scheduler)(nil)
