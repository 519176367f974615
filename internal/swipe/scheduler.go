package swipe

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or was already queued to run.
	Stop() bool
}

// Scheduler is the controller's only way onto its own goroutine.
//
// Post and the callback given to AfterFunc must run fn on the single loop
// goroutine that also calls the controller's methods. Post may be called from
// any goroutine.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
}
