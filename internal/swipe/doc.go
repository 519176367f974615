// Package swipe implements the card-deck state machine behind a swipe UI.
//
// A Controller owns a deck.Deck and a decision.Log. It turns drag samples and
// button presses into decisions, delays the deck advance until the exit
// animation has run, supports a one-step undo, and merges full-deck batches
// from a bridge.Source without breaking the cursor.
//
// SINGLE WRITER:
// The controller holds no locks. Every method, including the callbacks passed
// to Subscribe, runs on the goroutine that drains the Scheduler. Background
// work (fetch, subscription, send) happens on other goroutines and comes back
// through Scheduler.Post.
//
// PHASES:
//
//	Idle ──drag──▶ Dragging ──release(accept|reject)──▶ Committing ──exit delay──▶ Idle
//	  ▲               │                                    │
//	  └──release(none)┘                                    └──undo──▶ Idle
//
// Exhausted is orthogonal to the phase and always equals cursor == len(deck).
//
// STALE WORK:
// Loads and commits carry generation tokens. A batch from a superseded
// subscription, or an exit timer that fires after undo or a newer commit, is
// dropped. A batch that removes the card being decided ends Committing at
// once; one that replaces the card being dragged ends Dragging.
package swipe
