// Package harness runs scripted swipe scenarios against a real
// swipe.Controller.
//
// The controller is wired to a testutil.ScriptedSource, a manual
// testutil.Scheduler and a synchronous send runner, so every run of a
// scenario produces the same trace. Traces can be compared against golden
// files with goldie.
//
// # Scenario Format
//
//	name: like_then_undo
//	description: "Undo after a like restores the card"
//	deck:
//	  - { id: a, name: Ann }
//	  - { id: b, name: Ben }
//	steps:
//	  - op: load
//	  - op: release
//	    x: 200
//	    expect: { phase: committing, like_count: 1 }
//	  - op: fire_timers
//	    expect: { current: b }
//	  - op: undo
//	assertions:
//	  current: a
//	  sent: ["accept:a", "rewind:a"]
//
// # Steps
//
//   - load: start the subscription and apply the initial fetch
//   - deliver: push a batch (records, or error) to the open subscription
//   - fail_fetch, fail_send: make the next FetchInitial or Send fail; an
//     empty error clears the failure
//   - drag: move the top card (x, y)
//   - release: end a drag with predicted end (x, y) and velocity
//   - decide: commit kind without a drag
//   - undo: revert the last decision
//   - advance: move virtual time forward by duration
//   - fire_timers: run every pending timer
//   - close: close the controller
//
// # Expectations
//
// A step's expect block and the final assertions block accept the same
// keys: cursor, current, like_count, exhausted, phase, transition, visible,
// can_undo, sent and errors. Only keys present are checked.
package harness
