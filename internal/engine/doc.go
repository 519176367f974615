// Package engine runs the single goroutine that owns a swipe controller.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every controller mutation runs as an event on one goroutine. This ensures:
// - No locks inside the controller, deck or decision log
// - Bridge results, timers and user input are applied in arrival order
// - Simple reasoning about which state a callback observes
//
// Event Processing Flow:
// 1. Callers (UI, bridge goroutines, timers) enqueue closures
// 2. Engine.Run() dequeues events one at a time, stamping each with a seq
// 3. The closure runs; a panic is recovered, logged and the loop continues
//
// Engine implements swipe.Scheduler: Post enqueues, AfterFunc arms a real
// timer whose expiry enqueues the callback. A stopped timer whose callback
// was already queued still runs; the controller's generation tokens make
// that harmless.
package engine
