// Package store provides SQLite-backed storage for a swipe deck and the
// decisions taken on it.
//
// Tables:
//   - records:   the deck, ordered by position then id
//   - decisions: append-only log, idempotent on decision id
//   - revision:  change counter maintained by triggers, polled by observers
//
// # Visibility
//
// A record is undecided when it has no accept/reject decision, or when its
// latest accept/reject is followed by a rewind. ReadUndecided returns exactly
// those records, in deck order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while the CLI seeds or a session writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
