// Package store provides SQLite-backed storage for evaluation runs.
//
// A run records one constraint evaluated over a batch of samples; each
// sample's answer is an evaluation row. The log is append-only.
//
// # Ordering
//
// Every read orders by the logical clock: ORDER BY seq ASC with a BINARY
// collated id tiebreaker. Wall-clock time is never stored.
//
// # Infinity
//
// SQLite REAL cannot round-trip infinities through database/sql reliably, so
// an unbounded limit is stored as NULL and restored to +Inf or -Inf based on
// the column it came from.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
