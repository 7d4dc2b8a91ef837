// Package store persists harness runs in SQLite.
//
// Three tables make up the run history:
//   - runs: one row per suite execution with its summary
//   - results: one row per TestResult, keyed by (run_id, position)
//   - log_entries: the harness log exported for the run, keyed by (run_id, seq)
//
// Reads return results in declaration order and log entries in emission
// order. Writes are idempotent: writing the same run twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
