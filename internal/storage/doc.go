// Package storage defines the persistence interfaces for the turn core.
//
// It provides a high-level abstraction for storing per-session state
// (character snapshot, location, ordered turn history) and the append-only
// audit record. Implementations live in subpackages: memory for tests and
// single-process deployments, sqlite for durable storage.
//
// # Error Types
//
//   - ErrNotFound: a requested record is missing.
//   - ErrSequenceConflict: an appended turn's stamped sequence number
//     disagrees with the store's count. Conflicting writes are rejected,
//     never renumbered or silently admitted.
package storage
