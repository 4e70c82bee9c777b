// Package store implements the persistent replay cache: an insert-only,
// deduplicated record of completed games plus their lazily cached build
// order steps.
//
// # Deduplication
//
// Every record carries a deterministic fingerprint derived from the file
// name and recorded game date, independent of the storage path, so a replay
// relocated without modification still dedups correctly. InsertOrIgnore is
// idempotent under concurrent and duplicate calls; the file path carries a
// separate unique index purely for fast lookups, and a sampled content hash
// supports byte-level duplicate checks without reading entire files.
//
// # Invariants
//
// Records are never deleted, and the only mutation is the one-time flip of
// the build-order-cached flag, performed transactionally together with the
// wholesale replacement of that record's steps. Transient SQLite write
// contention is retried with backoff before a write is declared failed.
package store
