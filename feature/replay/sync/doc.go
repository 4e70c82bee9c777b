// Package sync drives synchronization between the replay folder and the
// persistent cache store.
//
// # Synchronization Paths
//
// Three paths exist, chosen by the caller's situation:
//
//   - FullSync: every file on disk, run once when the store is empty.
//   - IncrementalSync: only files missing from the in-memory cached-path
//     set, computed as a single bulk set difference.
//   - PersistReplay: exactly one just-finished file, with no enumeration at
//     all.
//
// # Pipeline
//
// Batch paths run a two-stage pipeline: sequential metadata-only extraction
// first, then bounded-parallel insertion through a worker pool sized by a
// tiered heuristic on the processor count. File order within a batch is not
// guaranteed; store-level deduplication makes ordering irrelevant for
// correctness.
//
// Per-file failures are logged, recorded on the report and skipped. One bad
// file never aborts a batch.
package sync
