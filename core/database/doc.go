// Package database opens and maintains the embedded SQLite store backing
// the replay cache.
//
// It provides a thin wrapper around GORM with the pure-Go SQLite driver,
// configured for the engine's concurrency model: WAL journaling, a busy
// timeout, and a bounded connection pool. Writes remain serialized by the
// store's own single-writer discipline.
//
// # Contention
//
// Transient write contention ("database is locked") is expected when sync
// workers insert concurrently. RetryWrite wraps a write in capped
// exponential backoff; only exhausted retries surface as failures, and
// callers then skip the single failing unit of work rather than aborting a
// batch.
//
// # Usage
//
//	db, err := database.OpenWithRetry(ctx, cfg.Database, log)
//	if err != nil {
//	    log.Fatal("Store open failed", zap.Error(err))
//	}
package database
