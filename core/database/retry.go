package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IsRetriable reports whether err is transient SQLite write contention
// (another connection holds the write lock). Such errors are worth retrying
// with backoff; anything else is a real failure.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database is busy")
}

// RetryWrite runs op, retrying transient contention errors with capped
// exponential backoff. Non-retriable errors and exhausted retries surface to
// the caller unchanged so the failing unit of work can be skipped and
// logged rather than aborting a whole batch.
func RetryWrite(ctx context.Context, log *zap.Logger, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetriable(err) {
			return backoff.Permanent(err)
		}
		if log != nil {
			log.Debug("Store write contention, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(bo, ctx))
}

// OpenWithRetry opens the store, retrying transient failures with backoff.
// This guards the startup race where the database file lives on storage that
// is still coming up, or a previous instance is releasing its lock.
func OpenWithRetry(ctx context.Context, cfg Config, log *zap.Logger) (*gorm.DB, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = time.Minute

	var db *gorm.DB
	attempt := 0
	op := func() error {
		attempt++
		conn, err := Connect(cfg)
		if err != nil {
			if log != nil {
				log.Warn("Store open failed, retrying",
					zap.Int("attempt", attempt),
					zap.Error(err))
			}
			return err
		}
		db = conn
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("open store after %d attempts: %w", attempt, err)
	}
	if attempt > 1 && log != nil {
		log.Info("Store opened after retry", zap.Int("attempts", attempt))
	}
	return db, nil
}
