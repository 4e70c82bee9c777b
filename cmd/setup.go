package cmd

import (
	"context"
	"errors"
	"log"

	"replay-manager/core/config"
	"replay-manager/core/database"
	"replay-manager/core/lockfile"
	"replay-manager/core/logger"
	"replay-manager/feature/replay/store"

	"go.uber.org/zap"
)

// app bundles the components every subcommand needs.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	lock  *lockfile.Lock
	store *store.Store
}

// bootstrap loads configuration, the logger, the process lock and the cache
// store. Failures are fatal; subcommands cannot run degraded.
func bootstrap(ctx context.Context) *app {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logg)

	lock, err := lockfile.Acquire(cfg.Sync.LockFile)
	if err != nil {
		if errors.Is(err, lockfile.ErrLockHeld) {
			logg.Fatal("Another replay-manager instance is already running",
				zap.String("lock", cfg.Sync.LockFile))
		}
		logg.Fatal("Failed to acquire process lock", zap.Error(err))
	}

	db, err := database.OpenWithRetry(ctx, cfg.Database, logg)
	if err != nil {
		logg.Fatal("Failed to open cache store", zap.Error(err))
	}
	st := store.New(db, logg)
	if err := st.Migrate(); err != nil {
		logg.Fatal("Failed to migrate cache store", zap.Error(err))
	}

	return &app{cfg: cfg, log: logg, lock: lock, store: st}
}

// close releases the lock and flushes the logger.
func (a *app) close() {
	if err := a.lock.Release(); err != nil {
		a.log.Warn("Releasing process lock failed", zap.Error(err))
	}
	_ = a.log.Sync()
}
