package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"replay-manager/core/lockfile"
	"replay-manager/feature/monitor"
	"replay-manager/feature/replay/decoder"
	"replay-manager/feature/replay/scanner"
	replaysync "replay-manager/feature/replay/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the replay monitor",
	Long: `Acquires the process lock, brings the cache up to date and then watches
the game for match start and end until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := bootstrap(ctx)
		defer a.close()

		// Wire the sync pipeline. Everything is constructed here and
		// injected explicitly.
		dec := decoder.NewCommandDecoder(a.cfg.Decoder)
		stamp := lockfile.NewStamp(a.cfg.Sync.ValidationFile)
		coord := replaysync.New(a.store, dec, scanner.NewFileScanner(), a.log,
			replaysync.WithStamp(stamp),
			replaysync.WithProgress(func(processed, total int) {
				if processed == total || processed%50 == 0 {
					a.log.Info("Sync progress", zap.Int("processed", processed), zap.Int("total", total))
				}
			}))

		// Startup sync: full only when the store is empty.
		if _, err := coord.EnsureSynced(ctx, a.cfg.Sync.Dir, a.cfg.Sync.Recursive); err != nil {
			a.log.Fatal("Startup sync failed", zap.Error(err))
		}

		// Watch the game until interrupted.
		bound := coord.Bind(a.cfg.Sync.Dir, a.cfg.Sync.Recursive)
		locator := &scanner.NewestFileLocator{Root: a.cfg.Sync.Dir}
		mon := monitor.New(a.cfg.Monitor, bound, locator, a.log,
			monitor.WithRevalidation(stamp, a.cfg.Sync.RevalidateInterval()))

		if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Fatal("Monitor stopped unexpectedly", zap.Error(err))
		}
		a.log.Info("Shutting down")
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
