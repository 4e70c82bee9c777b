package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"replay-manager/core/lockfile"
	"replay-manager/feature/replay/decoder"
	"replay-manager/feature/replay/scanner"
	replaysync "replay-manager/feature/replay/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncFull bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the replay folder into the cache",
	Long: `Runs a one-off synchronization and exits. By default only files missing
from the cache are processed; --full re-enumerates everything.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := bootstrap(ctx)
		defer a.close()

		dec := decoder.NewCommandDecoder(a.cfg.Decoder)
		stamp := lockfile.NewStamp(a.cfg.Sync.ValidationFile)
		coord := replaysync.New(a.store, dec, scanner.NewFileScanner(), a.log,
			replaysync.WithStamp(stamp))

		var (
			rep *replaysync.Report
			err error
		)
		if syncFull {
			rep, err = coord.FullSync(ctx, a.cfg.Sync.Dir, a.cfg.Sync.Recursive)
		} else {
			rep, err = coord.IncrementalSync(ctx, a.cfg.Sync.Dir, a.cfg.Sync.Recursive)
		}
		if err != nil {
			a.log.Fatal("Sync failed", zap.Error(err))
		}

		a.log.Info("Sync finished",
			zap.String("mode", string(rep.Mode)),
			zap.Int("scanned", rep.Scanned),
			zap.Int("inserted", rep.Inserted),
			zap.Int("already_cached", rep.AlreadyCached),
			zap.Int("skipped", rep.SkippedCount()))
		for _, sk := range rep.Skipped {
			a.log.Warn("Skipped file", zap.String("path", sk.Path), zap.String("reason", sk.Reason))
		}
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "process every file, not just new ones")
	RootCmd.AddCommand(syncCmd)
}
