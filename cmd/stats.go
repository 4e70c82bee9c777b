package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := bootstrap(ctx)
		defer a.close()

		stats, err := a.store.Statistics(ctx)
		if err != nil {
			a.log.Fatal("Failed to compute statistics", zap.Error(err))
		}

		fmt.Printf("Replays cached:      %d\n", stats.ReplayCount)
		fmt.Printf("Build orders cached: %d (%d steps)\n", stats.BuildOrderCached, stats.StepCount)
		fmt.Printf("Distinct maps:       %d\n", stats.DistinctMaps)
		if !stats.OldestGame.IsZero() {
			fmt.Printf("Oldest game:         %s\n", stats.OldestGame.Format("2006-01-02 15:04"))
			fmt.Printf("Newest game:         %s\n", stats.NewestGame.Format("2006-01-02 15:04"))
		}
		if !stats.LastSyncAt.IsZero() {
			fmt.Printf("Last sync:           %s\n", stats.LastSyncAt.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)
}
