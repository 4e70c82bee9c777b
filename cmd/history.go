package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"replay-manager/feature/buildorder"
	"replay-manager/feature/replay/decoder"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyYou string

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <opponent>",
	Short: "Show the latest cached build order against an opponent",
	Long: `Looks up the most recent cached game against the given opponent and
prints their build order. The opponent can be a battle tag (Name#1234), a
toon handle (2-S2-1-123456) or a bare display name.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := bootstrap(ctx)
		defer a.close()

		cache := buildorder.New(a.store, decoder.NewCommandDecoder(a.cfg.Decoder), a.log)
		entry, err := cache.LoadForOpponent(ctx, historyYou, args[0])
		if err != nil {
			a.log.Fatal("Build order lookup failed", zap.Error(err))
		}
		if entry == nil {
			fmt.Printf("No cached games against %q.\n", args[0])
			return
		}

		rec := entry.Record
		fmt.Printf("%s vs %s (%s) on %s, %s\n",
			rec.Player1Name, rec.Player2Name, entry.Opponent.Race,
			rec.MapName, rec.GameDate.Format("2006-01-02 15:04"))
		for _, step := range entry.Steps {
			m := step.Seconds / 60
			s := step.Seconds % 60
			fmt.Printf("  %2d:%02d  %-10s %s\n", m, s, step.Kind, step.Name)
		}
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyYou, "you", "", "your own battle tag or handle, to pick the opponent in mirror matchups")
	RootCmd.AddCommand(historyCmd)
}
