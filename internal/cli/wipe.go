package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/facts"
)

var wipeYes bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Erase the persistent memory tiers",
	Long: `Delete every archived exchange and every extracted fact.

Requires --yes. The short-term buffer lives in the serve process and is
not touched by this command.`,
	Args: cobra.NoArgs,
	RunE: runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeYes, "yes", false, "confirm the wipe")
	rootCmd.AddCommand(wipeCmd)
}

func runWipe(cmd *cobra.Command, args []string) error {
	if !wipeYes {
		return fmt.Errorf("refusing to wipe without --yes")
	}

	ctx := context.Background()

	exchanges, err := archive.NewSurrealIndex(dbClient).Wipe(ctx)
	if err != nil {
		return fmt.Errorf("wipe archive: %w", err)
	}

	factCount, err := facts.NewSurrealStore(dbClient, slog.Default()).Wipe(ctx)
	if err != nil {
		return fmt.Errorf("wipe facts: %w", err)
	}

	fmt.Printf("Removed %d archived exchanges and %d facts.\n", exchanges, factCount)
	return nil
}
