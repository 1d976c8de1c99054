package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/models"
)

var (
	searchParticipant string
	searchChannel     string
	searchLimit       int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search archived exchanges by similarity",
	Long: `Search the archive tier for exchanges semantically similar to the query.

Examples:
  recalld search "favorite food"
  recalld search "deployment trouble" --channel ops
  recalld search "birthday" --participant u123 -n 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchParticipant, "participant", "p", "", "filter by participant id")
	searchCmd.Flags().StringVarP(&searchChannel, "channel", "c", "", "filter by channel id")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "max results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	emb, err := getEmbedder()
	if err != nil {
		return err
	}

	store := archive.NewStore(archive.NewSurrealIndex(dbClient), emb, slog.Default())
	entries, err := store.Search(ctx, models.SearchQuery{
		Text:          args[0],
		ParticipantID: searchParticipant,
		ChannelID:     searchChannel,
		Limit:         searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(entries))
	for i, entry := range entries {
		fmt.Printf("%d. [%s] %s (score %.3f)\n", i+1, entry.ChannelID, entry.Timestamp.Format("2006-01-02 15:04"), entry.Score)
		fmt.Printf("   %s: %s\n", entry.ParticipantName, entry.ParticipantText)
		fmt.Printf("   agent: %s\n", entry.AgentText)
		if verbose {
			if summary, ok := entry.Metadata["summary"].(string); ok && summary != "" {
				fmt.Printf("   episode: %s\n", summary)
			}
		}
		fmt.Println()
	}

	return nil
}
