package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lamina-ai/recall-go/internal/facts"
)

var (
	factsSubject string
	factsType    string
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "List extracted facts",
	Long: `List facts extracted by consolidation, most confident first.

Examples:
  recalld facts
  recalld facts --subject alice
  recalld facts --type user_preference`,
	Args: cobra.NoArgs,
	RunE: runFacts,
}

func init() {
	factsCmd.Flags().StringVarP(&factsSubject, "subject", "s", "", "filter by subject")
	factsCmd.Flags().StringVarP(&factsType, "type", "t", "", "filter by fact type")
	rootCmd.AddCommand(factsCmd)
}

func runFacts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store := facts.NewSurrealStore(dbClient, slog.Default())
	results, err := store.Query(ctx, factsSubject, factsType)
	if err != nil {
		return fmt.Errorf("query facts: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No facts found.")
		return nil
	}

	fmt.Printf("%-20s %-16s %-10s %s\n", "SUBJECT", "TYPE", "CONFIDENCE", "CONTENT")
	fmt.Println(strings.Repeat("-", 72))
	for _, fact := range results {
		fmt.Printf("%-20s %-16s %-10.2f %s\n", fact.Subject, fact.Type, fact.Confidence, fact.Content)
		if verbose && len(fact.Provenance) > 0 {
			fmt.Printf("%-48s runs: %s\n", "", strings.Join(fact.Provenance, ", "))
		}
	}

	return nil
}
