// Package cli provides the command-line interface for recalld.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lamina-ai/recall-go/internal/config"
	"github.com/lamina-ai/recall-go/internal/db"
	"github.com/lamina-ai/recall-go/internal/embedding"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Lazy-initialized embedder
	embedder embedding.Embedder
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recalld",
	Short: "Tiered conversational memory service",
	Long: `Recalld gives a conversational agent persistent, layered memory: a
short-term buffer of recent turns per channel, a semantically searchable
archive of past exchanges, and a deduplicated store of extracted facts.

Run 'recalld serve' to expose the memory tiers over MCP on stdio, or use
the inspection commands to query the persistent tiers directly.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		// Connect to database
		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, nil)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// getEmbedder creates the embedder on first use. Query commands need it;
// fact inspection does not.
func getEmbedder() (embedding.Embedder, error) {
	if embedder != nil {
		return embedder, nil
	}

	var err error
	embedder, err = embedding.New(embedding.Config{
		Provider:          embedding.ProviderType(cfg.EmbeddingProvider),
		Model:             cfg.EmbeddingModel,
		ExpectedDimension: cfg.EmbedDimension,
		VoyageAPIKey:      cfg.VoyageAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	return embedder, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
