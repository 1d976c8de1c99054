package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/buffer"
	"github.com/lamina-ai/recall-go/internal/config"
	"github.com/lamina-ai/recall-go/internal/facts"
	"github.com/lamina-ai/recall-go/internal/identity"
	"github.com/lamina-ai/recall-go/internal/llm"
	"github.com/lamina-ai/recall-go/internal/memory"
	"github.com/lamina-ai/recall-go/internal/metrics"
	"github.com/lamina-ai/recall-go/internal/server"
	"github.com/lamina-ai/recall-go/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP memory server on stdio",
	Long: `Start the memory server and speak MCP over stdin/stdout.

All logging goes to stderr and the configured log file; stdout carries
only protocol traffic. The short-term buffer lives in this process, the
archive and fact tiers persist in SurrealDB (or the configured archive
backend).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Dual output: stderr text + file JSON. Stdout stays protocol-only.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("recalld starting",
		"version", Version,
		"surrealdb_url", cfg.SurrealDBURL,
		"archive_backend", cfg.ArchiveBackend,
		"embedding_model", cfg.EmbeddingModel,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	emb, err := getEmbedder()
	if err != nil {
		return err
	}
	logger.Info("embedder initialized", "model", emb.Model(), "dimension", emb.Dimension())

	model, err := llm.NewModel(cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	collector := metrics.NewCollector()

	var index archive.Index
	switch cfg.ArchiveBackend {
	case config.ArchiveChromem:
		index, err = archive.NewChromemIndex()
		if err != nil {
			return fmt.Errorf("init chromem index: %w", err)
		}
	case config.ArchiveOff:
		logger.Warn("archival disabled, exchanges will not survive consolidation")
	default:
		index = archive.NewSurrealIndex(dbClient)
	}
	archiveStore := archive.NewStore(index, emb, logger).WithMetrics(collector)

	factStore := facts.NewSurrealStore(dbClient, logger)

	ident := identity.NewManager(cfg.IdentityPath, logger)
	if err := ident.Load(); err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	buf := buffer.New(cfg.BufferCapacity)

	consolidator := memory.NewConsolidator(memory.ConsolidatorConfig{
		Buffer:      buf,
		Archive:     archiveStore,
		Facts:       factStore,
		Summarizer:  model,
		Extractor:   model,
		EpisodeGap:  cfg.EpisodeGap,
		CallTimeout: cfg.CapabilityTimeout,
		Logger:      logger,
		Metrics:     collector,
	})
	assembler := memory.NewAssembler(memory.AssemblerConfig{
		Buffer:         buf,
		Archive:        archiveStore,
		Identity:       ident,
		Window:         cfg.ContextWindow,
		RetrievalLimit: cfg.RetrievalLimit,
		CallTimeout:    cfg.CapabilityTimeout,
		Logger:         logger,
		Metrics:        collector,
	})
	mgr := memory.NewManager(memory.ManagerConfig{
		Buffer:               buf,
		Archive:              archiveStore,
		Facts:                factStore,
		Identity:             ident,
		Consolidator:         consolidator,
		Assembler:            assembler,
		ConsolidateThreshold: cfg.ConsolidateThreshold,
		Logger:               logger,
	})

	if cfg.ConsolidateInterval > 0 {
		go mgr.RunPeriodic(ctx, cfg.ConsolidateInterval)
		logger.Info("periodic consolidation enabled", "interval", cfg.ConsolidateInterval)
	}

	srv := server.New(Version, logger)
	srv.Setup()
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Memory:  mgr,
		Metrics: collector,
		Logger:  logger,
	})

	logger.Info("server ready, awaiting connections")

	// Blocks until disconnect or signal.
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
