package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/buffer"
	"github.com/lamina-ai/recall-go/internal/facts"
	"github.com/lamina-ai/recall-go/internal/llm"
	"github.com/lamina-ai/recall-go/internal/metrics"
	"github.com/lamina-ai/recall-go/internal/models"
)

// Consolidator drains a channel's short-term buffer into the archive
// and fact tiers. One run per channel at a time; the buffer's
// sequence-numbered snapshot keeps turns appended mid-run safe for the
// next generation.
//
// Delivery is deliberately asymmetric: archival is at-least-once (a
// crash after archiving but before the buffer clears re-archives on
// retry, and the archive tolerates duplicates), while facts are
// exactly-once (the upsert key collapses repeats into one row).
type Consolidator struct {
	buffer     *buffer.Buffer
	archive    *archive.Store
	facts      facts.Store
	summarizer llm.Summarizer
	extractor  llm.Extractor

	episodeGap  time.Duration
	callTimeout time.Duration
	logger      *slog.Logger
	collector   *metrics.Collector
}

// ConsolidatorConfig wires a Consolidator.
type ConsolidatorConfig struct {
	Buffer     *buffer.Buffer
	Archive    *archive.Store
	Facts      facts.Store
	Summarizer llm.Summarizer
	Extractor  llm.Extractor

	// EpisodeGap is the partition threshold; zero means 30 minutes.
	EpisodeGap time.Duration

	// CallTimeout bounds each external-capability call; zero means
	// 60 seconds.
	CallTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// NewConsolidator creates a consolidation pipeline.
func NewConsolidator(cfg ConsolidatorConfig) *Consolidator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.EpisodeGap <= 0 {
		cfg.EpisodeGap = DefaultEpisodeGap
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	return &Consolidator{
		buffer:      cfg.Buffer,
		archive:     cfg.Archive,
		facts:       cfg.Facts,
		summarizer:  cfg.Summarizer,
		extractor:   cfg.Extractor,
		episodeGap:  cfg.EpisodeGap,
		callTimeout: cfg.CallTimeout,
		logger:      cfg.Logger,
		collector:   cfg.Metrics,
	}
}

// Run consolidates one channel. Errors inside individual episodes are
// accumulated in the result, not raised; the returned error is reserved
// for conditions that abort the whole run before any tier is touched.
func (c *Consolidator) Run(ctx context.Context, channelID string) (models.ConsolidationResult, error) {
	start := time.Now()
	result := models.ConsolidationResult{}

	turns, lastSeq := c.buffer.Snapshot(channelID)
	if len(turns) == 0 {
		result.Summary = "nothing to consolidate"
		result.Elapsed = time.Since(start)
		return result, nil
	}
	result.ProcessedTurns = len(turns)

	runID := fmt.Sprintf("consolidate:%s:%s", channelID, start.UTC().Format(time.RFC3339))
	episodes := PartitionEpisodes(turns, c.episodeGap)

	c.logger.Info("consolidation started",
		"channel", channelID,
		"turns", len(turns),
		"episodes", len(episodes))

	handledTurns := 0
	aborted := false
	for i, episode := range episodes {
		summary, err := c.summarizeEpisode(ctx, episode)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("episode %d: summarize: %v", i, err))
			if errors.Is(err, llm.ErrFatalAPI) {
				c.logger.Error("aborting run on fatal API error", "channel", channelID, "error", err)
				aborted = true
				break
			}
			handledTurns += len(episode.Turns)
			continue
		}
		result.Summary = summary

		result.EntriesArchived += c.archiveEpisode(ctx, episode, summary, &result, i)
		result.FactsExtracted += c.extractEpisodeFacts(ctx, summary, runID, &result, i)
		handledTurns += len(episode.Turns)
	}

	// Clear only what the snapshot covered; turns appended during the
	// run stay for the next one. An aborted run clears nothing past the
	// last handled episode, so unprocessed turns stay in the buffer for
	// the next attempt. Snapshot sequences are contiguous, which lets
	// the handled-turn count locate that episode's final sequence.
	clearThrough := lastSeq
	if aborted {
		clearThrough = lastSeq - uint64(len(turns)-handledTurns)
		result.ProcessedTurns = handledTurns
	}
	if clearThrough > 0 {
		c.buffer.ClearThrough(channelID, clearThrough)
	}

	result.Elapsed = time.Since(start)
	if c.collector != nil {
		c.collector.RecordTiming(metrics.OpConsolidation, result.Elapsed)
	}

	c.logger.Info("consolidation finished",
		"channel", channelID,
		"turns", result.ProcessedTurns,
		"archived", result.EntriesArchived,
		"facts", result.FactsExtracted,
		"errors", len(result.Errors),
		"elapsed", result.Elapsed)
	return result, nil
}

func (c *Consolidator) summarizeEpisode(ctx context.Context, episode models.Episode) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	summary, err := c.summarizer.Summarize(callCtx, episode.Transcript())
	if c.collector != nil {
		c.collector.RecordTiming(metrics.OpSummarize, time.Since(start))
	}
	return summary, err
}

// archiveEpisode writes one entry per adjacent participant→agent pair,
// carrying the episode summary as metadata. An unavailable index
// degrades archival to a logged no-op.
func (c *Consolidator) archiveEpisode(ctx context.Context, episode models.Episode, summary string, result *models.ConsolidationResult, episodeIdx int) int {
	archived := 0
	for _, pair := range exchangePairs(episode) {
		entry := models.NewArchiveEntry(pair[0], pair[1])
		entry.Metadata["summary"] = summary

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		start := time.Now()
		_, err := c.archive.Archive(callCtx, entry)
		cancel()
		if c.collector != nil {
			c.collector.RecordTiming(metrics.OpArchiveStore, time.Since(start))
		}

		if err != nil {
			if errors.Is(err, archive.ErrIndexUnavailable) {
				c.logger.Warn("archive index unavailable, skipping archival")
				return archived
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("episode %d: archive: %v", episodeIdx, err))
			continue
		}
		archived++
	}
	return archived
}

// extractEpisodeFacts runs extraction once per episode summary and
// upserts each candidate. Malformed extraction output yields zero facts
// for the episode, recorded but not fatal.
func (c *Consolidator) extractEpisodeFacts(ctx context.Context, summary, runID string, result *models.ConsolidationResult, episodeIdx int) int {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	candidates, err := c.extractor.ExtractFacts(callCtx, summary)
	if c.collector != nil {
		c.collector.RecordTiming(metrics.OpExtract, time.Since(start))
	}
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("episode %d: extract: %v", episodeIdx, err))
		return 0
	}

	stored := 0
	for _, candidate := range candidates {
		fact := candidate.Fact(runID)

		upsertStart := time.Now()
		_, _, err := c.facts.Upsert(ctx, fact)
		if c.collector != nil {
			c.collector.RecordTiming(metrics.OpFactUpsert, time.Since(upsertStart))
		}
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("episode %d: upsert fact %q: %v", episodeIdx, fact.Content, err))
			continue
		}
		stored++
	}
	return stored
}
