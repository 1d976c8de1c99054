package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/buffer"
	"github.com/lamina-ai/recall-go/internal/facts"
	"github.com/lamina-ai/recall-go/internal/identity"
	"github.com/lamina-ai/recall-go/internal/models"
)

// Manager is the facade over all three tiers. Ingestion (RecordTurn,
// BuildContext) stays fast and lock-light; consolidation runs in the
// background, at most one run per channel at a time.
type Manager struct {
	buffer       *buffer.Buffer
	archive      *archive.Store
	facts        facts.Store
	identity     *identity.Manager
	consolidator *Consolidator
	assembler    *Assembler
	logger       *slog.Logger

	// threshold triggers opportunistic consolidation when a channel's
	// buffer reaches this many turns; zero disables the trigger.
	threshold int

	mu       sync.Mutex
	inFlight map[string]bool
}

// ManagerConfig wires a Manager.
type ManagerConfig struct {
	Buffer       *buffer.Buffer
	Archive      *archive.Store
	Facts        facts.Store
	Identity     *identity.Manager
	Consolidator *Consolidator
	Assembler    *Assembler

	// ConsolidateThreshold triggers a background run when a channel's
	// buffer reaches this size. Zero disables opportunistic runs.
	ConsolidateThreshold int

	Logger *slog.Logger
}

// NewManager creates the memory facade.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		buffer:       cfg.Buffer,
		archive:      cfg.Archive,
		facts:        cfg.Facts,
		identity:     cfg.Identity,
		consolidator: cfg.Consolidator,
		assembler:    cfg.Assembler,
		threshold:    cfg.ConsolidateThreshold,
		logger:       cfg.Logger,
		inFlight:     make(map[string]bool),
	}
}

// RecordTurn appends a turn to the channel's short-term buffer. A zero
// timestamp is filled with the current time. When the buffer reaches
// the consolidation threshold a background run is kicked off for the
// channel, without blocking the caller.
func (m *Manager) RecordTurn(channelID string, turn models.Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	if turn.ChannelID == "" {
		turn.ChannelID = channelID
	}
	m.buffer.Append(channelID, turn)

	if m.threshold > 0 && m.buffer.Len(channelID) >= m.threshold {
		m.consolidateAsync(channelID)
	}
}

// BuildContext assembles a context bundle for replying in a channel.
func (m *Manager) BuildContext(ctx context.Context, channelID, inputText, participantID string) ContextBundle {
	return m.assembler.Build(ctx, channelID, inputText, participantID)
}

// Consolidate runs the pipeline for one channel synchronously. A run
// already in flight for the channel returns immediately with a no-op
// result rather than doubling up.
func (m *Manager) Consolidate(ctx context.Context, channelID string) (models.ConsolidationResult, error) {
	if !m.acquire(channelID) {
		return models.ConsolidationResult{Summary: "consolidation already running"}, nil
	}
	defer m.release(channelID)

	return m.consolidator.Run(ctx, channelID)
}

// ConsolidateAll sweeps every channel with buffered turns. Per-channel
// results are merged; a channel's failure doesn't stop the sweep.
func (m *Manager) ConsolidateAll(ctx context.Context) models.ConsolidationResult {
	var merged models.ConsolidationResult
	start := time.Now()

	for _, channelID := range m.buffer.Channels() {
		if m.buffer.Len(channelID) == 0 {
			continue
		}
		result, err := m.Consolidate(ctx, channelID)
		if err != nil {
			merged.Errors = append(merged.Errors,
				fmt.Sprintf("channel %s: %v", channelID, err))
			continue
		}
		merged.ProcessedTurns += result.ProcessedTurns
		merged.EntriesArchived += result.EntriesArchived
		merged.FactsExtracted += result.FactsExtracted
		merged.Errors = append(merged.Errors, result.Errors...)
		if result.Summary != "" {
			merged.Summary = result.Summary
		}
	}

	merged.Elapsed = time.Since(start)
	return merged
}

// RunPeriodic consolidates all channels on a fixed interval until the
// context is canceled. Intended to run in its own goroutine.
func (m *Manager) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("periodic consolidation started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("periodic consolidation stopped")
			return
		case <-ticker.C:
			result := m.ConsolidateAll(ctx)
			if result.ProcessedTurns > 0 || len(result.Errors) > 0 {
				m.logger.Info("periodic consolidation pass",
					"turns", result.ProcessedTurns,
					"archived", result.EntriesArchived,
					"facts", result.FactsExtracted,
					"errors", len(result.Errors))
			}
		}
	}
}

// SearchArchive queries the archive tier directly.
func (m *Manager) SearchArchive(ctx context.Context, q models.SearchQuery) ([]models.ArchiveEntry, error) {
	entries, err := m.archive.Search(ctx, q)
	if errors.Is(err, archive.ErrIndexUnavailable) {
		return []models.ArchiveEntry{}, nil
	}
	return entries, err
}

// QueryFacts queries the fact store.
func (m *Manager) QueryFacts(ctx context.Context, subject, factType string) ([]models.Fact, error) {
	return m.facts.Query(ctx, subject, factType)
}

// ClearBuffer empties one channel's short-term buffer and returns how
// many turns were dropped.
func (m *Manager) ClearBuffer(channelID string) int {
	return m.buffer.Clear(channelID)
}

// Stats reports a point-in-time snapshot across tiers.
func (m *Manager) Stats() models.MemoryStats {
	channels, turns := m.buffer.Stats()
	stats := models.MemoryStats{
		BufferChannels: channels,
		BufferedTurns:  turns,
		ArchiveEnabled: m.archive.Available(),
	}
	if m.identity != nil {
		stats.Identity = m.identity.Current()
	}
	return stats
}

// Wipe clears all three tiers. Partial failures are reported alongside
// the counts that did complete.
func (m *Manager) Wipe(ctx context.Context) models.WipeResult {
	var result models.WipeResult

	for _, channelID := range m.buffer.Channels() {
		result.BufferTurns += m.buffer.Clear(channelID)
	}

	n, err := m.archive.Wipe(ctx)
	switch {
	case errors.Is(err, archive.ErrIndexUnavailable):
		// Nothing to wipe.
	case err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("archive: %v", err))
	default:
		result.ArchiveEntries = n
	}

	n, err = m.facts.Wipe(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("facts: %v", err))
	} else {
		result.Facts = n
	}

	m.logger.Warn("memory wiped",
		"buffer_turns", result.BufferTurns,
		"archive_entries", result.ArchiveEntries,
		"facts", result.Facts,
		"errors", len(result.Errors))
	return result
}

// Identity returns the active identity record.
func (m *Manager) Identity() models.IdentityRecord {
	return m.identity.Current()
}

// ReloadIdentity re-reads the identity file from disk.
func (m *Manager) ReloadIdentity() (models.IdentityRecord, error) {
	return m.identity.Reload()
}

func (m *Manager) consolidateAsync(channelID string) {
	if !m.acquire(channelID) {
		return
	}
	go func() {
		defer m.release(channelID)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := m.consolidator.Run(ctx, channelID); err != nil {
			m.logger.Error("background consolidation failed",
				"channel", channelID, "error", err)
		}
	}()
}

func (m *Manager) acquire(channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight[channelID] {
		return false
	}
	m.inFlight[channelID] = true
	return true
}

func (m *Manager) release(channelID string) {
	m.mu.Lock()
	delete(m.inFlight, channelID)
	m.mu.Unlock()
}
