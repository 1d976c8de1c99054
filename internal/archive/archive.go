// Package archive is the long-term episodic tier: consolidated
// exchanges stored with embeddings and retrieved by semantic
// similarity. The index backend is pluggable (SurrealDB HNSW or
// embedded chromem); when none is configured the tier degrades to
// ErrIndexUnavailable instead of failing the pipeline.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lamina-ai/recall-go/internal/embedding"
	"github.com/lamina-ai/recall-go/internal/metrics"
	"github.com/lamina-ai/recall-go/internal/models"
)

// ErrIndexUnavailable is returned when no vector index is configured.
// Callers treat archive operations as best-effort and keep going.
var ErrIndexUnavailable = errors.New("archive index unavailable")

// DefaultSearchLimit bounds searches that don't specify one.
const DefaultSearchLimit = 5

// genericQuery stands in when a search has filters but no text.
// Similarity-only backends cannot do recency retrieval, so filter-only
// searches still need some vector to rank against.
const genericQuery = "recent conversation"

// Index stores embedded exchanges and retrieves nearest neighbors.
type Index interface {
	// Add stores an entry under the given ID and returns a backend
	// handle for it.
	Add(ctx context.Context, id string, entry models.ArchiveEntry, vector []float32) (string, error)

	// Search returns up to limit entries nearest to the vector,
	// optionally filtered by participant and/or channel, best first.
	Search(ctx context.Context, vector []float32, participantID, channelID string, limit int) ([]models.ArchiveEntry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Wipe deletes all entries and returns how many were removed.
	Wipe(ctx context.Context) (int, error)
}

// Store pairs an embedder with an index. A nil index is valid and
// makes every operation return ErrIndexUnavailable.
type Store struct {
	index     Index
	embedder  embedding.Embedder
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewStore creates an archive store. index may be nil when the
// archive tier is disabled.
func NewStore(index Index, embedder embedding.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{index: index, embedder: embedder, logger: logger}
}

// WithMetrics attaches a collector that records embedding timings.
func (s *Store) WithMetrics(c *metrics.Collector) *Store {
	s.collector = c
	return s
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vector, err := s.embedder.Embed(ctx, text)
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpEmbedding, time.Since(start))
	}
	return vector, err
}

// Available reports whether the archive tier can serve requests.
func (s *Store) Available() bool {
	return s.index != nil && s.embedder != nil
}

// Archive embeds and stores one exchange. Returns the index handle.
func (s *Store) Archive(ctx context.Context, entry models.ArchiveEntry) (string, error) {
	if !s.Available() {
		return "", ErrIndexUnavailable
	}

	vector, err := s.embed(ctx, embedText(entry))
	if err != nil {
		return "", fmt.Errorf("embed exchange: %w", err)
	}

	handle, err := s.index.Add(ctx, uuid.NewString(), entry, vector)
	if err != nil {
		return "", fmt.Errorf("index exchange: %w", err)
	}

	s.logger.Debug("exchange archived",
		"handle", handle,
		"participant", entry.ParticipantID,
		"channel", entry.ChannelID)
	return handle, nil
}

// Search retrieves the entries most similar to the query text.
func (s *Store) Search(ctx context.Context, q models.SearchQuery) ([]models.ArchiveEntry, error) {
	if !s.Available() {
		return nil, ErrIndexUnavailable
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	text := q.Text
	if strings.TrimSpace(text) == "" {
		text = genericQuery
	}

	vector, err := s.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	entries, err := s.index.Search(ctx, vector, q.ParticipantID, q.ChannelID, limit)
	if err != nil {
		return nil, fmt.Errorf("search archive: %w", err)
	}
	return entries, nil
}

// Count returns the number of archived exchanges.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrIndexUnavailable
	}
	return s.index.Count(ctx)
}

// Wipe deletes all archived exchanges.
func (s *Store) Wipe(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrIndexUnavailable
	}
	return s.index.Wipe(ctx)
}

// embedText is the canonical text an exchange is embedded under. Both
// sides of the exchange contribute, so either phrasing can recall it.
func embedText(entry models.ArchiveEntry) string {
	return entry.ParticipantText + "\n" + entry.AgentText
}
