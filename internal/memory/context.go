package memory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/buffer"
	"github.com/lamina-ai/recall-go/internal/identity"
	"github.com/lamina-ai/recall-go/internal/metrics"
	"github.com/lamina-ai/recall-go/internal/models"
)

// DefaultContextWindow is how many recent turns a context bundle
// carries verbatim.
const DefaultContextWindow = 10

// ContextBundle is everything a reply generator needs: the verbatim
// recent conversation, semantically relevant archived exchanges, and
// the agent's identity.
type ContextBundle struct {
	Recent   []models.Turn         `json:"recent"`
	Relevant []models.ArchiveEntry `json:"relevant,omitempty"`
	Identity models.IdentityRecord `json:"identity"`
}

// Assembler builds context bundles. Read-only over every tier; a tier
// that cannot serve degrades to an empty collection, never an error.
type Assembler struct {
	buffer   *buffer.Buffer
	archive  *archive.Store
	identity *identity.Manager

	window         int
	retrievalLimit int
	callTimeout    time.Duration
	logger         *slog.Logger
	collector      *metrics.Collector
}

// AssemblerConfig wires an Assembler.
type AssemblerConfig struct {
	Buffer   *buffer.Buffer
	Archive  *archive.Store
	Identity *identity.Manager

	// Window caps the verbatim recent turns; zero means 10.
	Window int

	// RetrievalLimit caps archive results; zero means the archive
	// default.
	RetrievalLimit int

	// CallTimeout bounds the archive search; zero means 60 seconds.
	CallTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// NewAssembler creates a context assembler.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultContextWindow
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	return &Assembler{
		buffer:         cfg.Buffer,
		archive:        cfg.Archive,
		identity:       cfg.Identity,
		window:         cfg.Window,
		retrievalLimit: cfg.RetrievalLimit,
		callTimeout:    cfg.CallTimeout,
		logger:         cfg.Logger,
		collector:      cfg.Metrics,
	}
}

// Build assembles a context bundle for a channel and the input text
// being replied to. participantID, when set, personalizes archive
// retrieval to that participant's history.
func (a *Assembler) Build(ctx context.Context, channelID, inputText, participantID string) ContextBundle {
	bundle := ContextBundle{
		Recent: a.recentWindow(channelID),
	}
	if a.identity != nil {
		bundle.Identity = a.identity.Current()
	}

	if a.archive == nil || !a.archive.Available() {
		return bundle
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	start := time.Now()
	entries, err := a.archive.Search(callCtx, models.SearchQuery{
		Text:          inputText,
		ParticipantID: participantID,
		ChannelID:     channelID,
		Limit:         a.retrievalLimit,
	})
	if a.collector != nil {
		a.collector.RecordTiming(metrics.OpArchiveSearch, time.Since(start))
	}
	if err != nil {
		if !errors.Is(err, archive.ErrIndexUnavailable) {
			a.logger.Warn("archive search failed during context assembly",
				"channel", channelID, "error", err)
		}
		return bundle
	}

	bundle.Relevant = entries
	return bundle
}

// recentWindow returns the last window turns of the channel buffer,
// oldest first.
func (a *Assembler) recentWindow(channelID string) []models.Turn {
	turns := a.buffer.Read(channelID)
	if len(turns) > a.window {
		turns = turns[len(turns)-a.window:]
	}
	return turns
}
