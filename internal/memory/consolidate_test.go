package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/buffer"
	"github.com/lamina-ai/recall-go/internal/embedding"
	"github.com/lamina-ai/recall-go/internal/facts"
	"github.com/lamina-ai/recall-go/internal/llm"
	"github.com/lamina-ai/recall-go/internal/models"
)

type fixture struct {
	buffer     *buffer.Buffer
	archive    *archive.Store
	facts      *facts.MemoryStore
	capability *llm.StaticCapability
}

func newFixture(t *testing.T, withIndex bool) (*Consolidator, *fixture) {
	t.Helper()

	f := &fixture{
		buffer:     buffer.New(buffer.DefaultCapacity),
		facts:      facts.NewMemoryStore(),
		capability: &llm.StaticCapability{Summary: "they talked about the weather"},
	}

	var index archive.Index
	if withIndex {
		chromemIndex, err := archive.NewChromemIndex()
		require.NoError(t, err)
		index = chromemIndex
	}
	f.archive = archive.NewStore(index, embedding.NewMockEmbedder(64), nil)

	c := NewConsolidator(ConsolidatorConfig{
		Buffer:     f.buffer,
		Archive:    f.archive,
		Facts:      f.facts,
		Summarizer: f.capability,
		Extractor:  f.capability,
	})
	return c, f
}

func TestConsolidateEmptyBuffer(t *testing.T) {
	c, _ := newFixture(t, true)

	result, err := c.Run(context.Background(), "ch1")
	require.NoError(t, err)
	assert.Zero(t, result.ProcessedTurns)
	assert.Zero(t, result.EntriesArchived)
	assert.Zero(t, result.FactsExtracted)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "nothing to consolidate", result.Summary)
}

func TestConsolidateSingleEpisode(t *testing.T) {
	c, f := newFixture(t, true)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	f.buffer.Append("ch1", turnAt("alice", "hi", base, false))
	f.buffer.Append("ch1", turnAt("agent", "hi alice", base.Add(10*time.Second), true))
	f.buffer.Append("ch1", turnAt("alice", "bye", base.Add(30*time.Second), false))
	f.buffer.Append("ch1", turnAt("agent", "bye", base.Add(40*time.Second), true))

	result, err := c.Run(ctx, "ch1")
	require.NoError(t, err)

	assert.Equal(t, 4, result.ProcessedTurns)
	assert.Equal(t, 2, result.EntriesArchived)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, f.capability.SummarizeCalls, "one summary per episode")
	assert.Equal(t, 1, f.capability.ExtractCalls, "one extraction per episode")
	assert.Empty(t, f.buffer.Read("ch1"), "buffer cleared after run")

	// Archived entries carry the episode summary as metadata.
	entries, err := f.archive.Search(ctx, models.SearchQuery{Text: "hi", ChannelID: "ch1"})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "they talked about the weather", entries[0].Metadata["summary"])
}

func TestConsolidateSplitsEpisodes(t *testing.T) {
	c, f := newFixture(t, true)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	f.buffer.Append("ch1", turnAt("alice", "morning thought", base, false))
	f.buffer.Append("ch1", turnAt("alice", "afternoon thought", base.Add(40*time.Minute), false))

	result, err := c.Run(context.Background(), "ch1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProcessedTurns)
	assert.Equal(t, 2, f.capability.SummarizeCalls, "each episode summarized independently")
	assert.Zero(t, result.EntriesArchived, "no participant→agent pairs to archive")
}

func TestConsolidateFactDedupAcrossRuns(t *testing.T) {
	c, f := newFixture(t, true)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	f.capability.Candidates = []models.FactCandidate{{
		FactType: "user_preference", Subject: "alice",
		Content: "likes rain", Confidence: 0.9,
	}}

	f.buffer.Append("ch1", turnAt("alice", "I like rain", base, false))
	result, err := c.Run(ctx, "ch1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FactsExtracted)

	f.buffer.Append("ch1", turnAt("alice", "rain again today, love it", base.Add(time.Hour), false))
	result, err = c.Run(ctx, "ch1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FactsExtracted)

	n, err := f.facts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "same triple across runs must stay one row")

	stored, err := f.facts.Query(ctx, "alice", "user_preference")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Len(t, stored[0].Provenance, 2, "both runs recorded in provenance")
}

func TestConsolidateWithoutIndexStillExtractsAndClears(t *testing.T) {
	c, f := newFixture(t, false)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	f.capability.Candidates = []models.FactCandidate{{
		Subject: "alice", Content: "works nights", Confidence: 0.8,
	}}

	f.buffer.Append("ch1", turnAt("alice", "question", base, false))
	f.buffer.Append("ch1", turnAt("agent", "answer", base.Add(time.Second), true))

	result, err := c.Run(ctx, "ch1")
	require.NoError(t, err)

	assert.Zero(t, result.EntriesArchived, "archival degrades to no-op")
	assert.Empty(t, result.Errors, "missing index is soft, not an error")
	assert.Equal(t, 1, result.FactsExtracted)
	assert.Empty(t, f.buffer.Read("ch1"), "buffer still cleared")
}

func TestConsolidatePerEpisodeFailureIsolation(t *testing.T) {
	f := &fixture{
		buffer: buffer.New(buffer.DefaultCapacity),
		facts:  facts.NewMemoryStore(),
	}
	f.archive = archive.NewStore(nil, embedding.NewMockEmbedder(64), nil)

	// Fails the first episode's summarization, succeeds afterwards.
	summ := &flakySummarizer{failFirst: true}
	c := NewConsolidator(ConsolidatorConfig{
		Buffer:     f.buffer,
		Archive:    f.archive,
		Facts:      f.facts,
		Summarizer: summ,
		Extractor:  &llm.StaticCapability{},
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.buffer.Append("ch1", turnAt("alice", "episode one", base, false))
	f.buffer.Append("ch1", turnAt("alice", "episode two", base.Add(2*time.Hour), false))

	result, err := c.Run(context.Background(), "ch1")
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "episode 0")
	assert.Contains(t, result.Errors[0], "summarize")
	assert.Equal(t, 2, summ.calls, "second episode still processed")
}

func TestConsolidateAbortsOnFatalAPIError(t *testing.T) {
	f := &fixture{
		buffer: buffer.New(buffer.DefaultCapacity),
		facts:  facts.NewMemoryStore(),
	}
	f.archive = archive.NewStore(nil, embedding.NewMockEmbedder(64), nil)

	summ := &flakySummarizer{err: llm.ErrFatalAPI}
	c := NewConsolidator(ConsolidatorConfig{
		Buffer:     f.buffer,
		Archive:    f.archive,
		Facts:      f.facts,
		Summarizer: summ,
		Extractor:  &llm.StaticCapability{},
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.buffer.Append("ch1", turnAt("alice", "episode one", base, false))
	f.buffer.Append("ch1", turnAt("alice", "episode two", base.Add(2*time.Hour), false))

	result, err := c.Run(context.Background(), "ch1")
	require.NoError(t, err)

	assert.Equal(t, 1, summ.calls, "run aborted before later episodes")
	require.NotEmpty(t, result.Errors)
	assert.Zero(t, result.ProcessedTurns, "nothing was handled")

	remaining := f.buffer.Read("ch1")
	assert.Len(t, remaining, 2, "unprocessed turns survive the aborted run")
}

func TestConsolidateFatalAbortKeepsUnhandledEpisodesBuffered(t *testing.T) {
	f := &fixture{
		buffer: buffer.New(buffer.DefaultCapacity),
		facts:  facts.NewMemoryStore(),
	}
	f.archive = archive.NewStore(nil, embedding.NewMockEmbedder(64), nil)

	// First episode summarizes fine, the second hits a fatal API error.
	summ := &flakySummarizer{failAfter: 1, err: llm.ErrFatalAPI}
	c := NewConsolidator(ConsolidatorConfig{
		Buffer:     f.buffer,
		Archive:    f.archive,
		Facts:      f.facts,
		Summarizer: summ,
		Extractor:  &llm.StaticCapability{},
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.buffer.Append("ch1", turnAt("alice", "episode one", base, false))
	f.buffer.Append("ch1", turnAt("alice", "episode two, part one", base.Add(2*time.Hour), false))
	f.buffer.Append("ch1", turnAt("alice", "episode two, part two", base.Add(2*time.Hour+time.Minute), false))

	result, err := c.Run(context.Background(), "ch1")
	require.NoError(t, err)

	assert.Equal(t, 2, summ.calls)
	assert.Equal(t, 1, result.ProcessedTurns, "only the first episode was handled")

	remaining := f.buffer.Read("ch1")
	require.Len(t, remaining, 2, "the aborted episode's turns stay buffered")
	assert.Equal(t, "episode two, part one", remaining[0].Text)
	assert.Equal(t, "episode two, part two", remaining[1].Text)
}

func TestConsolidatePreservesMidRunAppends(t *testing.T) {
	f := &fixture{
		buffer: buffer.New(buffer.DefaultCapacity),
		facts:  facts.NewMemoryStore(),
	}
	f.archive = archive.NewStore(nil, embedding.NewMockEmbedder(64), nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	late := turnAt("bob", "arrived mid-consolidation", base.Add(time.Minute), false)

	// Summarizer that appends a new turn while the run is in flight,
	// after the snapshot was taken.
	summ := &hookSummarizer{hook: func() {
		f.buffer.Append("ch1", late)
	}}

	c := NewConsolidator(ConsolidatorConfig{
		Buffer:     f.buffer,
		Archive:    f.archive,
		Facts:      f.facts,
		Summarizer: summ,
		Extractor:  &llm.StaticCapability{},
	})

	f.buffer.Append("ch1", turnAt("alice", "before the run", base, false))

	result, err := c.Run(context.Background(), "ch1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedTurns)

	remaining := f.buffer.Read("ch1")
	require.Len(t, remaining, 1, "mid-run append must survive the clear")
	assert.Equal(t, "arrived mid-consolidation", remaining[0].Text)
}

type flakySummarizer struct {
	failFirst bool
	failAfter int // calls beyond this count fail with err
	err       error
	calls     int
}

func (s *flakySummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	s.calls++
	if s.err != nil && s.calls > s.failAfter {
		return "", s.err
	}
	if s.failFirst && s.calls == 1 {
		return "", errors.New("model timeout")
	}
	if idx := strings.Index(transcript, "\n"); idx != -1 {
		transcript = transcript[:idx]
	}
	return transcript, nil
}

type hookSummarizer struct {
	hook func()
}

func (s *hookSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	if s.hook != nil {
		s.hook()
	}
	return "summary", nil
}
