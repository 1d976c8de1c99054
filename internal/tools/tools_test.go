package tools_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamina-ai/recall-go/internal/archive"
	"github.com/lamina-ai/recall-go/internal/buffer"
	"github.com/lamina-ai/recall-go/internal/embedding"
	"github.com/lamina-ai/recall-go/internal/facts"
	"github.com/lamina-ai/recall-go/internal/identity"
	"github.com/lamina-ai/recall-go/internal/llm"
	"github.com/lamina-ai/recall-go/internal/memory"
	"github.com/lamina-ai/recall-go/internal/metrics"
	"github.com/lamina-ai/recall-go/internal/models"
	"github.com/lamina-ai/recall-go/internal/server"
	"github.com/lamina-ai/recall-go/internal/tools"
)

const registeredToolCount = 10

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// newTestSession wires the full in-process stack behind an MCP session:
// real buffer, chromem-backed archive with a mock embedder, in-memory
// fact store, canned summarizer/extractor.
func newTestSession(t *testing.T) (*mcp.ClientSession, *llm.StaticCapability) {
	t.Helper()
	logger := testLogger()

	buf := buffer.New(0)

	idx, err := archive.NewChromemIndex()
	require.NoError(t, err)
	store := archive.NewStore(idx, embedding.NewMockEmbedder(64), logger)

	factStore := facts.NewMemoryStore()

	capability := &llm.StaticCapability{
		Summary: "talked about test fixtures",
		Candidates: []models.FactCandidate{
			{FactType: "user_preference", Subject: "alice", Content: "prefers short answers", Confidence: 0.9},
		},
	}

	ident := identity.NewManager(filepath.Join(t.TempDir(), "identity.yaml"), logger)
	require.NoError(t, ident.Load())

	consolidator := memory.NewConsolidator(memory.ConsolidatorConfig{
		Buffer:     buf,
		Archive:    store,
		Facts:      factStore,
		Summarizer: capability,
		Extractor:  capability,
		Logger:     logger,
	})
	assembler := memory.NewAssembler(memory.AssemblerConfig{
		Buffer:   buf,
		Archive:  store,
		Identity: ident,
		Logger:   logger,
	})
	mgr := memory.NewManager(memory.ManagerConfig{
		Buffer:       buf,
		Archive:      store,
		Facts:        factStore,
		Identity:     ident,
		Consolidator: consolidator,
		Assembler:    assembler,
		Logger:       logger,
	})

	srv := server.New("test", logger)
	srv.Setup()
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Memory:  mgr,
		Metrics: metrics.NewCollector(),
		Logger:  logger,
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session, capability
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool(%s) transport error", name)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestListToolsRegistersAll(t *testing.T) {
	session, _ := newTestSession(t)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Tools, registeredToolCount)

	names := make(map[string]bool, len(result.Tools))
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"ping", "record_turn", "build_context", "search_archive", "query_facts",
		"memory_stats", "consolidate", "clear_buffer", "wipe_memory", "reload_identity",
	} {
		assert.True(t, names[want], "tool %s should be registered", want)
	}
}

func TestRecordTurnValidation(t *testing.T) {
	session, _ := newTestSession(t)

	result := callTool(t, session, "record_turn", map[string]any{
		"channel_id": "", "participant_id": "u1", "text": "hi",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "channel_id")

	result = callTool(t, session, "record_turn", map[string]any{
		"channel_id": "ch", "participant_id": "u1", "text": "hi", "timestamp": "not-a-time",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "timestamp")
}

func TestRecordThenBuildContext(t *testing.T) {
	session, _ := newTestSession(t)

	for _, text := range []string{"hello", "how are you"} {
		result := callTool(t, session, "record_turn", map[string]any{
			"channel_id": "ch", "participant_id": "u1", "text": text,
		})
		require.False(t, result.IsError, resultText(t, result))
		assert.Equal(t, "recorded", resultText(t, result))
	}

	result := callTool(t, session, "build_context", map[string]any{
		"channel_id": "ch", "text": "hello", "participant_id": "u1",
	})
	require.False(t, result.IsError, resultText(t, result))

	var bundle memory.ContextBundle
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &bundle))
	require.Len(t, bundle.Recent, 2)
	assert.Equal(t, "hello", bundle.Recent[0].Text)
	assert.Equal(t, "how are you", bundle.Recent[1].Text)
	assert.NotEmpty(t, bundle.Identity.Name)
}

func TestConsolidateThenSearchAndFacts(t *testing.T) {
	session, capability := newTestSession(t)

	base := time.Now().Add(-time.Hour).UTC()
	turns := []struct {
		participant string
		text        string
		fromAgent   bool
	}{
		{"u1", "I prefer short answers", false},
		{"agent", "Noted, short answers it is", true},
	}
	for i, turn := range turns {
		result := callTool(t, session, "record_turn", map[string]any{
			"channel_id":     "ch",
			"participant_id": turn.participant,
			"text":           turn.text,
			"from_agent":     turn.fromAgent,
			"timestamp":      base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		require.False(t, result.IsError, resultText(t, result))
	}

	result := callTool(t, session, "consolidate", map[string]any{"channel_id": "ch"})
	require.False(t, result.IsError, resultText(t, result))

	var run models.ConsolidationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &run))
	assert.Equal(t, 2, run.ProcessedTurns)
	assert.Equal(t, 1, run.EntriesArchived)
	assert.Equal(t, 1, run.FactsExtracted)
	assert.Empty(t, run.Errors)
	assert.Equal(t, 1, capability.SummarizeCalls)

	// The archived exchange is findable.
	result = callTool(t, session, "search_archive", map[string]any{
		"query": "short answers", "channel_id": "ch",
	})
	require.False(t, result.IsError, resultText(t, result))
	var search struct {
		Entries []models.ArchiveEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &search))
	require.Equal(t, 1, search.Count)
	assert.Equal(t, "I prefer short answers", search.Entries[0].ParticipantText)

	// The extracted fact is queryable by subject.
	result = callTool(t, session, "query_facts", map[string]any{"subject": "alice"})
	require.False(t, result.IsError, resultText(t, result))
	var factsResult struct {
		Facts []models.Fact `json:"facts"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &factsResult))
	require.Equal(t, 1, factsResult.Count)
	assert.Equal(t, "prefers short answers", factsResult.Facts[0].Content)
}

func TestSearchArchiveLimitValidation(t *testing.T) {
	session, _ := newTestSession(t)

	result := callTool(t, session, "search_archive", map[string]any{"limit": 101})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "1-100")
}

func TestMemoryStats(t *testing.T) {
	session, _ := newTestSession(t)

	result := callTool(t, session, "record_turn", map[string]any{
		"channel_id": "ch", "participant_id": "u1", "text": "hi",
	})
	require.False(t, result.IsError)

	result = callTool(t, session, "memory_stats", map[string]any{})
	require.False(t, result.IsError, resultText(t, result))

	var stats struct {
		models.MemoryStats
		Operations *metrics.Snapshot `json:"operations"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &stats))
	assert.Equal(t, 1, stats.BufferChannels)
	assert.Equal(t, 1, stats.BufferedTurns)
	assert.True(t, stats.ArchiveEnabled)
	require.NotNil(t, stats.Operations)
}

func TestClearBuffer(t *testing.T) {
	session, _ := newTestSession(t)

	for i := 0; i < 3; i++ {
		callTool(t, session, "record_turn", map[string]any{
			"channel_id": "ch", "participant_id": "u1", "text": "x",
		})
	}

	result := callTool(t, session, "clear_buffer", map[string]any{"channel_id": "ch"})
	require.False(t, result.IsError)
	assert.Equal(t, "cleared 3 turns", resultText(t, result))
}

func TestWipeMemoryRequiresConfirmation(t *testing.T) {
	session, _ := newTestSession(t)

	callTool(t, session, "record_turn", map[string]any{
		"channel_id": "ch", "participant_id": "u1", "text": "hi",
	})

	result := callTool(t, session, "wipe_memory", map[string]any{"confirm": false})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "confirm")

	result = callTool(t, session, "wipe_memory", map[string]any{"confirm": true})
	require.False(t, result.IsError, resultText(t, result))

	var wiped models.WipeResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &wiped))
	assert.Equal(t, 1, wiped.BufferTurns)
	assert.Empty(t, wiped.Errors)
}

func TestReloadIdentity(t *testing.T) {
	session, _ := newTestSession(t)

	result := callTool(t, session, "reload_identity", map[string]any{})
	require.False(t, result.IsError, resultText(t, result))

	var record models.IdentityRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &record))
	assert.NotEmpty(t, record.Name)
}

func TestPing(t *testing.T) {
	session, _ := newTestSession(t)

	result := callTool(t, session, "ping", map[string]any{})
	require.False(t, result.IsError)
	assert.Equal(t, "pong", resultText(t, result))
}
