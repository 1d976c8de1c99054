package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/lamina-ai/recall-go/internal/models"
)

const chromemCollection = "exchanges"

// ChromemIndex stores exchanges in chromem-go, an embedded pure-Go
// vector database. Everything lives in process memory, which suits
// single-node deployments that don't want to run SurrealDB.
type ChromemIndex struct {
	mu  sync.Mutex
	db  *chromem.DB
	col *chromem.Collection
}

var _ Index = (*ChromemIndex)(nil)

// NewChromemIndex creates an empty embedded index.
func NewChromemIndex() (*ChromemIndex, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemIndex{db: db, col: col}, nil
}

// storedExchange is the JSON document content. Filterable fields are
// duplicated into chromem metadata, which only holds strings.
type storedExchange struct {
	ParticipantText string         `json:"participant_text"`
	AgentText       string         `json:"agent_text"`
	ParticipantID   string         `json:"participant_id"`
	ParticipantName string         `json:"participant_name"`
	ChannelID       string         `json:"channel_id"`
	Timestamp       string         `json:"timestamp"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Add stores the entry as a chromem document.
func (i *ChromemIndex) Add(ctx context.Context, id string, entry models.ArchiveEntry, vector []float32) (string, error) {
	content, err := json.Marshal(storedExchange{
		ParticipantText: entry.ParticipantText,
		AgentText:       entry.AgentText,
		ParticipantID:   entry.ParticipantID,
		ParticipantName: entry.ParticipantName,
		ChannelID:       entry.ChannelID,
		Timestamp:       entry.Timestamp.Format(time.RFC3339Nano),
		Metadata:        entry.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("marshal exchange: %w", err)
	}

	i.mu.Lock()
	col := i.col
	i.mu.Unlock()

	err = col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   string(content),
		Embedding: vector,
		Metadata: map[string]string{
			"participant_id": entry.ParticipantID,
			"channel_id":     entry.ChannelID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	return id, nil
}

// Search runs a KNN query with optional participant/channel filters.
func (i *ChromemIndex) Search(ctx context.Context, vector []float32, participantID, channelID string, limit int) ([]models.ArchiveEntry, error) {
	i.mu.Lock()
	col := i.col
	i.mu.Unlock()

	// chromem rejects nResults larger than the collection.
	if n := col.Count(); limit > n {
		limit = n
	}
	if limit == 0 {
		return []models.ArchiveEntry{}, nil
	}

	where := map[string]string{}
	if participantID != "" {
		where["participant_id"] = participantID
	}
	if channelID != "" {
		where["channel_id"] = channelID
	}

	results, err := col.QueryEmbedding(ctx, vector, limit, where, nil)
	if err != nil {
		// Filters shrink the candidate set below nResults; retry smaller.
		if strings.Contains(err.Error(), "nResults") {
			return i.searchShrinking(ctx, vector, where, limit)
		}
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	return resultsToEntries(results)
}

func (i *ChromemIndex) searchShrinking(ctx context.Context, vector []float32, where map[string]string, limit int) ([]models.ArchiveEntry, error) {
	i.mu.Lock()
	col := i.col
	i.mu.Unlock()

	for n := limit - 1; n >= 1; n-- {
		results, err := col.QueryEmbedding(ctx, vector, n, where, nil)
		if err == nil {
			return resultsToEntries(results)
		}
		if !strings.Contains(err.Error(), "nResults") {
			return nil, fmt.Errorf("query embedding: %w", err)
		}
	}
	return []models.ArchiveEntry{}, nil
}

func resultsToEntries(results []chromem.Result) ([]models.ArchiveEntry, error) {
	entries := make([]models.ArchiveEntry, 0, len(results))
	for _, r := range results {
		var stored storedExchange
		if err := json.Unmarshal([]byte(r.Content), &stored); err != nil {
			return nil, fmt.Errorf("unmarshal exchange %s: %w", r.ID, err)
		}

		entry := models.ArchiveEntry{
			ParticipantText: stored.ParticipantText,
			AgentText:       stored.AgentText,
			ParticipantID:   stored.ParticipantID,
			ParticipantName: stored.ParticipantName,
			ChannelID:       stored.ChannelID,
			Metadata:        stored.Metadata,
			Score:           float64(r.Similarity),
			IndexHandle:     r.ID,
		}
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, stored.Timestamp)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Count returns the number of stored exchanges.
func (i *ChromemIndex) Count(_ context.Context) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.col.Count(), nil
}

// Wipe drops and recreates the collection.
func (i *ChromemIndex) Wipe(_ context.Context) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	n := i.col.Count()
	if err := i.db.DeleteCollection(chromemCollection); err != nil {
		return 0, fmt.Errorf("delete collection: %w", err)
	}
	col, err := i.db.CreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("recreate collection: %w", err)
	}
	i.col = col
	return n, nil
}
