package archive

import (
	"context"

	"github.com/lamina-ai/recall-go/internal/db"
	"github.com/lamina-ai/recall-go/internal/models"
)

// SurrealIndex stores exchanges in the SurrealDB exchange table and
// searches them through its HNSW index.
type SurrealIndex struct {
	client *db.Client
}

var _ Index = (*SurrealIndex)(nil)

// NewSurrealIndex creates an index backed by the given client.
func NewSurrealIndex(client *db.Client) *SurrealIndex {
	return &SurrealIndex{client: client}
}

// Add stores the entry under the given record ID.
func (i *SurrealIndex) Add(ctx context.Context, id string, entry models.ArchiveEntry, vector []float32) (string, error) {
	return i.client.QueryInsertExchange(ctx, id, entry, vector)
}

// Search runs a KNN query with optional participant/channel filters.
func (i *SurrealIndex) Search(ctx context.Context, vector []float32, participantID, channelID string, limit int) ([]models.ArchiveEntry, error) {
	return i.client.QuerySearchExchanges(ctx, vector, participantID, channelID, limit)
}

// Count returns the number of archived exchanges.
func (i *SurrealIndex) Count(ctx context.Context) (int, error) {
	return i.client.QueryCount(ctx, "exchange")
}

// Wipe deletes all archived exchanges.
func (i *SurrealIndex) Wipe(ctx context.Context) (int, error) {
	return i.client.QueryWipeTable(ctx, "exchange")
}
