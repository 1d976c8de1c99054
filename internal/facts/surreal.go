package facts

import (
	"context"
	"log/slog"

	"github.com/lamina-ai/recall-go/internal/db"
	"github.com/lamina-ai/recall-go/internal/models"
)

// SurrealStore persists facts in the SurrealDB fact table.
type SurrealStore struct {
	client *db.Client
	logger *slog.Logger
}

var _ Store = (*SurrealStore)(nil)

// NewSurrealStore creates a fact store backed by the given client.
func NewSurrealStore(client *db.Client, logger *slog.Logger) *SurrealStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SurrealStore{client: client, logger: logger}
}

// Upsert writes the fact under its deterministic key.
func (s *SurrealStore) Upsert(ctx context.Context, fact models.Fact) (*models.Fact, bool, error) {
	stored, created, err := s.client.QueryUpsertFact(ctx, FactID(fact), fact)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Debug("fact created",
			"subject", fact.Subject, "type", fact.Type)
	} else {
		s.logger.Debug("fact updated",
			"subject", fact.Subject, "type", fact.Type, "confidence", fact.Confidence)
	}
	return stored, created, nil
}

// Query returns facts filtered by subject and/or type.
func (s *SurrealStore) Query(ctx context.Context, subject, factType string) ([]models.Fact, error) {
	return s.client.QueryFacts(ctx, subject, factType)
}

// Count returns the number of stored facts.
func (s *SurrealStore) Count(ctx context.Context) (int, error) {
	return s.client.QueryCount(ctx, "fact")
}

// Wipe deletes all facts.
func (s *SurrealStore) Wipe(ctx context.Context) (int, error) {
	return s.client.QueryWipeTable(ctx, "fact")
}
