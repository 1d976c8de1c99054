package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/lamina-ai/recall-go/internal/models"
)

// exchangeRow is the stored shape of an archive entry.
type exchangeRow struct {
	ID              surrealmodels.RecordID `json:"id"`
	ParticipantText string                 `json:"participant_text"`
	AgentText       string                 `json:"agent_text"`
	ParticipantID   string                 `json:"participant_id"`
	ParticipantName string                 `json:"participant_name"`
	ChannelID       string                 `json:"channel_id"`
	Timestamp       time.Time              `json:"timestamp"`
	Metadata        map[string]any         `json:"metadata,omitempty"`
	Score           float64                `json:"score,omitempty"`
}

func (r exchangeRow) entry() models.ArchiveEntry {
	return models.ArchiveEntry{
		ParticipantText: r.ParticipantText,
		AgentText:       r.AgentText,
		ParticipantID:   r.ParticipantID,
		ParticipantName: r.ParticipantName,
		ChannelID:       r.ChannelID,
		Timestamp:       r.Timestamp,
		Metadata:        r.Metadata,
		Score:           r.Score,
		IndexHandle:     r.ID.String(),
	}
}

// factRow is the stored shape of a fact.
type factRow struct {
	ID          surrealmodels.RecordID `json:"id"`
	FactType    string                 `json:"fact_type"`
	Subject     string                 `json:"subject"`
	Content     string                 `json:"content"`
	Confidence  float64                `json:"confidence"`
	Provenance  []string               `json:"provenance,omitempty"`
	Created     time.Time              `json:"created,omitempty"`
	LastUpdated time.Time              `json:"last_updated,omitempty"`
}

func (r factRow) fact() models.Fact {
	return models.Fact{
		Type:        r.FactType,
		Subject:     r.Subject,
		Content:     r.Content,
		Confidence:  r.Confidence,
		Provenance:  r.Provenance,
		CreatedAt:   r.Created,
		LastUpdated: r.LastUpdated,
	}
}

// QueryInsertExchange writes one archive entry with its embedding and returns
// the record ID as the index handle. Exchanges are append-only; there is no
// update path.
func (c *Client) QueryInsertExchange(
	ctx context.Context,
	id string,
	entry models.ArchiveEntry,
	embedding []float32,
) (string, error) {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	sql := `
		CREATE type::record("exchange", $id) SET
			participant_text = $participant_text,
			agent_text = $agent_text,
			participant_id = $participant_id,
			participant_name = $participant_name,
			channel_id = $channel_id,
			timestamp = type::datetime($timestamp),
			embedding = $embedding,
			metadata = $metadata
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]exchangeRow](ctx, c.db, sql, map[string]any{
		"id":               id,
		"participant_text": entry.ParticipantText,
		"agent_text":       entry.AgentText,
		"participant_id":   entry.ParticipantID,
		"participant_name": entry.ParticipantName,
		"channel_id":       entry.ChannelID,
		"timestamp":        entry.Timestamp.UTC().Format(time.RFC3339),
		"embedding":        embedding,
		"metadata":         metadata,
	})
	if err != nil {
		return "", fmt.Errorf("insert exchange: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", fmt.Errorf("insert exchange: no result returned")
	}
	return (*results)[0].Result[0].ID.String(), nil
}

// QuerySearchExchanges performs a KNN vector search over archived exchanges,
// optionally filtered by participant and channel. Results carry a cosine
// similarity score and are ordered by it, descending.
func (c *Client) QuerySearchExchanges(
	ctx context.Context,
	embedding []float32,
	participantID string,
	channelID string,
	limit int,
) ([]models.ArchiveEntry, error) {
	filterClause := ""
	vars := map[string]any{"emb": embedding}
	if participantID != "" {
		filterClause += " AND participant_id = $participant_id"
		vars["participant_id"] = participantID
	}
	if channelID != "" {
		filterClause += " AND channel_id = $channel_id"
		vars["channel_id"] = channelID
	}

	// HNSW KNN with ef=40; similarity recomputed for the score column.
	sql := fmt.Sprintf(`
		SELECT id, participant_text, agent_text, participant_id, participant_name,
				channel_id, timestamp, metadata,
				vector::similarity::cosine(embedding, $emb) AS score
		FROM exchange
		WHERE embedding <|%d,40|> $emb %s
		ORDER BY score DESC
	`, limit, filterClause)

	results, err := surrealdb.Query[[]exchangeRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search exchanges: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ArchiveEntry{}, nil
	}
	rows := (*results)[0].Result
	entries := make([]models.ArchiveEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// QueryUpsertFact creates or updates a fact under its deterministic record
// ID. The UPSERT is atomic per key, so two concurrent extractions of the same
// (subject, type, content) tuple converge on one row: the later write moves
// confidence and last_updated, provenance is unioned, created is preserved.
// Returns (fact, wasCreated, error).
func (c *Client) QueryUpsertFact(
	ctx context.Context,
	id string,
	fact models.Fact,
) (*models.Fact, bool, error) {
	provenance := fact.Provenance
	if provenance == nil {
		provenance = []string{}
	}

	existsSQL := `SELECT count() AS c FROM type::record("fact", $id)`
	existsResult, err := surrealdb.Query[[]struct{ C int }](ctx, c.db, existsSQL, map[string]any{"id": id})
	if err != nil {
		return nil, false, fmt.Errorf("check fact exists: %w", wrapQueryError(err))
	}

	wasCreated := true
	if existsResult != nil && len(*existsResult) > 0 && len((*existsResult)[0].Result) > 0 {
		wasCreated = (*existsResult)[0].Result[0].C == 0
	}

	sql := `
		UPSERT type::record("fact", $id) SET
			fact_type = $fact_type,
			subject = $subject,
			content = $content,
			confidence = $confidence,
			provenance = array::union(provenance ?? [], $provenance),
			last_updated = time::now(),
			created = IF created THEN created ELSE time::now() END
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]factRow](ctx, c.db, sql, map[string]any{
		"id":         id,
		"fact_type":  fact.Type,
		"subject":    fact.Subject,
		"content":    fact.Content,
		"confidence": fact.Confidence,
		"provenance": provenance,
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert fact: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, false, fmt.Errorf("upsert fact: no result returned")
	}

	stored := (*results)[0].Result[0].fact()
	return &stored, wasCreated, nil
}

// QueryFacts retrieves facts, optionally filtered by subject and/or type,
// ordered by confidence descending then recency descending.
func (c *Client) QueryFacts(
	ctx context.Context,
	subject string,
	factType string,
) ([]models.Fact, error) {
	filterClause := ""
	vars := map[string]any{}
	if subject != "" {
		filterClause += " AND subject = $subject"
		vars["subject"] = subject
	}
	if factType != "" {
		filterClause += " AND fact_type = $fact_type"
		vars["fact_type"] = factType
	}

	sql := fmt.Sprintf(`
		SELECT * FROM fact WHERE true %s
		ORDER BY confidence DESC, last_updated DESC
	`, filterClause)

	results, err := surrealdb.Query[[]factRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Fact{}, nil
	}
	rows := (*results)[0].Result
	facts := make([]models.Fact, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, r.fact())
	}
	return facts, nil
}

// QueryCount returns the row count of a table.
func (c *Client) QueryCount(ctx context.Context, table string) (int, error) {
	sql := fmt.Sprintf(`SELECT count() AS c FROM %s GROUP ALL`, table)

	results, err := surrealdb.Query[[]struct{ C int }](ctx, c.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// QueryWipeTable deletes every row of a table, returning the number removed.
func (c *Client) QueryWipeTable(ctx context.Context, table string) (int, error) {
	n, err := c.QueryCount(ctx, table)
	if err != nil {
		return 0, err
	}

	sql := fmt.Sprintf(`DELETE %s`, table)
	if _, err := surrealdb.Query[any](ctx, c.db, sql, nil); err != nil {
		return 0, fmt.Errorf("wipe %s: %w", table, wrapQueryError(err))
	}
	return n, nil
}
