package models

import "time"

// ArchiveEntry is one archived participant/agent exchange. Entries are
// created only by the consolidation pipeline, are immutable after creation,
// and are retrieved (never mutated) by the context assembler.
type ArchiveEntry struct {
	ParticipantText string         `json:"participant_text"`
	AgentText       string         `json:"agent_text"`
	ParticipantID   string         `json:"participant_id"`
	ParticipantName string         `json:"participant_name"`
	ChannelID       string         `json:"channel_id"`
	Timestamp       time.Time      `json:"timestamp"`
	Score           float64        `json:"score"`
	Metadata        map[string]any `json:"metadata,omitempty"`

	// IndexHandle is the opaque reference into the backing search index,
	// populated on store.
	IndexHandle string `json:"index_handle,omitempty"`
}

// NewArchiveEntry builds an entry from a participant turn and the agent turn
// that answered it. Score defaults to 1.0 at creation; retrieval overwrites
// it with the similarity of the match.
func NewArchiveEntry(participant, agent Turn) ArchiveEntry {
	return ArchiveEntry{
		ParticipantText: participant.Text,
		AgentText:       agent.Text,
		ParticipantID:   participant.ParticipantID,
		ParticipantName: participant.ParticipantName,
		ChannelID:       participant.ChannelID,
		Timestamp:       participant.Timestamp,
		Score:           1.0,
		Metadata:        map[string]any{},
	}
}

// SearchQuery holds the parameters for an archive similarity search.
// An empty Text is allowed; the archive substitutes a generic query so that
// filter-only retrieval remains possible on similarity-only backends.
type SearchQuery struct {
	Text          string `json:"text,omitempty"`
	ParticipantID string `json:"participant_id,omitempty"`
	ChannelID     string `json:"channel_id,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}
