package models

import "time"

// ConsolidationResult reports one consolidation run. It is returned to the
// caller and discarded after reporting; nothing in it is persisted.
type ConsolidationResult struct {
	ProcessedTurns  int           `json:"processed_turns"`
	EntriesArchived int           `json:"entries_archived"`
	FactsExtracted  int           `json:"facts_extracted"`
	Elapsed         time.Duration `json:"elapsed"`
	Summary         string        `json:"summary"`
	Errors          []string      `json:"errors,omitempty"`
}

// MemoryStats is the snapshot returned by the stats operation.
type MemoryStats struct {
	BufferChannels int            `json:"buffer_channels"`
	BufferedTurns  int            `json:"buffered_turns"`
	ArchiveEnabled bool           `json:"archive_enabled"`
	Identity       IdentityRecord `json:"identity"`
}

// WipeResult reports a whole-memory wipe: per-tier removal counts plus any
// errors encountered. Partial failures still report completed counts.
type WipeResult struct {
	BufferTurns    int      `json:"buffer_turns_cleared"`
	ArchiveEntries int      `json:"archive_entries_removed"`
	Facts          int      `json:"facts_removed"`
	Errors         []string `json:"errors,omitempty"`
}
