// Package models defines the shared data types for the tiered memory system.
package models

import "time"

// Turn is a single authored message in a conversation channel.
// Turns are created on ingestion and never mutated; the short-term buffer
// owns them until a consolidation run drains the channel.
type Turn struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Text            string    `json:"text"`
	ChannelID       string    `json:"channel_id"`
	Timestamp       time.Time `json:"timestamp"`
	FromAgent       bool      `json:"from_agent"`
}

// Episode is a contiguous run of turns within one channel whose pairwise
// timestamp gaps all fall below the configured threshold. Episodes are
// derived fresh on each consolidation pass and never stored.
type Episode struct {
	Turns []Turn
}

// Start returns the timestamp of the first turn, or the zero time for an
// empty episode.
func (e Episode) Start() time.Time {
	if len(e.Turns) == 0 {
		return time.Time{}
	}
	return e.Turns[0].Timestamp
}

// Transcript renders the episode as "name: text" lines, oldest first.
func (e Episode) Transcript() string {
	out := ""
	for i, t := range e.Turns {
		if i > 0 {
			out += "\n"
		}
		out += t.ParticipantName + ": " + t.Text
	}
	return out
}
