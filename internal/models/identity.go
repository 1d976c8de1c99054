package models

import "time"

// IdentityRecord holds the agent's small, rarely-changing attributes.
// Singleton per deployment; loaded at startup and mutated only by explicit
// administrative action, never by the consolidation pipeline.
type IdentityRecord struct {
	Name        string    `json:"name" yaml:"name"`
	Nature      string    `json:"nature" yaml:"nature"`
	Owner       string    `json:"owner" yaml:"owner"`
	Personality string    `json:"personality" yaml:"personality"`
	Traits      []string  `json:"traits" yaml:"traits"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
