package models

import "time"

// Fact is a distilled, deduplicated statement about a participant or the
// world. At most one row exists per (subject, type, content) tuple; repeated
// extraction updates confidence and last_updated on the existing row.
type Fact struct {
	Type        string    `json:"fact_type"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	Confidence  float64   `json:"confidence"`
	Provenance  []string  `json:"provenance,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// FactCandidate is the untyped shape returned by the extraction capability,
// validated and coerced at the boundary before it becomes a Fact.
type FactCandidate struct {
	FactType   string  `json:"fact_type"`
	Subject    string  `json:"subject"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

const (
	// DefaultFactType is assigned to candidates missing a type tag.
	DefaultFactType = "general"

	// DefaultFactSubject is assigned to candidates missing a subject.
	DefaultFactSubject = "unknown"

	// DefaultFactConfidence is assigned to candidates with a missing or
	// out-of-range confidence.
	DefaultFactConfidence = 0.8
)

// Fact converts a candidate into a Fact, filling defaults and clamping
// confidence into [0, 1]. Candidates with empty content are rejected by the
// extraction parser before this point.
func (c FactCandidate) Fact(provenance string) Fact {
	f := Fact{
		Type:       c.FactType,
		Subject:    c.Subject,
		Content:    c.Content,
		Confidence: c.Confidence,
	}
	if f.Type == "" {
		f.Type = DefaultFactType
	}
	if f.Subject == "" {
		f.Subject = DefaultFactSubject
	}
	if f.Confidence <= 0 || f.Confidence > 1 {
		f.Confidence = DefaultFactConfidence
	}
	if provenance != "" {
		f.Provenance = []string{provenance}
	}
	return f
}
