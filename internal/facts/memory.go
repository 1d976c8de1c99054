package facts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lamina-ai/recall-go/internal/models"
)

// MemoryStore keeps facts in process memory. It mirrors the dedup and
// ordering semantics of SurrealStore and backs tests and ephemeral
// deployments that run without a database.
type MemoryStore struct {
	mu    sync.Mutex
	facts map[string]models.Fact
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory fact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{facts: make(map[string]models.Fact)}
}

// Upsert writes the fact under its deterministic key.
func (s *MemoryStore) Upsert(_ context.Context, fact models.Fact) (*models.Fact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := FactID(fact)
	now := time.Now().UTC()

	existing, ok := s.facts[id]
	if !ok {
		fact.CreatedAt = now
		fact.LastUpdated = now
		s.facts[id] = fact
		stored := fact
		return &stored, true, nil
	}

	existing.Confidence = fact.Confidence
	existing.Provenance = unionStrings(existing.Provenance, fact.Provenance)
	existing.LastUpdated = now
	s.facts[id] = existing
	stored := existing
	return &stored, false, nil
}

// Query returns facts filtered by subject and/or type, most confident
// first, then most recently updated.
func (s *MemoryStore) Query(_ context.Context, subject, factType string) ([]models.Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Fact, 0, len(s.facts))
	for _, f := range s.facts {
		if subject != "" && f.Subject != subject {
			continue
		}
		if factType != "" && f.Type != factType {
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

// Count returns the number of stored facts.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.facts), nil
}

// Wipe deletes all facts.
func (s *MemoryStore) Wipe(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.facts)
	s.facts = make(map[string]models.Fact)
	return n, nil
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
