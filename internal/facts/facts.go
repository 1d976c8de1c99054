// Package facts is the long-term fact tier: discrete statements about
// participants and the world, deduplicated on (subject, type, content).
package facts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/lamina-ai/recall-go/internal/models"
)

// Store persists facts with dedup on the deterministic key.
type Store interface {
	// Upsert writes a fact under its identity key. Re-upserting the same
	// (subject, type, content) updates confidence and last_updated on the
	// existing row instead of creating a duplicate. Returns the stored
	// fact and whether a new row was created.
	Upsert(ctx context.Context, fact models.Fact) (*models.Fact, bool, error)

	// Query returns facts filtered by subject and/or type (empty means
	// no filter), most confident first.
	Query(ctx context.Context, subject, factType string) ([]models.Fact, error)

	// Count returns the number of stored facts.
	Count(ctx context.Context) (int, error)

	// Wipe deletes all facts and returns how many were removed.
	Wipe(ctx context.Context) (int, error)
}

// FactID derives the deterministic record key for a fact. Subject and
// type are slugified for readability; the content hash carries the rest
// of the identity. Identical (subject, type, content) always map to the
// same key, which is what makes Upsert idempotent.
func FactID(fact models.Fact) string {
	sum := sha256.Sum256([]byte(fact.Content))
	return slugify(fact.Subject) + "_" + slugify(fact.Type) + "_" + hex.EncodeToString(sum[:8])
}

// slugify lowers the string and collapses anything that isn't
// alphanumeric into single underscores.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
