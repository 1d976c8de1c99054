package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lamina-ai/recall-go/internal/models"
)

// ErrNoFactArray is returned when a model response contains no JSON
// array at all.
var ErrNoFactArray = errors.New("no JSON array in response")

// ParseFactCandidates parses a model response into fact candidates.
// Models reliably produce the array but unreliably produce ONLY the
// array, so this strips code fences and surrounding prose, then drops
// candidates with empty content.
func ParseFactCandidates(raw string) ([]models.FactCandidate, error) {
	cleaned := stripCodeFences(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoFactArray
	}

	var candidates []models.FactCandidate
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &candidates); err != nil {
		return nil, fmt.Errorf("parse fact array: %w", err)
	}

	valid := candidates[:0]
	for _, c := range candidates {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		valid = append(valid, c)
	}
	return valid, nil
}

// stripCodeFences removes markdown code fences (```json ... ```) that
// chat models like to wrap structured output in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Language tag on the opening fence.
	if idx := strings.Index(s, "\n"); idx != -1 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "[{") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
