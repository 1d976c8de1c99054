package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lamina-ai/recall-go/internal/models"
)

// Summarizer condenses an episode transcript into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Extractor pulls discrete facts out of an episode summary.
type Extractor interface {
	ExtractFacts(ctx context.Context, summary string) ([]models.FactCandidate, error)
}

var _ Summarizer = (*Model)(nil)
var _ Extractor = (*Model)(nil)

// Summarize condenses a conversation transcript. Empty transcripts
// return an empty summary without calling the provider.
func (m *Model) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", nil
	}

	systemPrompt := `You summarize conversations for long-term memory.
Write a concise summary covering the main topics, anything learned, and important facts.
Keep names and concrete details; drop filler.`

	userPrompt := fmt.Sprintf(`Conversation:
%s

Summary:`, transcript)

	summary, err := m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// ExtractFacts pulls fact candidates from a summary. The model is asked
// for a JSON array; anything it wraps around the array (prose, code
// fences) is stripped before parsing.
func (m *Model) ExtractFacts(ctx context.Context, summary string) ([]models.FactCandidate, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, nil
	}

	systemPrompt := `You extract durable facts from conversation summaries: user preferences, personal information, and world knowledge.
Respond with ONLY a JSON array in this shape:
[
  {
    "fact_type": "user_preference|personal_info|world_knowledge",
    "subject": "who or what the fact is about",
    "content": "the fact itself",
    "confidence": 0.0-1.0
  }
]
Return [] if the summary contains nothing worth remembering.`

	userPrompt := fmt.Sprintf(`Summary:
%s

Extracted facts:`, summary)

	raw, err := m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	candidates, err := ParseFactCandidates(raw)
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}
	return candidates, nil
}
