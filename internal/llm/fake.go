package llm

import (
	"context"

	"github.com/lamina-ai/recall-go/internal/models"
)

// StaticCapability is a Summarizer and Extractor with canned responses.
// Tests across packages use it to exercise the consolidation pipeline
// without a model server.
type StaticCapability struct {
	Summary      string
	Candidates   []models.FactCandidate
	SummarizeErr error
	ExtractErr   error

	SummarizeCalls int
	ExtractCalls   int
}

var _ Summarizer = (*StaticCapability)(nil)
var _ Extractor = (*StaticCapability)(nil)

// Summarize returns the canned summary, or the transcript's first line
// when none is configured.
func (s *StaticCapability) Summarize(_ context.Context, transcript string) (string, error) {
	s.SummarizeCalls++
	if s.SummarizeErr != nil {
		return "", s.SummarizeErr
	}
	if s.Summary != "" {
		return s.Summary, nil
	}
	if transcript == "" {
		return "", nil
	}
	for i := 0; i < len(transcript); i++ {
		if transcript[i] == '\n' {
			return transcript[:i], nil
		}
	}
	return transcript, nil
}

// ExtractFacts returns the canned candidates.
func (s *StaticCapability) ExtractFacts(_ context.Context, _ string) ([]models.FactCandidate, error) {
	s.ExtractCalls++
	if s.ExtractErr != nil {
		return nil, s.ExtractErr
	}
	return s.Candidates, nil
}
