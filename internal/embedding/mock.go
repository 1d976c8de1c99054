package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder generates deterministic embeddings from a text hash.
// The same text always maps to the same unit vector, so similarity
// tests behave predictably without a model server.
type MockEmbedder struct {
	dimension int
}

var _ Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder. Zero dimension falls back
// to DefaultOllamaDimension so it can stand in for the default backend.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension == 0 {
		dimension = DefaultOllamaDimension
	}
	return &MockEmbedder{dimension: dimension}
}

// Model returns a fixed identifier for the mock backend.
func (m *MockEmbedder) Model() string {
	return "mock"
}

// Dimension returns the embedding vector dimension.
func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

// Embed creates a deterministic embedding from the text hash.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	embedding := make([]float32, m.dimension)

	// LCG seeded from the hash gives stable pseudo-random components.
	seed := h.Sum64()
	for i := range embedding {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// EmbedBatch embeds each text independently.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
