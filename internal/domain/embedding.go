package domain

import (
	"context"
	"time"
)

// DefaultVectorDim is the embedding dimension of the models in use.
const DefaultVectorDim = 1024

// EmbeddingRecord is the derived 1:1 companion of an Exhibitor. Created
// only by the index maintainer, never updated in place.
type EmbeddingRecord struct {
	ExhibitorID int64
	Vector      []float32
	CreatedAt   time.Time
}

// BatchEmbeddingResult carries the vectors and aggregate token usage of
// one provider call. Embeddings[i] corresponds to the i-th input text.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes texts in a single provider call. Output order
// matches input order and the call fails atomically: on error no vector
// is returned for any input.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
