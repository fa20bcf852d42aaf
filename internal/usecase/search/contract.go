package search

import (
	"context"

	"github.com/elguarir/gitex-assistant/internal/domain"
	"github.com/elguarir/gitex-assistant/internal/repository/embedding"
)

// VectorIndex serves KNN queries over the embedding index.
type VectorIndex interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]embedding.Match, error)
}

// ExhibitorReader loads exhibitor profiles for matched ids.
type ExhibitorReader interface {
	GetMulti(ctx context.Context, ids []int64) ([]domain.Exhibitor, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
