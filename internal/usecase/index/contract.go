package index

import (
	"context"

	"github.com/elguarir/gitex-assistant/internal/domain"
)

// ExhibitorReader reads exhibitor profiles for embedding.
type ExhibitorReader interface {
	ListIDs(ctx context.Context) ([]int64, error)
	GetMulti(ctx context.Context, ids []int64) ([]domain.Exhibitor, error)
}

// EmbeddingStore persists embedding records.
type EmbeddingStore interface {
	ListIDs(ctx context.Context) ([]int64, error)
	BulkPut(ctx context.Context, records []domain.EmbeddingRecord) error
	EnsureIndex(ctx context.Context) error
}

// Embedder vectorizes texts in batch.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
