package index

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/domain"
	"github.com/elguarir/gitex-assistant/internal/metrics"
)

// Report summarizes one reconcile run.
type Report struct {
	Total    int // exhibitors in the store
	Missing  int // exhibitors without an embedding at run start
	Embedded int // records written this run
}

// Service reconciles the embedding index with the exhibitor store:
// every exhibitor ends up with exactly one embedding record.
type Service struct {
	exhibitors   ExhibitorReader
	embeddings   EmbeddingStore
	embedder     Embedder
	maxBatchSize int
	logger       *zap.Logger
}

// New creates an index maintenance service. maxBatchSize caps the number
// of texts per provider call.
func New(
	exhibitors ExhibitorReader,
	embeddings EmbeddingStore,
	embedder Embedder,
	maxBatchSize int,
	logger *zap.Logger,
) *Service {
	if maxBatchSize <= 0 {
		maxBatchSize = 128
	}
	return &Service{
		exhibitors:   exhibitors,
		embeddings:   embeddings,
		embedder:     embedder,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// Reconcile embeds every exhibitor that has no embedding record yet.
// Vectors for the whole missing set are buffered and written in a single
// bulk put, so a failed run writes nothing and a rerun recomputes the
// same missing set.
func (s *Service) Reconcile(ctx context.Context) (Report, error) {
	report, err := s.reconcile(ctx)
	if err != nil {
		metrics.ReconcileRunsTotal.WithLabelValues("error").Inc()
		return Report{}, err
	}
	metrics.ReconcileRunsTotal.WithLabelValues("ok").Inc()
	metrics.ReconcileEmbeddedTotal.Add(float64(report.Embedded))
	return report, nil
}

func (s *Service) reconcile(ctx context.Context) (Report, error) {
	if err := s.embeddings.EnsureIndex(ctx); err != nil {
		return Report{}, fmt.Errorf("ensure index: %w", err)
	}

	allIDs, err := s.exhibitors.ListIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list exhibitor ids: %w", err)
	}
	embeddedIDs, err := s.embeddings.ListIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list embedded ids: %w", err)
	}

	missing := diffIDs(allIDs, embeddedIDs)
	report := Report{Total: len(allIDs), Missing: len(missing)}
	if len(missing) == 0 {
		s.logger.Info("Embedding index up to date", zap.Int("total", report.Total))
		return report, nil
	}

	s.logger.Info("Reconciling embedding index",
		zap.Int("total", report.Total),
		zap.Int("missing", report.Missing),
	)

	exhibitors, err := s.exhibitors.GetMulti(ctx, missing)
	if err != nil {
		return Report{}, fmt.Errorf("load missing exhibitors: %w", err)
	}

	texts := make([]string, len(exhibitors))
	for i := range exhibitors {
		texts[i] = EmbeddingText(&exhibitors[i])
	}

	vectors, err := s.embedBatches(ctx, texts)
	if err != nil {
		return Report{}, err
	}

	now := time.Now()
	records := make([]domain.EmbeddingRecord, len(exhibitors))
	for i := range exhibitors {
		records[i] = domain.EmbeddingRecord{
			ExhibitorID: exhibitors[i].ID,
			Vector:      vectors[i],
			CreatedAt:   now,
		}
	}

	if err := s.embeddings.BulkPut(ctx, records); err != nil {
		return Report{}, fmt.Errorf("store embeddings: %w", err)
	}

	report.Embedded = len(records)
	s.logger.Info("Embedding index reconciled", zap.Int("embedded", report.Embedded))
	return report, nil
}

// embedBatches splits texts into provider-sized batches but buffers all
// vectors, so nothing is persisted until every batch succeeded.
func (s *Service) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.maxBatchSize {
		end := min(start+s.maxBatchSize, len(texts))
		result, err := s.embedder.BatchEmbed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(result.Embeddings) != end-start {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts",
				start, end, len(result.Embeddings), end-start)
		}
		vectors = append(vectors, result.Embeddings...)
	}
	return vectors, nil
}

func diffIDs(all, embedded []int64) []int64 {
	seen := make(map[int64]struct{}, len(embedded))
	for _, id := range embedded {
		seen[id] = struct{}{}
	}
	missing := make([]int64, 0)
	for _, id := range all {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
