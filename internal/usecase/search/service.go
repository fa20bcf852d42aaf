package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/elguarir/gitex-assistant/internal/domain"
	domsearch "github.com/elguarir/gitex-assistant/internal/domain/search"
	"github.com/elguarir/gitex-assistant/internal/metrics"
)

// filteredPoolSize is the KNN candidate pool when structured predicates
// are present. Country and hall are evaluated after the vector fetch, so
// the pool has to be wide enough to survive the cut.
const filteredPoolSize = 100

// Service answers filtered similarity searches over the exhibitor index.
type Service struct {
	index      VectorIndex
	exhibitors ExhibitorReader
	embed      Embedder
}

// New creates a search service.
func New(index VectorIndex, exhibitors ExhibitorReader, embed Embedder) *Service {
	return &Service{index: index, exhibitors: exhibitors, embed: embed}
}

// Search embeds the query, fetches nearest exhibitors, applies the
// structured predicates and returns one page ordered by descending
// similarity. An empty page is a valid non-error outcome.
func (s *Service) Search(
	ctx context.Context, query string, filter domsearch.Filter,
) ([]domsearch.Result, error) {
	results, err := s.search(ctx, query, filter)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	return results, nil
}

func (s *Service) search(
	ctx context.Context, query string, filter domsearch.Filter,
) ([]domsearch.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrValidation)
	}
	if len(query) > domsearch.MaxQueryLength {
		return nil, fmt.Errorf("%w: query exceeds %d characters",
			domain.ErrValidation, domsearch.MaxQueryLength)
	}

	embResult, err := s.embed.BatchEmbed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingProvider, err)
	}
	if len(embResult.Embeddings) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query",
			domain.ErrEmbeddingProvider, len(embResult.Embeddings))
	}

	k := filter.Skip() + domsearch.PageSize
	if filter.HasStructured() {
		k = filteredPoolSize
	}

	matches, err := s.index.SearchKNN(ctx, embResult.Embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrRetrieval, err)
	}

	// floor is strict: similarity exactly at the floor is out
	above := matches[:0]
	for _, m := range matches {
		if m.Similarity > domsearch.SimilarityFloor {
			above = append(above, m)
		}
	}
	if len(above) == 0 {
		return []domsearch.Result{}, nil
	}

	ids := make([]int64, len(above))
	similarity := make(map[int64]float64, len(above))
	for i, m := range above {
		ids[i] = m.ExhibitorID
		similarity[m.ExhibitorID] = m.Similarity
	}

	exhibitors, err := s.exhibitors.GetMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load exhibitors: %w", domain.ErrRetrieval, err)
	}

	filtered := make([]domsearch.Result, 0, len(exhibitors))
	for i := range exhibitors {
		e := &exhibitors[i]
		if !filter.Matches(e) {
			continue
		}
		e.Normalize()
		filtered = append(filtered, domsearch.Result{
			Exhibitor:  *e,
			Similarity: similarity[e.ID],
		})
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Similarity > filtered[j].Similarity
	})

	return page(filtered, filter.Skip()), nil
}

func page(results []domsearch.Result, skip int) []domsearch.Result {
	if skip >= len(results) {
		return []domsearch.Result{}
	}
	end := min(skip+domsearch.PageSize, len(results))
	return results[skip:end]
}
