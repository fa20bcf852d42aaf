package embedding

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elguarir/gitex-assistant/internal/db"
	"github.com/elguarir/gitex-assistant/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "embedding:"
	indexName = domain.KeyPrefix + "embedding-idx"

	hnswM           = 16
	hnswEFConstruct = 200
)

// store is the consumer interface for embedding records (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Match is one KNN hit: an exhibitor id with its cosine similarity.
type Match struct {
	ExhibitorID int64
	Similarity  float64
}

// Repo persists embedding records as hashes at gitex:embedding:<id> and
// serves KNN queries over the gitex:embedding-idx FT index.
type Repo struct {
	store store
	dim   int
}

// New creates an embedding repository. dim is the vector dimension the
// index is created with.
func New(s store, dim int) *Repo {
	if dim <= 0 {
		dim = domain.DefaultVectorDim
	}
	return &Repo{store: s, dim: dim}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", indexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "exhibitor_id"},
			{
				Name:              "vector",
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnswM,
				VectorEFConstruct: hnswEFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !strings.Contains(err.Error(), "exists") {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	return nil
}

// BulkPut writes a batch of embedding records in one pipelined round
// trip. Records with a vector of the wrong dimension are rejected before
// anything is written.
func (r *Repo) BulkPut(ctx context.Context, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(records))
	for i := range records {
		rec := &records[i]
		if len(rec.Vector) != r.dim {
			return fmt.Errorf("exhibitor %d: got %d dims, want %d: %w",
				rec.ExhibitorID, len(rec.Vector), r.dim, domain.ErrVectorDimMismatch)
		}
		items = append(items, db.HashSetItem{
			Key:    embeddingKey(rec.ExhibitorID),
			Fields: buildHashFields(rec),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi: %w", err)
	}
	return nil
}

// ListIDs enumerates all embedded exhibitor ids via cursor SCAN.
func (r *Repo) ListIDs(ctx context.Context) ([]int64, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s*: %w", keyPrefix, err)
	}
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		raw := strings.TrimPrefix(key, keyPrefix)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SearchKNN returns the k nearest exhibitor ids for the query vector,
// ordered by descending similarity.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) != r.dim {
		return nil, fmt.Errorf("query vector: got %d dims, want %d: %w",
			len(vector), r.dim, domain.ErrVectorDimMismatch)
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"exhibitor_id"},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	matches := make([]Match, 0, len(result.Entries))
	for _, entry := range result.Entries {
		id, err := strconv.ParseInt(entry.Fields["exhibitor_id"], 10, 64)
		if err != nil {
			// fall back to the key suffix for records written before
			// the exhibitor_id field existed
			id, err = strconv.ParseInt(strings.TrimPrefix(entry.Key, keyPrefix), 10, 64)
			if err != nil {
				continue
			}
		}
		matches = append(matches, Match{ExhibitorID: id, Similarity: entry.Score})
	}
	return matches, nil
}

func buildHashFields(rec *domain.EmbeddingRecord) map[string]string {
	return map[string]string{
		"exhibitor_id": strconv.FormatInt(rec.ExhibitorID, 10),
		"vector":       vectorToBytes(rec.Vector),
		"created_at":   rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func embeddingKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}
