package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/elguarir/gitex-assistant/internal/db"
	"github.com/elguarir/gitex-assistant/internal/domain"
)

// --- EnsureIndex ---

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotDef *db.IndexDefinition
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "gitex:embedding-idx" {
			t.Errorf("unexpected index name: %s", name)
		}
		return false, nil
	}
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		gotDef = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDef == nil {
		t.Fatal("CreateIndex not called")
	}
	if gotDef.Prefixes[0] != "gitex:embedding:" {
		t.Errorf("unexpected prefix: %v", gotDef.Prefixes)
	}
	var vec *db.IndexField
	for i := range gotDef.Fields {
		if gotDef.Fields[i].VectorDim > 0 {
			vec = &gotDef.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("no vector field in index definition")
	}
	if vec.VectorDim != 4 || vec.VectorDistance != db.DistanceCosine || vec.VectorAlgo != db.VectorHNSW {
		t.Errorf("unexpected vector field: %+v", vec)
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("CreateIndex should not be called")
		return nil
	}
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- BulkPut ---

func TestBulkPut_WritesAllRecordsInOneCall(t *testing.T) {
	repo, ms := newTestRepo(t)

	calls := 0
	var gotItems []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		calls++
		gotItems = items
		return nil
	}

	records := []domain.EmbeddingRecord{testRecord(t, 1), testRecord(t, 2)}
	if err := repo.BulkPut(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 pipelined call, got %d", calls)
	}
	if gotItems[0].Key != "gitex:embedding:1" || gotItems[1].Key != "gitex:embedding:2" {
		t.Errorf("unexpected keys: %s, %s", gotItems[0].Key, gotItems[1].Key)
	}
	if gotItems[0].Fields["exhibitor_id"] != "1" {
		t.Errorf("unexpected exhibitor_id field: %s", gotItems[0].Fields["exhibitor_id"])
	}
	if gotItems[0].Fields["created_at"] != "2026-03-01T12:00:00Z" {
		t.Errorf("unexpected created_at field: %s", gotItems[0].Fields["created_at"])
	}
	if got := bytesToVector(gotItems[0].Fields["vector"]); len(got) != 4 || got[2] != 0.3 {
		t.Errorf("vector blob round trip failed: %v", got)
	}
}

func TestBulkPut_DimMismatchRejectedBeforeWrite(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error {
		t.Fatal("nothing may be written on dimension mismatch")
		return nil
	}

	bad := testRecord(t, 1)
	bad.Vector = []float32{0.1, 0.2}
	err := repo.BulkPut(context.Background(), []domain.EmbeddingRecord{testRecord(t, 2), bad})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

// --- ListIDs ---

func TestListIDs(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "gitex:embedding:*" {
			t.Errorf("unexpected scan pattern: %s", pattern)
		}
		return []string{"gitex:embedding:5", "gitex:embedding:9"}, nil
	}

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 9 {
		t.Errorf("unexpected ids: %v", ids)
	}
}

// --- SearchKNN ---

func TestSearchKNN_ParsesMatches(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "gitex:embedding-idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.K != 10 {
			t.Errorf("unexpected k: %d", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "gitex:embedding:3", Score: 0.92, Fields: map[string]string{"exhibitor_id": "3"}},
				{Key: "gitex:embedding:8", Score: 0.41, Fields: map[string]string{}},
			},
		}, nil
	}

	matches, err := repo.SearchKNN(context.Background(), []float32{1, 0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ExhibitorID != 3 || matches[0].Similarity != 0.92 {
		t.Errorf("unexpected first match: %+v", matches[0])
	}
	// second entry has no exhibitor_id field, id comes from the key
	if matches[1].ExhibitorID != 8 {
		t.Errorf("unexpected second match: %+v", matches[1])
	}
}

func TestSearchKNN_QueryDimMismatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.SearchKNN(context.Background(), []float32{1, 0}, 5)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("index is being scanned")
	}
	if _, err := repo.SearchKNN(context.Background(), []float32{1, 0, 0, 0}, 5); err == nil {
		t.Fatal("expected error on search failure")
	}
}
