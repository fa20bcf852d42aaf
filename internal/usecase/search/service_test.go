package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/elguarir/gitex-assistant/internal/domain"
	domsearch "github.com/elguarir/gitex-assistant/internal/domain/search"
	"github.com/elguarir/gitex-assistant/internal/repository/embedding"
)

// --- Mocks ---

type mockIndex struct {
	matches []embedding.Match
	err     error
	lastK   int
}

func (m *mockIndex) SearchKNN(_ context.Context, _ []float32, k int) ([]embedding.Match, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.matches) {
		return m.matches[:k], nil
	}
	return m.matches, nil
}

type mockExhibitors struct {
	byID map[int64]domain.Exhibitor
	err  error
}

func (m *mockExhibitors) GetMulti(_ context.Context, ids []int64) ([]domain.Exhibitor, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Exhibitor, 0, len(ids))
	for _, id := range ids {
		if e, ok := m.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, 0, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5}, nil
}

// fixture builds n exhibitors with ids 1..n and descending similarity
// starting at 0.95 in steps of 0.05.
func fixture(n int) (*mockIndex, *mockExhibitors) {
	matches := make([]embedding.Match, n)
	byID := make(map[int64]domain.Exhibitor, n)
	for i := 0; i < n; i++ {
		id := int64(i + 1)
		matches[i] = embedding.Match{ExhibitorID: id, Similarity: 0.95 - 0.05*float64(i)}
		byID[id] = domain.Exhibitor{
			ID:          id,
			Name:        fmt.Sprintf("Exhibitor %d", id),
			Country:     "United Arab Emirates",
			StandNumber: fmt.Sprintf("Hall %d - A%d", (i%3)+1, id),
		}
	}
	return &mockIndex{matches: matches}, &mockExhibitors{byID: byID}
}

func noFilter(t *testing.T) domsearch.Filter {
	t.Helper()
	f, err := domsearch.NewFilter("", nil, 0)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	return f
}

func filterWith(t *testing.T, country string, hall *int, skip int) domsearch.Filter {
	t.Helper()
	f, err := domsearch.NewFilter(country, hall, skip)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	return f
}

// --- Validation ---

func TestSearch_EmptyQuery(t *testing.T) {
	idx, exh := fixture(3)
	svc := New(idx, exh, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "   ", noFilter(t))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearch_QueryTooLong(t *testing.T) {
	idx, exh := fixture(3)
	svc := New(idx, exh, &mockEmbedder{})

	long := strings.Repeat("x", domsearch.MaxQueryLength+1)
	_, err := svc.Search(context.Background(), long, noFilter(t))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// --- Floor ---

func TestSearch_FloorIsStrict(t *testing.T) {
	idx := &mockIndex{matches: []embedding.Match{
		{ExhibitorID: 1, Similarity: 0.51},
		{ExhibitorID: 2, Similarity: 0.50}, // exactly at the floor: out
		{ExhibitorID: 3, Similarity: 0.49},
	}}
	exh := &mockExhibitors{byID: map[int64]domain.Exhibitor{
		1: {ID: 1, Name: "Above"},
		2: {ID: 2, Name: "At"},
		3: {ID: 3, Name: "Below"},
	}}
	svc := New(idx, exh, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "iot platforms", noFilter(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Exhibitor.ID != 1 {
		t.Fatalf("expected only the above-floor match, got %+v", results)
	}
}

func TestSearch_NoMatchesIsEmptyNotError(t *testing.T) {
	idx := &mockIndex{}
	exh := &mockExhibitors{byID: map[int64]domain.Exhibitor{}}
	svc := New(idx, exh, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "quantum basket weaving", noFilter(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil page, got %v", results)
	}
}

// --- Structured filters ---

func TestSearch_CountryFilter(t *testing.T) {
	idx, exh := fixture(4)
	e := exh.byID[2]
	e.Country = "Morocco"
	exh.byID[2] = e
	svc := New(idx, exh, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "fintech", filterWith(t, "morocco", nil, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Exhibitor.ID != 2 {
		t.Fatalf("expected only the Moroccan exhibitor, got %+v", results)
	}
	if idx.lastK != filteredPoolSize {
		t.Errorf("filtered search must widen the pool to %d, got %d", filteredPoolSize, idx.lastK)
	}
}

func TestSearch_HallFilter(t *testing.T) {
	idx, exh := fixture(6)
	hall := 2
	svc := New(idx, exh, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "ai chips", filterWith(t, "", &hall, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if !strings.Contains(r.Exhibitor.StandNumber, "Hall 2") {
			t.Errorf("exhibitor %d not in hall 2: %s", r.Exhibitor.ID, r.Exhibitor.StandNumber)
		}
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hall-2 exhibitors, got %d", len(results))
	}
}

// --- Pagination ---

func TestSearch_PagesAreDisjointAndOrdered(t *testing.T) {
	idx, exh := fixture(8)
	svc := New(idx, exh, &mockEmbedder{})
	ctx := context.Background()

	first, err := svc.Search(ctx, "robotics", noFilter(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Search(ctx, "robotics", filterWith(t, "", nil, domsearch.PageSize))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != domsearch.PageSize {
		t.Fatalf("expected a full first page, got %d", len(first))
	}
	seen := make(map[int64]bool)
	prev := 1.1
	for _, r := range append(append([]domsearch.Result{}, first...), second...) {
		if seen[r.Exhibitor.ID] {
			t.Errorf("exhibitor %d appears on both pages", r.Exhibitor.ID)
		}
		seen[r.Exhibitor.ID] = true
		if r.Similarity > prev {
			t.Errorf("similarity order violated at exhibitor %d", r.Exhibitor.ID)
		}
		prev = r.Similarity
	}
}

func TestSearch_SkipBeyondResults(t *testing.T) {
	idx, exh := fixture(3)
	svc := New(idx, exh, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "robotics", filterWith(t, "", nil, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty page beyond the result set, got %d", len(results))
	}
}

// --- Normalization ---

func TestSearch_ResultsAreNormalized(t *testing.T) {
	idx := &mockIndex{matches: []embedding.Match{{ExhibitorID: 1, Similarity: 0.9}}}
	exh := &mockExhibitors{byID: map[int64]domain.Exhibitor{
		1: {ID: 1, Name: "Bare"},
	}}
	svc := New(idx, exh, &mockEmbedder{})

	results, err := svc.Search(context.Background(), "bare", noFilter(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Exhibitor.Products == nil || results[0].Exhibitor.SocialLinks == nil {
		t.Fatal("result containers must never be nil")
	}
}

// --- Failure mapping ---

func TestSearch_EmbedFailure(t *testing.T) {
	idx, exh := fixture(3)
	svc := New(idx, exh, &mockEmbedder{err: errors.New("quota exceeded")})

	_, err := svc.Search(context.Background(), "robotics", noFilter(t))
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestSearch_IndexFailure(t *testing.T) {
	idx := &mockIndex{err: errors.New("index is being scanned")}
	_, exh := fixture(3)
	svc := New(idx, exh, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "robotics", noFilter(t))
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
}

func TestSearch_ExhibitorLoadFailure(t *testing.T) {
	idx, exh := fixture(3)
	exh.err = errors.New("conn refused")
	svc := New(idx, exh, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "robotics", noFilter(t))
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
}
