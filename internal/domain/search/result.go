package search

import "github.com/elguarir/gitex-assistant/internal/domain"

// Result pairs an exhibitor with its similarity to the query vector.
// Similarity is 1 - cosine distance, clamped to [0, 1].
type Result struct {
	Exhibitor  domain.Exhibitor
	Similarity float64
}
