package index

import (
	"fmt"
	"strings"

	"github.com/elguarir/gitex-assistant/internal/domain"
)

// EmbeddingText builds the text an exhibitor is embedded from. Field
// order is a contract: name first, then description, country, products.
// Providers truncate long inputs from the tail, so earlier fields carry
// more weight. Empty fields are skipped, parts join with a single space.
func EmbeddingText(e *domain.Exhibitor) string {
	parts := make([]string, 0, 4)
	if e.Name != "" {
		parts = append(parts, e.Name)
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.Country != "" {
		parts = append(parts, e.Country)
	}
	if len(e.Products) > 0 {
		products := make([]string, 0, len(e.Products))
		for _, p := range e.Products {
			if p.Category != "" {
				products = append(products, fmt.Sprintf("%s (%s)", p.Name, p.Category))
			} else {
				products = append(products, p.Name)
			}
		}
		parts = append(parts, strings.Join(products, ", "))
	}
	return strings.Join(parts, " ")
}
