package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/elguarir/gitex-assistant/internal/domain"
)

// Search constants. The floor and page size are contracts consumed by
// the orchestration loop's "show more" behavior.
const (
	// SimilarityFloor is the hard minimum similarity: results at or
	// below it are never returned.
	SimilarityFloor = 0.5
	// PageSize is the fixed result page size.
	PageSize = 5
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength = 4096
)

// Filter is a validated per-query value object: optional structured
// predicates plus the pagination offset.
type Filter struct {
	country     string
	hall        *int
	hallPattern *regexp.Regexp
	skip        int
}

// NewFilter validates and normalizes filter parameters. hall may be nil
// (no hall filter); skip defaults to 0.
func NewFilter(country string, hall *int, skip int) (Filter, error) {
	if hall != nil && *hall < 0 {
		return Filter{}, fmt.Errorf("hall must be non-negative, got %d", *hall)
	}
	if skip < 0 {
		return Filter{}, fmt.Errorf("skip must be non-negative, got %d", skip)
	}

	f := Filter{country: strings.TrimSpace(country), hall: hall, skip: skip}
	if hall != nil {
		f.hallPattern = regexp.MustCompile(fmt.Sprintf(`(?i)hall\s*%d\b`, *hall))
	}
	return f, nil
}

// Country returns the country substring filter ("" when unset).
func (f *Filter) Country() string { return f.country }

// Hall returns the hall number filter and whether it is set.
func (f *Filter) Hall() (int, bool) {
	if f.hall == nil {
		return 0, false
	}
	return *f.hall, true
}

// Skip returns the pagination offset.
func (f *Filter) Skip() int { return f.skip }

// HasStructured reports whether any non-pagination predicate is set.
func (f *Filter) HasStructured() bool {
	return f.country != "" || f.hall != nil
}

// Matches evaluates the structured predicates against an exhibitor.
// Country matches as a case-insensitive substring. Hall matching
// tolerates the two stand-number conventions seen in the source data:
// "Hall" followed by optional whitespace and the number (trailing text
// allowed), or the literal substring "Hall <n>" anywhere in the code.
// Bare codes like "H7-B25" match neither.
func (f *Filter) Matches(e *domain.Exhibitor) bool {
	if f.country != "" &&
		!strings.Contains(strings.ToLower(e.Country), strings.ToLower(f.country)) {
		return false
	}
	if f.hall != nil && !f.matchesHall(e.StandNumber) {
		return false
	}
	return true
}

func (f *Filter) matchesHall(stand string) bool {
	if stand == "" {
		return false
	}
	if f.hallPattern.MatchString(stand) {
		return true
	}
	return strings.Contains(stand, fmt.Sprintf("Hall %d", *f.hall))
}
