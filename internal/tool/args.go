package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elguarir/gitex-assistant/internal/domain"
	"github.com/elguarir/gitex-assistant/internal/domain/search"
)

// SearchArgs are the decoded searchExhibitors arguments.
type SearchArgs struct {
	Query   string `json:"query"`
	Country string `json:"country,omitempty"`
	Hall    *int   `json:"hall,omitempty"`
	Skip    int    `json:"skip,omitempty"`
}

// ParseSearchArgs decodes and validates raw tool-call arguments. All
// violations wrap domain.ErrValidation so the caller can report them
// back to the model instead of failing the turn.
func ParseSearchArgs(raw string) (SearchArgs, search.Filter, error) {
	var args SearchArgs
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return SearchArgs{}, search.Filter{}, fmt.Errorf(
			"%w: malformed searchExhibitors arguments: %v", domain.ErrValidation, err)
	}

	if strings.TrimSpace(args.Query) == "" {
		return SearchArgs{}, search.Filter{}, fmt.Errorf(
			"%w: query is required", domain.ErrValidation)
	}

	filter, err := search.NewFilter(args.Country, args.Hall, args.Skip)
	if err != nil {
		return SearchArgs{}, search.Filter{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return args, filter, nil
}
