package tool

import (
	"encoding/json"

	"github.com/elguarir/gitex-assistant/internal/domain/chat"
)

// SearchExhibitorsName is the tool name the model calls to search.
const SearchExhibitorsName = "searchExhibitors"

var searchExhibitorsParams = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "Free-text description of what the visitor is looking for"
		},
		"country": {
			"type": "string",
			"description": "Restrict results to exhibitors from this country (substring match)"
		},
		"hall": {
			"type": "integer",
			"minimum": 0,
			"description": "Restrict results to exhibitors in this hall number"
		},
		"skip": {
			"type": "integer",
			"minimum": 0,
			"description": "Number of results to skip, for requesting further pages"
		}
	},
	"required": ["query"]
}`)

// Catalog returns the tool specs exposed to the chat model.
func Catalog() []chat.ToolSpec {
	return []chat.ToolSpec{
		{
			Name: SearchExhibitorsName,
			Description: "Semantic search over the exhibitor directory. " +
				"Returns up to 5 exhibitors ordered by relevance, with stand numbers, " +
				"countries, products and social links.",
			Parameters: searchExhibitorsParams,
		},
	}
}
