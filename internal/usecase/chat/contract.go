package chat

import (
	"context"

	domchat "github.com/elguarir/gitex-assistant/internal/domain/chat"
	domsearch "github.com/elguarir/gitex-assistant/internal/domain/search"
)

// Searcher executes exhibitor searches on behalf of the model.
type Searcher interface {
	Search(ctx context.Context, query string, filter domsearch.Filter) ([]domsearch.Result, error)
}

// Model is one reasoning step against the language model.
type Model interface {
	Stream(
		ctx context.Context,
		msgs []domchat.Message,
		tools []domchat.ToolSpec,
		onDelta domchat.DeltaFunc,
	) (domchat.Completion, error)
}
