package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals tool arguments or request parameters that
	// fail schema constraints.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrChatProvider signals a chat completion provider failure.
	ErrChatProvider = errors.New("chat provider error")
	// ErrRetrieval signals a datastore query failure during search.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrVectorDimMismatch signals a persisted vector whose dimension
	// does not match the configured embedding dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
