package domain

import "errors"

var (
	// ErrExtraction means a document was unreadable or contained no text.
	ErrExtraction = errors.New("could not extract text from document")

	// ErrEmbedding means the embedding provider failed or returned unusable data.
	ErrEmbedding = errors.New("embedding failed")

	// ErrNoEmbedding means neither the document nor the name path produced a vector.
	ErrNoEmbedding = errors.New("no embedding for item")

	// ErrComputation marks an unexpected fault during a full distance computation.
	ErrComputation = errors.New("distance computation failed")

	// ErrProviderFailed means the completion provider returned an error.
	ErrProviderFailed = errors.New("completion provider failed")

	// ErrProviderUnconfigured means no completion provider is available.
	ErrProviderUnconfigured = errors.New("completion provider not configured")
)
