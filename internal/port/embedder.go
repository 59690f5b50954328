package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed returns the embedding for a single text. Implementations truncate
	// the input to MaxInputChars before calling the remote model.
	Embed(ctx context.Context, text string) ([]float32, error)

	// MaxInputChars returns the longest input, in characters, the model accepts.
	MaxInputChars() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// EmbeddingCache stores document embeddings by cache key.
type EmbeddingCache interface {
	Get(key string) ([]float32, bool)
	Put(key string, vector []float32)
	Len() int
}
