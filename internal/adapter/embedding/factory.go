package embedding

import (
	"fmt"
	"time"

	"semtiles/config"
	"semtiles/internal/port"
)

// FromConfig creates the embedding provider named in ec. For "openai" a
// non-empty base_url selects an OpenAI-compatible endpoint.
func FromConfig(ec config.EmbeddingConfig) (port.Embedder, error) {
	opts := Options{
		MaxInputChars: ec.MaxInputChars,
		Timeout:       time.Duration(ec.TimeoutSecs) * time.Second,
		MaxRetries:    ec.MaxRetries,
	}

	var embedder port.Embedder
	var err error

	switch ec.Provider {
	case "openai":
		if ec.BaseURL == "" {
			embedder, err = NewOpenAIEmbedder(ec.APIKeyEnv, ec.Model, opts)
		} else {
			embedder, err = NewOpenAICompatibleEmbedder(ec.APIKeyEnv, ec.Model, ec.BaseURL, opts)
		}
	case "ollama":
		embedder, err = NewOllamaEmbedder(ec.Model, ec.BaseURL, opts)
	case "mock":
		embedder = NewMockEmbedder(ec.Dimension)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ec.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}
