package port

import "context"

// CompletionRequest is a single chat-style completion call.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// LLM represents a language model for text generation.
type LLM interface {
	// Complete generates text for the given prompts.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
