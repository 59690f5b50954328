package llm

import (
	"context"
	"fmt"

	"semtiles/internal/domain"
	"semtiles/internal/port"
)

// MockLLM answers without a network call. It echoes a short digest of the
// prompt so output is deterministic.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[mock] %s", domain.Truncate(req.User, 120)), nil
}

func (m *MockLLM) ModelName() string {
	return "mock"
}
