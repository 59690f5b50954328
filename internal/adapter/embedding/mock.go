package embedding

import (
	"context"
	"fmt"
	"hash/fnv"

	"semtiles/internal/domain"
)

// MockEmbedder produces deterministic vectors without a network call.
// Equal texts map to equal vectors.
type MockEmbedder struct {
	dimension     int
	maxInputChars int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension, maxInputChars: DefaultMaxInputChars}
}

func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text = domain.Truncate(text, e.maxInputChars)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrEmbedding)
	}

	vector := make([]float32, e.dimension)
	for i, r := range text {
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%c", i%7, r)
		sum := h.Sum32()
		vector[sum%uint32(e.dimension)] += float32(sum%1000)/1000.0 + 0.001
	}
	return vector, nil
}

func (e *MockEmbedder) MaxInputChars() int {
	return e.maxInputChars
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
