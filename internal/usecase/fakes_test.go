package usecase

import (
	"context"
	"errors"
	"sync"

	"semtiles/internal/port"
)

var errProviderDown = errors.New("provider down")

// fakeEmbedder returns fixed vectors per input text and counts calls.
type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fail     map[string]bool
	panicOn  string
	maxChars int
	calls    []string

	// When gate is set, Embed signals started and blocks until gate closes.
	gate    chan struct{}
	started chan struct{}
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors:  make(map[string][]float32),
		fail:     make(map[string]bool),
		maxChars: 8191,
	}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.gate != nil {
		f.started <- struct{}{}
		<-f.gate
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if f.panicOn != "" && text == f.panicOn {
		panic("embedding client exploded")
	}
	if f.fail[text] {
		return nil, errProviderDown
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	// Deterministic default derived from the text.
	v := make([]float32, 4)
	for i, r := range text {
		v[i%4] += float32(r%17) + 1
	}
	return v, nil
}

func (f *fakeEmbedder) MaxInputChars() int { return f.maxChars }
func (f *fakeEmbedder) ModelName() string  { return "fake" }

func (f *fakeEmbedder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeExtractor serves document text from a map and counts calls per path.
type fakeExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	calls map[string]int
}

func newFakeExtractor(texts map[string]string) *fakeExtractor {
	return &fakeExtractor{texts: texts, calls: make(map[string]int)}
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	return f.texts[path]
}

func (f *fakeExtractor) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// fakeLLM records the last request and returns a canned reply.
type fakeLLM struct {
	reply string
	err   error
	last  port.CompletionRequest
	calls int
}

func (f *fakeLLM) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }
