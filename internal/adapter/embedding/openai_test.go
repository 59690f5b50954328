package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semtiles/internal/domain"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req embeddingRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "test-key")

	srv := newTestServer(t, func(w http.ResponseWriter, req embeddingRequest) {
		assert.Equal(t, "text-embedding-ada-002", req.Model)
		assert.Equal(t, "Cat", req.Input)
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{0.1, 0.2, 0.3}}},
		})
	})

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "text-embedding-ada-002", srv.URL, Options{})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "Cat")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, DefaultMaxInputChars, e.MaxInputChars())
	assert.Equal(t, "text-embedding-ada-002", e.ModelName())
}

func TestOpenAIEmbedder_TruncatesInput(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "test-key")

	var seen string
	srv := newTestServer(t, func(w http.ResponseWriter, req embeddingRequest) {
		seen = req.Input
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{1}}},
		})
	})

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL, Options{MaxInputChars: 10})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "ééééééééééééééééééééé")
	require.NoError(t, err)
	assert.Equal(t, 10, utf8.RuneCountInString(seen))
}

func TestOpenAIEmbedder_Failures(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "test-key")

	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, req embeddingRequest)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, req embeddingRequest) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, req embeddingRequest) {
				_ = json.NewEncoder(w).Encode(embeddingResponse{Error: &apiError{Message: "bad model"}})
			},
		},
		{
			name: "empty data",
			handler: func(w http.ResponseWriter, req embeddingRequest) {
				_ = json.NewEncoder(w).Encode(embeddingResponse{})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, req embeddingRequest) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL, Options{})
			require.NoError(t, err)

			_, err = e.Embed(context.Background(), "text")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrEmbedding))
		})
	}
}

func TestOpenAIEmbedder_Retries(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "test-key")

	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, req embeddingRequest) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{1, 2}}},
		})
	})

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL, Options{MaxRetries: 1})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, vec, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIEmbedder_Timeout(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "test-key")

	srv := newTestServer(t, func(w http.ResponseWriter, req embeddingRequest) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{1}}},
		})
	})

	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", "m", srv.URL, Options{Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestNewOpenAIEmbedder_MissingKey(t *testing.T) {
	t.Setenv("MISSING_EMBED_KEY", "")
	_, err := NewOpenAIEmbedder("MISSING_EMBED_KEY", "m", Options{})
	assert.Error(t, err)
}

func TestOpenAIEmbedder_EmptyInput(t *testing.T) {
	e := newEmbedder("key", "m", "http://127.0.0.1:0", Options{})
	_, err := e.Embed(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(16)

	a1, err := e.Embed(context.Background(), "Cat")
	require.NoError(t, err)
	a2, err := e.Embed(context.Background(), "Cat")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Dog")
	require.NoError(t, err)

	assert.Len(t, a1, 16)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Equal(t, "mock", e.ModelName())

	_, err = e.Embed(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}
