package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semtiles/internal/adapter/cache"
	"semtiles/internal/adapter/embedding"
	"semtiles/internal/adapter/extract"
	"semtiles/internal/adapter/llm"
	"semtiles/internal/usecase"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	uploads := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "notes.txt"), []byte("Gradient descent minimizes loss."), 0644))

	processor := usecase.NewProcessor(
		embedding.NewMockEmbedder(32),
		extract.NewExtractor(nil),
		llm.NewMockLLM(),
		cache.NewMemoryCache(16),
		usecase.ProcessorOptions{
			ResolvePath: func(p string) string { return filepath.Join(uploads, p) },
		},
	)
	return NewServer(processor, nil), uploads
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestServer_Initialization(t *testing.T) {
	server, _ := newTestServer(t)
	assert.NotNil(t, server.mcp, "MCP server should be initialized")
	assert.NotNil(t, server.processor)
}

func TestServer_ServeListsTools(t *testing.T) {
	server, _ := newTestServer(t)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out bytes.Buffer
	require.NoError(t, server.serve(context.Background(), in, &out))

	assert.Contains(t, out.String(), "compute_distances")
	assert.Contains(t, out.String(), "summarize_document")
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server, _ := newTestServer(t)

	// stdin that never delivers a line
	in, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.serve(ctx, in, io.Discard) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestHandleComputeDistances(t *testing.T) {
	server, _ := newTestServer(t)

	req := callRequest("compute_distances", map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"id": "1", "name": "Cat"},
			map[string]interface{}{"id": "2", "name": "Dog", "description": "loyal"},
			map[string]interface{}{"id": "3", "name": "Notes", "documentPath": "notes.txt"},
		},
		"level_id": "level-7",
	})

	result, err := server.handleComputeDistances(context.Background(), req)
	require.NoError(t, err)

	var payload struct {
		Distances []struct {
			A        string  `json:"a"`
			B        string  `json:"b"`
			Distance float64 `json:"distance"`
		} `json:"distances"`
		Embedded int `json:"embedded"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))

	assert.Equal(t, 3, payload.Embedded)
	require.Len(t, payload.Distances, 3)
	assert.Equal(t, "1", payload.Distances[0].A)
	assert.Equal(t, "2", payload.Distances[0].B)
	for _, d := range payload.Distances {
		assert.GreaterOrEqual(t, d.Distance, 0.0)
		assert.LessOrEqual(t, d.Distance, 1.0)
	}
}

func TestHandleComputeDistances_InvalidParams(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing items", map[string]interface{}{}},
		{"items not an array", map[string]interface{}{"items": "cat,dog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.handleComputeDistances(context.Background(), callRequest("compute_distances", tt.args))
			require.Error(t, err)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestHandleSummarizeDocument(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleSummarizeDocument(context.Background(), callRequest("summarize_document", map[string]interface{}{
		"document_path": "notes.txt",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, result), "[mock] "))
}

func TestHandleSummarizeDocument_MissingDocument(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleSummarizeDocument(context.Background(), callRequest("summarize_document", map[string]interface{}{
		"document_path": "missing.pdf",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "could not extract text from document", resultText(t, result))
}

func TestHandleAskDocument(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleAskDocument(context.Background(), callRequest("ask_document", map[string]interface{}{
		"document_path": "notes.txt",
		"query":         "What does gradient descent do?",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Based on this document content")

	_, err = server.handleAskDocument(context.Background(), callRequest("ask_document", map[string]interface{}{
		"document_path": "notes.txt",
	}))
	assert.Error(t, err)
}
