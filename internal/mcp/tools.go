package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"semtiles/internal/domain"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleComputeDistances handles the compute_distances tool invocation
func (s *Server) handleComputeDistances(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rawItems, ok := args["items"]
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "items parameter is required", map[string]interface{}{
			"param":  "items",
			"reason": "missing",
		})
	}
	items, err := decodeItems(rawItems)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid items", map[string]interface{}{
			"param":  "items",
			"reason": err.Error(),
		})
	}

	levelID := getStringDefault(args, "level_id", "")

	result, err := s.processor.ComputeDistances(ctx, items, levelID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "distance computation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	distances := make([]map[string]interface{}, 0, result.Table.Len())
	for _, e := range result.Table.Entries() {
		distances = append(distances, map[string]interface{}{
			"a":        e.Pair.A,
			"b":        e.Pair.B,
			"distance": e.Distance,
		})
	}

	response := map[string]interface{}{
		"distances": distances,
		"embedded":  result.Embedded,
	}
	if result.Partial() {
		response["failures"] = result.Failures
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSummarizeDocument handles the summarize_document tool invocation
func (s *Server) handleSummarizeDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path := getStringDefault(args, "document_path", "")
	if path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document_path parameter is required", map[string]interface{}{
			"param":  "document_path",
			"reason": "missing or empty",
		})
	}

	summary, err := s.processor.GetDocumentSummary(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(summary), nil
}

// handleAskDocument handles the ask_document tool invocation
func (s *Server) handleAskDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path := getStringDefault(args, "document_path", "")
	query := getStringDefault(args, "query", "")
	if path == "" || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document_path and query parameters are required", nil)
	}

	answer, err := s.processor.ProcessDocumentQuery(ctx, path, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// decodeItems converts the loosely typed JSON argument into items.
func decodeItems(raw interface{}) ([]domain.Item, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("items must be an array of objects: %w", err)
	}
	return items, nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
