package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// computeDistancesTool returns the tool definition for compute_distances
func computeDistancesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "compute_distances",
		Description: "Compute pairwise semantic distances (0 = identical, 1 = unrelated) between named items, optionally backed by uploaded documents",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Items to compare",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id":           map[string]interface{}{"type": "string"},
							"name":         map[string]interface{}{"type": "string"},
							"description":  map[string]interface{}{"type": "string"},
							"documentPath": map[string]interface{}{"type": "string"},
						},
						"required": []string{"id", "name"},
					},
				},
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional level identifier, recorded in logs only",
				},
			},
			Required: []string{"items"},
		},
	}
}

// summarizeDocumentTool returns the tool definition for summarize_document
func summarizeDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "summarize_document",
		Description: "Summarize an uploaded document in at most 200 words",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_path": map[string]interface{}{
					"type":        "string",
					"description": "Document path, relative to the upload directory",
				},
			},
			Required: []string{"document_path"},
		},
	}
}

// askDocumentTool returns the tool definition for ask_document
func askDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question using an uploaded document as context",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_path": map[string]interface{}{
					"type":        "string",
					"description": "Document path, relative to the upload directory",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Question about the document",
				},
			},
			Required: []string{"document_path", "query"},
		},
	}
}
