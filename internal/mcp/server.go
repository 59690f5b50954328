package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"semtiles/internal/domain"
)

const (
	// ServerName is the MCP server name
	ServerName = "semtiles"
	// ServerVersion is the current server version
	ServerVersion = "0.3.0"
)

// Processor is the set of operations exposed as MCP tools.
type Processor interface {
	ComputeDistances(ctx context.Context, items []domain.Item, levelID string) (*domain.DistanceResult, error)
	GetDocumentSummary(ctx context.Context, documentPath string) (string, error)
	ProcessDocumentQuery(ctx context.Context, documentPath, query string) (string, error)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	processor Processor
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(processor Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		processor: processor,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until stdin closes or ctx
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio", "name", ServerName, "version", ServerVersion)
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		s.logger.Info("MCP server stopped")
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	s.mcp.AddTool(computeDistancesTool(), s.handleComputeDistances)
	s.mcp.AddTool(summarizeDocumentTool(), s.handleSummarizeDocument)
	s.mcp.AddTool(askDocumentTool(), s.handleAskDocument)
}
