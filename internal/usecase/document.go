package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"semtiles/internal/domain"
	"semtiles/internal/port"
)

const (
	summaryContextChars = 5000
	answerContextChars  = 4000

	summarySystemPrompt = "You are a helpful assistant that provides concise document summaries."
	answerSystemPrompt  = "You are a helpful assistant explaining concepts from documents."
)

// DocumentService summarizes documents and answers questions about them by
// forwarding extracted text to a language model.
type DocumentService struct {
	extractor   port.TextExtractor
	llm         port.LLM
	resolvePath func(string) string
	logger      *slog.Logger
}

// NewDocumentService creates a document service. llm may be nil, in which
// case every call fails with domain.ErrProviderUnconfigured.
func NewDocumentService(extractor port.TextExtractor, llm port.LLM, resolvePath func(string) string, logger *slog.Logger) *DocumentService {
	if resolvePath == nil {
		resolvePath = func(p string) string { return p }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{
		extractor:   extractor,
		llm:         llm,
		resolvePath: resolvePath,
		logger:      logger,
	}
}

// Summarize returns a short summary of the document. The error message is
// suitable for showing to a user.
func (s *DocumentService) Summarize(ctx context.Context, documentPath string) (string, error) {
	text := s.extractor.Extract(ctx, s.resolvePath(documentPath))
	if text == "" {
		return "", domain.ErrExtraction
	}
	if s.llm == nil {
		return "", domain.ErrProviderUnconfigured
	}

	summary, err := s.llm.Complete(ctx, port.CompletionRequest{
		System:      summarySystemPrompt,
		User:        "Please provide a short summary (maximum 200 words) of the following document:\n\n" + domain.Truncate(text, summaryContextChars) + "...",
		Temperature: 0.7,
		MaxTokens:   250,
	})
	if err != nil {
		s.logger.Error("error getting document summary", "document", documentPath, "error", err)
		return "", fmt.Errorf("error summarizing document: %w: %w", domain.ErrProviderFailed, err)
	}
	return summary, nil
}

// Answer responds to query using the document's text as context.
func (s *DocumentService) Answer(ctx context.Context, documentPath, query string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrProviderUnconfigured
	}

	text := s.extractor.Extract(ctx, s.resolvePath(documentPath))
	if text == "" {
		return "", domain.ErrExtraction
	}

	answer, err := s.llm.Complete(ctx, port.CompletionRequest{
		System:      answerSystemPrompt,
		User:        fmt.Sprintf("Based on this document content:\n\n%s...\n\nQuestion: %s", domain.Truncate(text, answerContextChars), query),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		s.logger.Error("error processing document query", "document", documentPath, "error", err)
		return "", fmt.Errorf("error processing query: %w: %w", domain.ErrProviderFailed, err)
	}
	return answer, nil
}
