package usecase

import (
	"context"
	"log/slog"

	"semtiles/internal/domain"
	"semtiles/internal/port"
)

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	// ResolvePath maps document paths, e.g. onto the upload directory.
	ResolvePath func(string) string
	Concurrency int
	Logger      *slog.Logger
}

// Processor is the public entry point: distance computation plus document
// summaries and questions. One Processor owns one embedding cache.
type Processor struct {
	resolver *Resolver
	engine   *DistanceEngine
	docs     *DocumentService
	logger   *slog.Logger
}

// NewProcessor wires the use cases around the given providers. llm may be nil.
func NewProcessor(
	embedder port.Embedder,
	extractor port.TextExtractor,
	llm port.LLM,
	cache port.EmbeddingCache,
	opts ProcessorOptions,
) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := NewResolver(embedder, extractor, cache, opts.ResolvePath, logger)
	return &Processor{
		resolver: resolver,
		engine:   NewDistanceEngine(resolver, opts.Concurrency, logger),
		docs:     NewDocumentService(extractor, llm, opts.ResolvePath, logger),
		logger:   logger,
	}
}

// ComputeDistances builds the pairwise distance table for items.
//
// levelID is accepted for callers that scope work per level but does not
// partition the embedding cache.
func (p *Processor) ComputeDistances(ctx context.Context, items []domain.Item, levelID string) (*domain.DistanceResult, error) {
	return p.ComputeDistancesWithProgress(ctx, items, levelID, nil)
}

// ComputeDistancesWithProgress is ComputeDistances with a per-item callback.
func (p *Processor) ComputeDistancesWithProgress(ctx context.Context, items []domain.Item, levelID string, progress ProgressFunc) (*domain.DistanceResult, error) {
	if levelID != "" {
		p.logger.Debug("computing distances for level", "level", levelID)
	}
	return p.engine.Compute(ctx, items, progress)
}

// GetDocumentSummary summarizes a document.
func (p *Processor) GetDocumentSummary(ctx context.Context, documentPath string) (string, error) {
	return p.docs.Summarize(ctx, documentPath)
}

// ProcessDocumentQuery answers a question about a document.
func (p *Processor) ProcessDocumentQuery(ctx context.Context, documentPath, query string) (string, error) {
	return p.docs.Answer(ctx, documentPath, query)
}

// CacheStats reports document cache activity.
func (p *Processor) CacheStats() ResolverStats {
	return p.resolver.Stats()
}
