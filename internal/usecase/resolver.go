package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"semtiles/internal/domain"
	"semtiles/internal/port"
)

// documentPreviewChars bounds how much document text goes into a document embedding.
const documentPreviewChars = 2000

// CacheKey returns the embedding cache key for a document path.
func CacheKey(documentPath string) string {
	return "doc:" + documentPath
}

// Resolver turns an item into a single embedding. Document-backed items are
// embedded from their text and cached; everything else falls back to the
// item's name and description.
type Resolver struct {
	embedder    port.Embedder
	extractor   port.TextExtractor
	cache       port.EmbeddingCache
	resolvePath func(string) string
	logger      *slog.Logger

	inflight singleflight.Group
	hits     atomic.Int64
	misses   atomic.Int64
}

// ResolverStats counts document cache lookups.
type ResolverStats struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
}

// NewResolver creates a resolver. resolvePath maps an item's document path to
// a readable file path; nil uses the path as is.
func NewResolver(
	embedder port.Embedder,
	extractor port.TextExtractor,
	cache port.EmbeddingCache,
	resolvePath func(string) string,
	logger *slog.Logger,
) *Resolver {
	if resolvePath == nil {
		resolvePath = func(p string) string { return p }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		embedder:    embedder,
		extractor:   extractor,
		cache:       cache,
		resolvePath: resolvePath,
		logger:      logger,
	}
}

// Resolve returns the embedding for item, or an error wrapping
// domain.ErrNoEmbedding when neither source produced one.
func (r *Resolver) Resolve(ctx context.Context, item domain.Item) ([]float32, error) {
	if item.HasDocument() {
		vector, err := r.documentEmbedding(ctx, item.DocumentPath)
		if err == nil {
			return vector, nil
		}
		r.logger.Debug("document embedding unavailable, falling back to name",
			"item", item.ID, "document", item.DocumentPath, "error", err)
	}

	vector, err := r.embed(ctx, ItemText(item))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", domain.ErrNoEmbedding, item.ID, err)
	}
	return vector, nil
}

// Stats returns cache counters accumulated over the resolver's lifetime.
func (r *Resolver) Stats() ResolverStats {
	return ResolverStats{CacheHits: r.hits.Load(), CacheMisses: r.misses.Load()}
}

func (r *Resolver) documentEmbedding(ctx context.Context, documentPath string) ([]float32, error) {
	key := CacheKey(documentPath)
	if vector, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return vector, nil
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := r.inflight.DoChan(key, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while we waited.
		if vector, ok := r.cache.Get(key); ok {
			r.hits.Add(1)
			return vector, nil
		}
		r.misses.Add(1)

		text := r.extractor.Extract(shared, r.resolvePath(documentPath))
		if text == "" {
			return nil, domain.ErrExtraction
		}

		vector, err := r.embed(shared, DocumentText(documentPath, text))
		if err != nil {
			return nil, err
		}
		r.cache.Put(key, vector)
		return vector, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

// embed sends text to the provider, cut to the provider's input limit.
func (r *Resolver) embed(ctx context.Context, text string) ([]float32, error) {
	if limit := r.embedder.MaxInputChars(); limit > 0 {
		text = domain.Truncate(text, limit)
	}
	return r.embedder.Embed(ctx, text)
}

// DocumentText composes the embedding input for a document-backed item.
func DocumentText(documentPath, text string) string {
	return fmt.Sprintf("Document: %s\n\nContent: %s",
		filepath.Base(documentPath), domain.Truncate(text, documentPreviewChars))
}

// ItemText composes the embedding input for an item without a usable document.
func ItemText(item domain.Item) string {
	if item.Description == "" {
		return item.Name
	}
	return item.Name + ": " + item.Description
}
