package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"semtiles/config"
	"semtiles/internal/adapter/cache"
	"semtiles/internal/adapter/embedding"
	"semtiles/internal/adapter/extract"
	"semtiles/internal/adapter/llm"
	"semtiles/internal/port"
	"semtiles/internal/usecase"
)

// newEmbedder creates the embedding provider named in the config.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	return embedding.FromConfig(cfg.Embedding)
}

// newLLM creates the completion provider. A provider that cannot be created
// is logged and reported as nil so distance computation still works.
func newLLM(cfg *config.Config, logger *slog.Logger) port.LLM {
	cc := cfg.Completion

	switch cc.Provider {
	case "openai":
		client, err := llm.NewClient(cc.APIKeyEnv, cc.Model, llm.Options{
			BaseURL:    cc.BaseURL,
			Timeout:    time.Duration(cc.TimeoutSecs) * time.Second,
			MaxRetries: cc.MaxRetries,
		})
		if err != nil {
			logger.Warn("completion provider not configured", "provider", cc.Provider, "error", err)
			return nil
		}
		return client
	case "mock":
		return llm.NewMockLLM()
	default:
		logger.Warn("unsupported completion provider", "provider", cc.Provider)
		return nil
	}
}

// persistentCachePath is where the BoltDB embedding cache lives.
func persistentCachePath(cfg *config.Config) string {
	if cfg.Cache.Path != "" {
		return cfg.Cache.Path
	}
	return config.CacheDBPath(GetRootDir())
}

// openCache builds the embedding cache. With persist set (or cache.path
// configured) the in-memory LRU is backed by a BoltDB file.
func openCache(cfg *config.Config, model string, persist bool, logger *slog.Logger) (port.EmbeddingCache, func() error, error) {
	memory := cache.NewMemoryCache(cfg.Cache.Capacity)
	if !persist && cfg.Cache.Path == "" {
		return memory, func() error { return nil }, nil
	}

	path := persistentCachePath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	bolt, err := cache.NewBoltCache(path, model, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	return cache.NewTiered(memory, bolt), bolt.Close, nil
}

// newProcessor wires the full processor. The returned close func releases
// the persistent cache, if any.
func newProcessor(cfg *config.Config, logger *slog.Logger, persist bool) (*usecase.Processor, func() error, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	embeddingCache, closeCache, err := openCache(cfg, embedder.ModelName(), persist, logger)
	if err != nil {
		return nil, nil, err
	}

	processor := usecase.NewProcessor(
		embedder,
		extract.NewExtractor(logger),
		newLLM(cfg, logger),
		embeddingCache,
		usecase.ProcessorOptions{
			ResolvePath: cfg.UploadPath,
			Concurrency: cfg.Distance.Concurrency,
			Logger:      logger,
		},
	)
	return processor, closeCache, nil
}

// newDocumentService wires summaries and questions without an embedder. The
// completion provider is returned too so its usage can be reported.
func newDocumentService(cfg *config.Config, logger *slog.Logger) (*usecase.DocumentService, port.LLM) {
	model := newLLM(cfg, logger)
	return usecase.NewDocumentService(extract.NewExtractor(logger), model, cfg.UploadPath, logger), model
}

// logCompletionUsage reports what a remote completion client has consumed.
func logCompletionUsage(logger *slog.Logger, model port.LLM) {
	client, ok := model.(*llm.Client)
	if !ok {
		return
	}
	stats := client.GetStats()
	logger.Debug("completion usage",
		"model", client.ModelName(),
		"calls", stats.TotalCalls,
		"input_chars", stats.TotalInputChars,
		"output_chars", stats.TotalOutputChars)
}
