package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for semtiles.
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Cache      CacheConfig      `yaml:"cache"`
	Distance   DistanceConfig   `yaml:"distance"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model         string `yaml:"model"`       // e.g., "text-embedding-ada-002"
	BaseURL       string `yaml:"base_url"`    // OpenAI-compatible endpoint; empty uses the provider default
	APIKeyEnv     string `yaml:"api_key_env"` // Environment variable for API key
	Dimension     int    `yaml:"dimension"`   // Only used by the mock provider
	MaxInputChars int    `yaml:"max_input_chars"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	MaxRetries    int    `yaml:"max_retries"`
}

// CompletionConfig holds completion provider configuration.
type CompletionConfig struct {
	Provider    string `yaml:"provider"` // "openai", "mock"
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// DocumentsConfig controls where documents are read from.
type DocumentsConfig struct {
	UploadDir string   `yaml:"upload_dir"`
	Includes  []string `yaml:"includes"`
	Excludes  []string `yaml:"excludes"`
}

// CacheConfig controls the document embedding cache.
type CacheConfig struct {
	Capacity int    `yaml:"capacity"`
	Path     string `yaml:"path"` // BoltDB file; empty keeps the cache in memory only
}

// DistanceConfig controls distance computation.
type DistanceConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:      "openai",
			Model:         "text-embedding-ada-002",
			APIKeyEnv:     "OPENAI_API_KEY",
			Dimension:     1536,
			MaxInputChars: 8191,
			TimeoutSecs:   60,
		},
		Completion: CompletionConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 120,
		},
		Documents: DocumentsConfig{
			UploadDir: "uploads",
			Includes:  []string{"**/*.pdf", "**/*.txt", "**/*.md"},
			Excludes:  []string{"**/.git/**", "**/.semtiles/**"},
		},
		Cache: CacheConfig{
			Capacity: 1024,
		},
		Distance: DistanceConfig{
			Concurrency: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semtiles.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "semtiles.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".semtiles", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UploadPath resolves a document path against the upload directory.
// Absolute paths are returned unchanged.
func (c *Config) UploadPath(documentPath string) string {
	if filepath.IsAbs(documentPath) || c.Documents.UploadDir == "" {
		return documentPath
	}
	return filepath.Join(c.Documents.UploadDir, documentPath)
}

// CacheDBPath returns the default location of the persistent embedding cache.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".semtiles", "cache.db")
}

// applyDefaults fills zero values that YAML explicitly left empty.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Embedding.MaxInputChars <= 0 {
		cfg.Embedding.MaxInputChars = def.Embedding.MaxInputChars
	}
	if cfg.Embedding.TimeoutSecs <= 0 {
		cfg.Embedding.TimeoutSecs = def.Embedding.TimeoutSecs
	}
	if cfg.Embedding.Dimension <= 0 {
		cfg.Embedding.Dimension = def.Embedding.Dimension
	}
	if cfg.Completion.TimeoutSecs <= 0 {
		cfg.Completion.TimeoutSecs = def.Completion.TimeoutSecs
	}
	if cfg.Cache.Capacity <= 0 {
		cfg.Cache.Capacity = def.Cache.Capacity
	}
	if cfg.Distance.Concurrency <= 0 {
		cfg.Distance.Concurrency = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}
