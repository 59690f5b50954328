package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"semtiles/config"
	"semtiles/internal/adapter/llm"
	"semtiles/internal/domain"
)

func TestLoadItems(t *testing.T) {
	tmpDir := t.TempDir()

	jsonPath := filepath.Join(tmpDir, "items.json")
	jsonContent := `[{"id":"1","name":"Cat"},{"id":"2","name":"Paper","documentPath":"paper.pdf"}]`
	if err := os.WriteFile(jsonPath, []byte(jsonContent), 0644); err != nil {
		t.Fatal(err)
	}

	yamlPath := filepath.Join(tmpDir, "items.yaml")
	yamlContent := `
- id: "1"
  name: Cat
- id: "2"
  name: Paper
  documentPath: paper.pdf
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		items, err := loadItems(path, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
		if len(items) != 2 {
			t.Fatalf("%s: expected 2 items, got %d", path, len(items))
		}
		if items[1] != (domain.Item{ID: "2", Name: "Paper", DocumentPath: "paper.pdf"}) {
			t.Errorf("%s: unexpected item %+v", path, items[1])
		}
	}
}

func TestLoadItems_Stdin(t *testing.T) {
	items, err := loadItems("-", strings.NewReader(`[{"id":"a","name":"A"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestLoadItems_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	if err := os.WriteFile(path, []byte(`{"id": "not a list"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadItems(path, nil); err == nil {
		t.Error("expected error for non-list items file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "item", "a")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON record, got %q", out)
	}

	if _, err := newLogger(config.LoggingConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := newLogger(config.LoggingConfig{Level: "info", Format: "xml"}, &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewEmbedder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimension = 16

	embedder, err := newEmbedder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedder.ModelName() != "mock" {
		t.Errorf("expected mock embedder, got %s", embedder.ModelName())
	}

	cfg.Embedding.Provider = "openai"
	cfg.Embedding.APIKeyEnv = "SEMTILES_TEST_MISSING_KEY"
	if _, err := newEmbedder(cfg); err == nil {
		t.Error("expected error when the API key is missing")
	}

	cfg.Embedding.Provider = "word2vec"
	if _, err := newEmbedder(cfg); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestNewLLM_MissingKeyIsUnconfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Completion.APIKeyEnv = "SEMTILES_TEST_MISSING_KEY"

	if got := newLLM(cfg, slog.Default()); got != nil {
		t.Errorf("expected nil provider, got %T", got)
	}

	cfg.Completion.Provider = "mock"
	if got := newLLM(cfg, slog.Default()); got == nil {
		t.Error("expected mock provider")
	}
}

func TestOpenCache(t *testing.T) {
	cfg := config.DefaultConfig()

	c, closeCache, err := openCache(cfg, "mock", false, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Put("doc:a.pdf", []float32{1, 2})
	if err := closeCache(); err != nil {
		t.Fatal(err)
	}

	cfg.Cache.Path = filepath.Join(t.TempDir(), "state", "cache.db")
	c, closeCache, err = openCache(cfg, "mock", false, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Put("doc:a.pdf", []float32{1, 2})
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
	if err := closeCache(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.Cache.Path); err != nil {
		t.Errorf("expected cache file: %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]string{
		"500ms": "<1s",
		"42s":   "42s",
		"3m7s":  "3m7s",
		"2h15m": "2h15m",
	}
	for in, want := range tests {
		d, err := time.ParseDuration(in)
		if err != nil {
			t.Fatal(err)
		}
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "semtiles.yaml")

	if err := writeDefaultConfig(path, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Embedding.Model != config.DefaultConfig().Embedding.Model {
		t.Errorf("expected default model, got %q", loaded.Embedding.Model)
	}

	if err := writeDefaultConfig(path, false); err == nil {
		t.Error("expected error when the file already exists")
	}
	if err := writeDefaultConfig(path, true); err != nil {
		t.Errorf("expected overwrite with force, got %v", err)
	}
}

func TestLogCompletionUsage(t *testing.T) {
	t.Setenv("SEMTILES_TEST_KEY", "sk-test")
	client, err := llm.NewClient("SEMTILES_TEST_KEY", "gpt-4o-mini", llm.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logCompletionUsage(logger, client)
	if !strings.Contains(buf.String(), "completion usage") || !strings.Contains(buf.String(), "calls=0") {
		t.Errorf("expected usage record, got %q", buf.String())
	}

	buf.Reset()
	logCompletionUsage(logger, llm.NewMockLLM())
	logCompletionUsage(logger, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no record for non-remote providers, got %q", buf.String())
	}
}
