package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"semtiles/config"
	"semtiles/internal/adapter/cache"
	"semtiles/internal/adapter/embedding"
	"semtiles/internal/adapter/extract"
	"semtiles/internal/domain"
	"semtiles/internal/port"
	"semtiles/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding semtiles.yaml")
	itemsFile := flag.String("f", "", "Items JSON file (default: synthetic items)")
	n := flag.Int("n", 200, "Number of synthetic items")
	topK := flag.Int("k", 10, "Closest pairs to show")
	useConfig := flag.Bool("real", false, "Use the configured embedding provider instead of the mock")
	flag.Parse()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	items, err := loadItems(*itemsFile, *n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading items: %v\n", err)
		os.Exit(1)
	}

	embedder, err := setupEmbedding(cfg, *useConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding not available: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("SEMANTIC DISTANCE BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Items: %d (%d pairs)\n", len(items), len(items)*(len(items)-1)/2)
	fmt.Printf("Model: %s\n", embedder.ModelName())
	fmt.Println()

	var last *domain.DistanceResult
	for _, concurrency := range []int{1, 4, 16} {
		processor := usecase.NewProcessor(embedder, extract.NewExtractor(nil), nil, cache.NewMemoryCache(cfg.Cache.Capacity), usecase.ProcessorOptions{
			ResolvePath: cfg.UploadPath,
			Concurrency: concurrency,
		})

		start := time.Now()
		result, err := processor.ComputeDistances(context.Background(), items, "benchmark")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Computation error: %v\n", err)
			os.Exit(1)
		}
		elapsed := time.Since(start)

		fmt.Printf("concurrency=%-3d %8s  embedded=%d failures=%d\n",
			concurrency, elapsed.Round(time.Microsecond), result.Embedded, len(result.Failures))
		last = result
	}

	entries := last.Table.Entries()
	if len(entries) == 0 {
		fmt.Println("\nNo pairs to rank.")
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Distance < entries[j].Distance
	})
	if len(entries) > *topK {
		entries = entries[:*topK]
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Top %d closest pairs:\n\n", len(entries))

	totalSimilarity := 0.0
	for i, e := range entries {
		similarity := 1 - e.Distance
		totalSimilarity += similarity

		rating := "LOW"
		if similarity > 0.7 {
			rating = "HIGH"
		} else if similarity > 0.5 {
			rating = "GOOD"
		} else if similarity > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] %s <-> %s\n", i+1, rating, e.Distance, e.Pair.A, e.Pair.B)
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Average similarity of top pairs: %.3f\n", totalSimilarity/float64(len(entries)))
}

func loadItems(path string, n int) ([]domain.Item, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var items []domain.Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	words := []string{"cat", "dog", "car", "tree", "river", "engine", "forest", "kitten", "truck", "ocean"}
	items := make([]domain.Item, n)
	for i := range items {
		items[i] = domain.Item{
			ID:          fmt.Sprintf("item-%d", i),
			Name:        words[i%len(words)],
			Description: fmt.Sprintf("sample %d", i/len(words)),
		}
	}
	return items, nil
}

func setupEmbedding(cfg *config.Config, useConfig bool) (port.Embedder, error) {
	if !useConfig {
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	}
	return embedding.FromConfig(cfg.Embedding)
}
