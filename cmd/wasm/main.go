//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"semtiles/internal/adapter/cache"
	"semtiles/internal/adapter/embedding"
	"semtiles/internal/adapter/memstore"
	"semtiles/internal/domain"
	"semtiles/internal/usecase"
)

var (
	docs       *memstore.DocumentStore
	embeddings *cache.MemoryCache
	processor  *usecase.Processor
)

func init() {
	docs = memstore.NewDocumentStore()
	embeddings = cache.NewMemoryCache(cache.DefaultCapacity)
	processor = newProcessor()
}

// The browser build has no network access to a provider, so it embeds with
// the deterministic mock and has no completion model.
func newProcessor() *usecase.Processor {
	return usecase.NewProcessor(
		embedding.NewMockEmbedder(256),
		docs,
		nil,
		embeddings,
		usecase.ProcessorOptions{},
	)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("semtilesAddDocument", js.FuncOf(addDocument))
	js.Global().Set("semtilesRemoveDocument", js.FuncOf(removeDocument))
	js.Global().Set("semtilesDistances", js.FuncOf(computeDistances))
	js.Global().Set("semtilesClear", js.FuncOf(clearAll))
	js.Global().Set("semtilesStats", js.FuncOf(getStats))

	<-c
}

func addDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: semtilesAddDocument(filename, content)")
	}

	filename := args[0].String()
	docs.Put(filename, args[1].String())

	return makeResult(map[string]interface{}{
		"success":  true,
		"filename": filename,
	})
}

// removeDocument forgets an uploaded document and its cached embedding, so a
// re-upload under the same name is embedded again.
func removeDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: semtilesRemoveDocument(filename)")
	}

	filename := args[0].String()
	docs.Delete(filename)
	cached := embeddings.Remove(usecase.CacheKey(filename))

	return makeResult(map[string]interface{}{
		"success":  true,
		"filename": filename,
		"cached":   cached,
	})
}

func computeDistances(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: semtilesDistances(itemsJSON, [levelId])")
	}

	var items []domain.Item
	if err := json.Unmarshal([]byte(args[0].String()), &items); err != nil {
		return makeError("invalid items: " + err.Error())
	}
	levelID := ""
	if len(args) > 1 {
		levelID = args[1].String()
	}

	result, err := processor.ComputeDistances(context.Background(), items, levelID)
	if err != nil {
		return makeError(err.Error())
	}

	output := make([]map[string]interface{}, 0, result.Table.Len())
	for _, e := range result.Table.Entries() {
		output = append(output, map[string]interface{}{
			"a":        e.Pair.A,
			"b":        e.Pair.B,
			"distance": e.Distance,
		})
	}

	return makeResult(map[string]interface{}{
		"distances": output,
		"embedded":  result.Embedded,
		"failures":  result.Failures,
	})
}

func clearAll(this js.Value, args []js.Value) interface{} {
	docs.Clear()
	embeddings.Purge()
	// A fresh processor also resets the hit and miss counters.
	processor = newProcessor()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	stats := processor.CacheStats()
	return makeResult(map[string]interface{}{
		"documents":   docs.Len(),
		"embeddings":  embeddings.Len(),
		"files":       docs.List(),
		"cacheHits":   stats.CacheHits,
		"cacheMisses": stats.CacheMisses,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
