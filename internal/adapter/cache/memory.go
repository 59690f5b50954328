package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1024

// MemoryCache is a bounded, concurrency-safe LRU of document embeddings.
type MemoryCache struct {
	entries *lru.Cache[string, []float32]
}

// NewMemoryCache creates an LRU holding at most capacity embeddings.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, []float32](capacity)
	if err != nil {
		entries, _ = lru.New[string, []float32](DefaultCapacity)
	}
	return &MemoryCache{entries: entries}
}

// Get returns a copy of the cached vector so callers cannot mutate the entry.
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	vector, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return cloneVector(vector), true
}

func (c *MemoryCache) Put(key string, vector []float32) {
	c.entries.Add(key, cloneVector(vector))
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Remove drops one entry and reports whether it was present.
func (c *MemoryCache) Remove(key string) bool {
	return c.entries.Remove(key)
}

// Purge empties the cache.
func (c *MemoryCache) Purge() {
	c.entries.Purge()
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
