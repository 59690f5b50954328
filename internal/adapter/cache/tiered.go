package cache

import "semtiles/internal/port"

// Tiered checks a fast cache before a persistent one and promotes hits.
type Tiered struct {
	front port.EmbeddingCache
	back  port.EmbeddingCache
}

func NewTiered(front, back port.EmbeddingCache) *Tiered {
	return &Tiered{front: front, back: back}
}

func (t *Tiered) Get(key string) ([]float32, bool) {
	if v, ok := t.front.Get(key); ok {
		return v, true
	}
	v, ok := t.back.Get(key)
	if !ok {
		return nil, false
	}
	t.front.Put(key, v)
	return v, true
}

func (t *Tiered) Put(key string, vector []float32) {
	t.front.Put(key, vector)
	t.back.Put(key, vector)
}

// Len reports the persistent tier, which holds a superset of the front.
func (t *Tiered) Len() int {
	return t.back.Len()
}
