package memstore

import (
	"context"
	"sort"
	"sync"
)

// DocumentStore keeps document text in memory and serves it as a text
// extractor. It backs environments without a filesystem, such as the
// browser build.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]string),
	}
}

func (s *DocumentStore) Put(path, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = text
}

func (s *DocumentStore) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
}

// Extract returns the stored text, or "" for unknown paths.
func (s *DocumentStore) Extract(ctx context.Context, path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[path]
}

// List returns stored paths in lexical order.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *DocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]string)
}
