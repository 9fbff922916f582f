package vector

import (
	"context"
	"sort"
	"sync"
)

type memoryEntry struct {
	text   string
	vector []float32
}

// MemoryIndex keeps collections in-process. It backs tests and local runs
// without a vector database.
type MemoryIndex struct {
	mu          sync.RWMutex
	collections map[string][]memoryEntry
}

// NewMemoryIndex initializes an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{collections: make(map[string][]memoryEntry)}
}

// Replace rebuilds a collection from the given texts and vectors.
func (m *MemoryIndex) Replace(_ context.Context, collection string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return errLengthMismatch
	}
	entries := make([]memoryEntry, len(texts))
	for i := range texts {
		entries[i] = memoryEntry{text: texts[i], vector: vectors[i]}
	}
	m.mu.Lock()
	m.collections[collection] = entries
	m.mu.Unlock()
	return nil
}

// Search returns the most similar entries by cosine similarity.
func (m *MemoryIndex) Search(_ context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	entries := m.collections[collection]
	m.mu.RUnlock()
	hits := make([]Hit, 0, len(entries))
	for _, entry := range entries {
		hits = append(hits, Hit{
			Text:   entry.text,
			Vector: entry.vector,
			Score:  CosineSimilarity(vector, entry.vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// Drop removes a collection.
func (m *MemoryIndex) Drop(_ context.Context, collection string) error {
	m.mu.Lock()
	delete(m.collections, collection)
	m.mu.Unlock()
	return nil
}
