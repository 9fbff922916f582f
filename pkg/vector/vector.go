// Package vector provides per-sermon vector collections for similarity
// search over transcript chunks.
package vector

import (
	"context"
	"math"
)

// Hit is a stored chunk returned from a similarity search.
type Hit struct {
	Text   string
	Vector []float32
	Score  float64
}

// Index stores embedded chunks grouped into named collections and searches
// them by cosine similarity. Replace rebuilds a collection wholesale; there
// is no incremental indexing.
type Index interface {
	Replace(ctx context.Context, collection string, texts []string, vectors [][]float32) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error)
	Drop(ctx context.Context, collection string) error
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has no magnitude.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
