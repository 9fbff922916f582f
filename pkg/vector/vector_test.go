package vector

import (
	"context"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		if got := CosineSimilarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: got %f, want %f", tc.name, got, tc.want)
		}
	}
}

func TestMemoryIndexSearchOrdersBySimilarity(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	texts := []string{"north", "east", "northeast"}
	vectors := [][]float32{{0, 1}, {1, 0}, {1, 1}}
	if err := idx.Replace(ctx, "c", texts, vectors); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	hits, err := idx.Search(ctx, "c", []float32{0, 1}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Text != "north" || hits[1].Text != "northeast" {
		t.Fatalf("wrong ranking: %q then %q", hits[0].Text, hits[1].Text)
	}
}

func TestMemoryIndexReplaceRebuildsCollection(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	if err := idx.Replace(ctx, "c", []string{"old"}, [][]float32{{1, 0}}); err != nil {
		t.Fatalf("first Replace: %v", err)
	}
	if err := idx.Replace(ctx, "c", []string{"new"}, [][]float32{{1, 0}}); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	hits, err := idx.Search(ctx, "c", []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "new" {
		t.Fatalf("stale entries after rebuild: %+v", hits)
	}
}

func TestMemoryIndexLengthMismatch(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Replace(context.Background(), "c", []string{"a", "b"}, [][]float32{{1}}); err == nil {
		t.Fatal("mismatched texts and vectors accepted")
	}
}

func TestMMRPrefersDiversity(t *testing.T) {
	query := []float32{1, 0, 0}
	hits := []Hit{
		{Text: "near duplicate 1", Vector: []float32{0.9, 0.1, 0}},
		{Text: "near duplicate 2", Vector: []float32{0.9, 0.11, 0}},
		{Text: "different angle", Vector: []float32{0.7, 0, 0.7}},
	}
	selected := MaximalMarginalRelevance(query, hits, 2, 0.5)
	if len(selected) != 2 {
		t.Fatalf("got %d results, want 2", len(selected))
	}
	if selected[0].Text != "near duplicate 1" {
		t.Fatalf("first pick should be the most relevant hit, got %q", selected[0].Text)
	}
	if selected[1].Text != "different angle" {
		t.Fatalf("second pick should diversify, got %q", selected[1].Text)
	}
}

func TestMMRBounds(t *testing.T) {
	hits := []Hit{{Text: "a", Vector: []float32{1, 0}}}
	if got := MaximalMarginalRelevance([]float32{1, 0}, hits, 0, 0.5); got != nil {
		t.Fatalf("k=0 returned %v", got)
	}
	if got := MaximalMarginalRelevance([]float32{1, 0}, nil, 5, 0.5); got != nil {
		t.Fatalf("no hits returned %v", got)
	}
	got := MaximalMarginalRelevance([]float32{1, 0}, hits, 5, 0.5)
	if len(got) != 1 {
		t.Fatalf("k beyond hits: got %d, want 1", len(got))
	}
}
