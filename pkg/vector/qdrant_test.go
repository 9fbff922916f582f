package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQdrantReplaceRecreatesCollection(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/serm123":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			vectors := body["vectors"].(map[string]any)
			if vectors["distance"] != "Cosine" || vectors["size"] != float64(3) {
				http.Error(w, "bad collection config", http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/serm123/points":
			if r.URL.Query().Get("wait") != "true" {
				http.Error(w, "missing wait", http.StatusBadRequest)
				return
			}
			var body struct {
				Points []struct {
					Vector  []float32      `json:"vector"`
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Points) != 2 {
				http.Error(w, "bad points", http.StatusBadRequest)
				return
			}
			if body.Points[0].Payload["text"] != "chunk one" {
				http.Error(w, "missing payload text", http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: srv.URL, Dim: 3})
	err := idx.Replace(context.Background(), "serm123",
		[]string{"chunk one", "chunk two"},
		[][]float32{{1, 0, 0}, {0, 1, 0}})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	want := []string{
		"DELETE /collections/serm123",
		"PUT /collections/serm123",
		"PUT /collections/serm123/points",
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestQdrantSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/serm123/points/search" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["with_payload"] != true || req["with_vector"] != true {
			http.Error(w, "payload and vector must be requested", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.9,"vector":[1,0,0],"payload":{"text":"best","index":0}},
			{"score":0.4,"vector":[0,1,0],"payload":{"text":"worse","index":1}}
		]}`))
	}))
	defer srv.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: srv.URL, Dim: 3})
	hits, err := idx.Search(context.Background(), "serm123", []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Text != "best" || hits[0].Score != 0.9 || len(hits[0].Vector) != 3 {
		t.Fatalf("first hit: %+v", hits[0])
	}
}

func TestQdrantDropToleratesMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: srv.URL})
	if err := idx.Drop(context.Background(), "missing"); err != nil {
		t.Fatalf("Drop of missing collection: %v", err)
	}
}

func TestQdrantAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: srv.URL, APIKey: "secret"})
	if err := idx.Drop(context.Background(), "c"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("api-key header = %q", gotKey)
	}
}
