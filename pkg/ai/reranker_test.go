package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRerankReturnsTopN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Query == "" || len(req.Texts) != 4 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// Out of order on purpose.
		_, _ = w.Write([]byte(`[{"index":2,"score":0.91},{"index":0,"score":0.12},{"index":3,"score":0.77},{"index":1,"score":0.34}]`))
	}))
	defer srv.Close()

	client, err := NewCrossEncoderClient(srv.URL)
	if err != nil {
		t.Fatalf("NewCrossEncoderClient: %v", err)
	}
	texts := []string{"alpha", "bravo", "charlie", "delta"}
	ranked, err := client.Rerank(context.Background(), "query", texts, 3)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d results, want 3", len(ranked))
	}
	if ranked[0].Text != "charlie" || ranked[1].Text != "delta" || ranked[2].Text != "bravo" {
		t.Fatalf("wrong order: %+v", ranked)
	}
	if ranked[0].Score != 0.91 {
		t.Fatalf("score not carried: %+v", ranked[0])
	}
}

func TestRerankTopNBeyondResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index":0,"score":0.5}]`))
	}))
	defer srv.Close()

	client, _ := NewCrossEncoderClient(srv.URL)
	ranked, err := client.Rerank(context.Background(), "q", []string{"only"}, 3)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d results, want 1", len(ranked))
	}
}

func TestRerankEmptyInput(t *testing.T) {
	client, _ := NewCrossEncoderClient("http://localhost:0")
	ranked, err := client.Rerank(context.Background(), "q", nil, 3)
	if err != nil || ranked != nil {
		t.Fatalf("empty input: ranked=%v err=%v", ranked, err)
	}
}

func TestRerankBadIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index":9,"score":0.5}]`))
	}))
	defer srv.Close()

	client, _ := NewCrossEncoderClient(srv.URL)
	if _, err := client.Rerank(context.Background(), "q", []string{"a"}, 1); err == nil {
		t.Fatal("out-of-range index accepted")
	}
}
