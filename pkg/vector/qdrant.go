package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// QdrantIndex is a minimal REST client to Qdrant with one Qdrant collection
// per sermon. It assumes cosine distance.
type QdrantIndex struct {
	url    string
	apiKey string
	dim    int
	client *http.Client
}

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL     string
	APIKey  string
	Dim     int
	Timeout time.Duration
}

// NewQdrantIndex builds a Qdrant-backed index.
func NewQdrantIndex(cfg QdrantConfig) *QdrantIndex {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	dim := cfg.Dim
	if dim <= 0 {
		dim = defaultEmbeddingDim
	}
	return &QdrantIndex{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		dim:    dim,
		client: &http.Client{Timeout: timeout},
	}
}

// Replace drops and recreates the collection, then upserts every chunk.
func (q *QdrantIndex) Replace(ctx context.Context, collection string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return errLengthMismatch
	}
	if err := q.Drop(ctx, collection); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dim,
			"distance": "Cosine",
		},
	}
	if err := q.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", q.url, collection), body, nil); err != nil {
		return err
	}
	if len(texts) == 0 {
		return nil
	}
	points := make([]map[string]any, len(texts))
	for i := range texts {
		points[i] = map[string]any{
			"id":     i,
			"vector": vectors[i],
			"payload": map[string]any{
				"text":  texts[i],
				"index": i,
			},
		}
	}
	return q.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, collection),
		map[string]any{"points": points}, nil)
}

// Search returns the most similar chunks with payloads and vectors.
func (q *QdrantIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := q.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", q.url, collection), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := Hit{Score: r.Score, Vector: r.Vector}
		if text, ok := r.Payload["text"].(string); ok {
			hit.Text = text
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Drop removes the collection. A missing collection is not an error.
func (q *QdrantIndex) Drop(ctx context.Context, collection string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/collections/%s", q.url, collection), nil)
	if err != nil {
		return err
	}
	q.setHeaders(req)
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE %s failed: %s", collection, resp.Status)
	}
	return nil
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	q.setHeaders(req)
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (q *QdrantIndex) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
}
