package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// RankedText is one reranked passage with its cross-encoder score.
type RankedText struct {
	Text  string
	Score float64
}

// Reranker rescores candidate passages against a query and returns the topN
// most relevant, best first.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string, topN int) ([]RankedText, error)
}

// CrossEncoderClient calls an HTTP rerank endpoint (a text-embeddings-
// inference style server hosting a cross-encoder such as
// BAAI/bge-reranker-base).
type CrossEncoderClient struct {
	url        string
	httpClient *http.Client
}

// NewCrossEncoderClient builds a reranker client for the given endpoint.
func NewCrossEncoderClient(url string) (*CrossEncoderClient, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("rerank endpoint required")
	}
	return &CrossEncoderClient{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rerank posts query and candidates to the endpoint and returns the topN
// passages in descending score order.
func (c *CrossEncoderClient) Rerank(ctx context.Context, query string, texts []string, topN int) ([]RankedText, error) {
	if len(texts) == 0 || topN <= 0 {
		return nil, nil
	}
	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rerank api error: %s", resp.Status)
	}
	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topN > len(results) {
		topN = len(results)
	}
	ranked := make([]RankedText, 0, topN)
	for _, r := range results[:topN] {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("rerank result index %d out of range", r.Index)
		}
		ranked = append(ranked, RankedText{Text: texts[r.Index], Score: r.Score})
	}
	return ranked, nil
}
