package app

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"sermonbot/pkg/domain"
	"sermonbot/pkg/vector"
)

// NoContentsMessage is returned by the transcript tool when no sermon matches
// the requested title.
const NoContentsMessage = "No contents was found for this title"

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"

	embedBatchSize   = 16
	embedConcurrency = 4
)

// SermonTranscriptTool answers a query against the named sermon's transcript.
// It returns the top reranked passages joined by blank lines, or
// NoContentsMessage when no transcript is stored under that title.
func (a *App) SermonTranscriptTool(ctx context.Context, title, query string) (string, error) {
	passages, found, err := a.RetrievePassages(ctx, title, query)
	if err != nil {
		return "", err
	}
	if !found {
		return NoContentsMessage, nil
	}
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// RetrievePassages runs the full retrieval pipeline for one sermon: chunk the
// transcript, embed and index the chunks into the sermon's own collection,
// then search with the query embedding, diversify with maximal marginal
// relevance, and rerank with the cross-encoder. found is false when no
// transcript is stored under the title.
func (a *App) RetrievePassages(ctx context.Context, title, query string) ([]domain.Passage, bool, error) {
	rec, ok, err := a.store.GetTranscriptByTitle(title)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	passages, err := a.retrieve(ctx, rec.VideoID, rec.Transcript, query)
	if err != nil {
		return nil, false, err
	}
	return passages, true, nil
}

func (a *App) retrieve(ctx context.Context, collectionKey, text, query string) ([]domain.Passage, error) {
	if a.embedder == nil || a.reranker == nil || a.index == nil {
		return nil, fmt.Errorf("%w: retrieval pipeline not configured", domain.ErrUpstream)
	}
	collection, err := a.store.ResolveCollection(collectionKey)
	if err != nil {
		return nil, err
	}
	chunks := chunkText(text, a.chunkSize, a.chunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}
	vectors, err := a.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if err := a.index.Replace(ctx, collection, chunks, vectors); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	queryVec, err := a.embedder.EmbedText(ctx, query, taskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := a.index.Search(ctx, collection, queryVec, a.fetchK)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", collection, err)
	}
	selected := vector.MaximalMarginalRelevance(queryVec, hits, a.mmrK, vector.DefaultMMRLambda)
	if len(selected) == 0 {
		return nil, nil
	}

	candidates := make([]string, 0, len(selected))
	for _, hit := range selected {
		candidates = append(candidates, hit.Text)
	}
	ranked, err := a.reranker.Rerank(ctx, query, candidates, a.topN)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	passages := make([]domain.Passage, 0, len(ranked))
	for _, r := range ranked {
		passages = append(passages, domain.Passage{Text: r.Text, Score: r.Score})
	}
	return passages, nil
}

// embedChunks embeds chunks in concurrent batches, keeping result order
// aligned with the input.
func (a *App) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		start, end := start, end
		g.Go(func() error {
			batch, err := a.embedder.EmbedTexts(ctx, chunks[start:end], taskTypeDocument)
			if err != nil {
				return err
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
