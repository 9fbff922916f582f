package vector

// DefaultMMRLambda balances query relevance against diversity.
const DefaultMMRLambda = 0.5

// MaximalMarginalRelevance picks k hits that stay relevant to the query while
// penalizing similarity to hits already selected. Input hits should carry
// their vectors and be pre-scored against the query.
func MaximalMarginalRelevance(query []float32, hits []Hit, k int, lambda float64) []Hit {
	if k <= 0 || len(hits) == 0 {
		return nil
	}
	if k > len(hits) {
		k = len(hits)
	}
	if lambda < 0 || lambda > 1 {
		lambda = DefaultMMRLambda
	}

	remaining := make([]Hit, len(hits))
	copy(remaining, hits)
	selected := make([]Hit, 0, k)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := -2.0
		for i, candidate := range remaining {
			relevance := CosineSimilarity(query, candidate.Vector)
			redundancy := 0.0
			for _, chosen := range selected {
				if sim := CosineSimilarity(candidate.Vector, chosen.Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}
