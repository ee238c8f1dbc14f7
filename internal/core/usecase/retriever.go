package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/ports"
)

// Fusion weights favour semantic relevance over exact keyword overlap.
// Tunable against evaluation data, not a law; they must sum to 1.0.
const (
	vectorWeight  = 0.6
	lexicalWeight = 0.4

	// Guard against a zero denominator when all lexical scores are equal.
	lexicalNormEpsilon = 1e-8
)

// HybridRetriever fuses vector-similarity and lexical search into one ranked
// candidate list, then applies hard filters. All backing state is read-only.
type HybridRetriever struct {
	embedder ports.Embedder
	vector   ports.VectorIndex
	lexical  ports.LexicalIndex
	catalog  *domain.Catalog
}

func NewHybridRetriever(
	embedder ports.Embedder,
	vector ports.VectorIndex,
	lexical ports.LexicalIndex,
	catalog *domain.Catalog,
) *HybridRetriever {
	return &HybridRetriever{
		embedder: embedder,
		vector:   vector,
		lexical:  lexical,
		catalog:  catalog,
	}
}

// Search runs both searches with 2k headroom each and fuses the scores.
// The output is ordered by combined score descending, ties broken by
// ascending assessment id so repeated calls produce identical rankings.
func (r *HybridRetriever) Search(ctx context.Context, query string, k int) ([]domain.ScoredCandidate, error) {
	if k <= 0 {
		return nil, nil
	}

	vectorScores, err := r.vectorScores(ctx, query, 2*k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	lexicalScores := r.lexicalScores(query, 2*k)

	ids := make([]int, 0, len(vectorScores)+len(lexicalScores))
	for id := range vectorScores {
		ids = append(ids, id)
	}
	for id := range lexicalScores {
		if _, ok := vectorScores[id]; !ok {
			ids = append(ids, id)
		}
	}

	candidates := make([]domain.ScoredCandidate, 0, len(ids))
	for _, id := range ids {
		assessment := r.catalog.ByID(id)
		if assessment == nil {
			continue
		}
		combined := vectorWeight*vectorScores[id] + lexicalWeight*lexicalScores[id]
		candidates = append(candidates, domain.ScoredCandidate{
			Assessment: assessment,
			Score:      combined,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Assessment.ID < candidates[j].Assessment.ID
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Retrieve runs Search with headroom and applies the hard filters in order:
// duration lower bound, duration upper bound, test-type intersection. A
// candidate failing any active filter is excluded, never down-weighted.
// Fewer than k survivors is a valid result, not an error.
func (r *HybridRetriever) Retrieve(
	ctx context.Context,
	query string,
	k int,
	filter domain.RetrievalFilter,
) ([]domain.ScoredCandidate, error) {
	if k <= 0 {
		return nil, nil
	}
	rawK := 3 * k
	if k+10 > rawK {
		rawK = k + 10
	}

	ranked, err := r.Search(ctx, query, rawK)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.ScoredCandidate, 0, k)
	for _, candidate := range ranked {
		a := candidate.Assessment
		if filter.MinDuration != nil && a.Duration > 0 && a.Duration < *filter.MinDuration {
			continue
		}
		if filter.MaxDuration != nil && a.Duration > 0 && a.Duration > *filter.MaxDuration {
			continue
		}
		if len(filter.PreferredTestTypes) > 0 && !a.HasAnyType(filter.PreferredTestTypes) {
			continue
		}

		filtered = append(filtered, candidate)
		if len(filtered) >= k {
			break
		}
	}
	return filtered, nil
}

func (r *HybridRetriever) vectorScores(ctx context.Context, query string, k int) (map[int]float64, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vector.Search(ctx, queryVector, k)
	if err != nil {
		return nil, err
	}

	scores := make(map[int]float64, len(hits))
	for _, hit := range hits {
		// Distance to bounded similarity, monotonically decreasing in d.
		scores[hit.ID] = 1.0 / (1.0 + hit.Distance)
	}
	return scores, nil
}

// lexicalScores min-max normalizes the raw corpus scores into [0,1] and keeps
// the top k documents.
func (r *HybridRetriever) lexicalScores(query string, k int) map[int]float64 {
	tokens := tokenizeQuery(query)
	raw := r.lexical.Scores(tokens)
	ids := r.lexical.DocumentIDs()
	if len(raw) == 0 || len(raw) != len(ids) {
		return nil
	}

	minScore, maxScore := raw[0], raw[0]
	for _, s := range raw[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if raw[order[i]] != raw[order[j]] {
			return raw[order[i]] > raw[order[j]]
		}
		return order[i] < order[j]
	})
	if len(order) > k {
		order = order[:k]
	}

	scores := make(map[int]float64, len(order))
	for _, idx := range order {
		scores[ids[idx]] = (raw[idx] - minScore) / (maxScore - minScore + lexicalNormEpsilon)
	}
	return scores
}

func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
