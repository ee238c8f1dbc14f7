package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

// RecommendConfig bounds the pipeline's candidate and result counts.
type RecommendConfig struct {
	TopKRetrieve       int // candidates requested from the hybrid retriever
	MinRecommendations int // pad threshold for the final list
	MaxRecommendations int // hard cap on the final list
}

func (c RecommendConfig) normalize() RecommendConfig {
	out := c
	if out.TopKRetrieve <= 0 {
		out.TopKRetrieve = 20
	}
	if out.MinRecommendations <= 0 {
		out.MinRecommendations = 5
	}
	if out.MaxRecommendations <= 0 {
		out.MaxRecommendations = 10
	}
	return out
}

// RecommendUseCase sequences the pipeline stages in strict order:
// analyze, retrieve, rerank, balance, dedup, pad, truncate. No stage retries;
// retries live inside the analyzer's LLM call.
type RecommendUseCase struct {
	analyzer  QueryAnalyzer
	retriever *HybridRetriever
	reranker  *Reranker
	balancer  *Balancer
	cfg       RecommendConfig
	observer  PipelineObserver
}

func NewRecommendUseCase(
	analyzer QueryAnalyzer,
	retriever *HybridRetriever,
	reranker *Reranker,
	balancer *Balancer,
	cfg RecommendConfig,
) *RecommendUseCase {
	return &RecommendUseCase{
		analyzer:  analyzer,
		retriever: retriever,
		reranker:  reranker,
		balancer:  balancer,
		cfg:       cfg.normalize(),
	}
}

// SetObserver attaches a stage observer to the pipeline and its components.
// Call it once during wiring, before serving requests.
func (uc *RecommendUseCase) SetObserver(obs PipelineObserver) {
	uc.observer = obs
	if la, ok := uc.analyzer.(*LLMAnalyzer); ok {
		la.observer = obs
	}
	uc.reranker.observer = obs
	uc.balancer.observer = obs
}

// Recommend returns an ordered list of assessments for the query. An empty
// list after retrieval is a valid outcome, not an error. Under default
// configuration the result holds between MinRecommendations and
// MaxRecommendations entries whenever enough unfiltered candidates exist.
func (uc *RecommendUseCase) Recommend(ctx context.Context, query string, k int) ([]domain.Assessment, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "recommend", fmt.Errorf("empty query"))
	}
	if k <= 0 {
		k = uc.cfg.MaxRecommendations
	}

	constraints := uc.analyzer.Analyze(ctx, query)

	candidates, err := uc.retriever.Retrieve(ctx, query, uc.cfg.TopKRetrieve, constraints.Filter())
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	if len(candidates) == 0 {
		if uc.observer != nil {
			uc.observer.EmptyResult()
		}
		return []domain.Assessment{}, nil
	}

	ranked := uc.reranker.Rerank(ctx, query, constraints, candidates, 2*k)
	balanced := uc.balancer.Balance(query, ranked)

	// Dedup: keep the first occurrence per assessment id in balanced order.
	seen := make(map[int]bool, len(balanced))
	final := make([]domain.Assessment, 0, len(balanced))
	for _, a := range balanced {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		final = append(final, a)
	}

	// Pad from the original retrieval ranking until the minimum is met or
	// candidates run out. Padded entries bypass the reranker.
	padded := 0
	for _, candidate := range candidates {
		if len(final) >= uc.cfg.MinRecommendations {
			break
		}
		if seen[candidate.Assessment.ID] {
			continue
		}
		seen[candidate.Assessment.ID] = true
		final = append(final, *candidate.Assessment)
		padded++
	}
	if padded > 0 && uc.observer != nil {
		uc.observer.PaddedResult()
	}

	limit := k
	if limit > uc.cfg.MaxRecommendations {
		limit = uc.cfg.MaxRecommendations
	}
	if len(final) > limit {
		final = final[:limit]
	}
	return final, nil
}
