package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/ports"
)

// Rule-based reranking weights; they sum to 1.0.
const (
	rerankSimilarityWeight = 0.4
	rerankSkillWeight      = 0.3
	rerankDurationWeight   = 0.15
	rerankTypeWeight       = 0.15

	// Duration fit when the assessment violates an active min/max bound.
	durationPenaltyScore = 0.3

	// Neutral test-type fit when the constraints express no preference.
	typeNeutralScore = 0.5
	// Mixed query, assessment carrying only one of the two category families.
	typePartialScore = 0.7
)

// Oracle-blend weights; substitute, not supplement, the rule formula.
const (
	oracleRelevanceWeight  = 0.6
	oracleSimilarityWeight = 0.4
)

// Reranker scores retrieved candidates against the structured constraints.
// The retriever's combined score is always one input, never the only one.
// With a relevance oracle configured, the blend path replaces the four-factor
// formula; an oracle failure for a candidate silently falls back to the
// four-factor score for that candidate.
type Reranker struct {
	scorer   ports.RelevanceScorer
	observer PipelineObserver
}

func NewReranker(scorer ports.RelevanceScorer) *Reranker {
	return &Reranker{scorer: scorer}
}

func (r *Reranker) Rerank(
	ctx context.Context,
	query string,
	constraints domain.QueryConstraints,
	candidates []domain.ScoredCandidate,
	k int,
) []domain.ScoredCandidate {
	if len(candidates) == 0 {
		return nil
	}

	fellBack := false
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		score := r.score(ctx, query, constraints, candidate, &fellBack)
		scored = append(scored, domain.ScoredCandidate{
			Assessment: candidate.Assessment,
			Score:      score,
		})
	}
	if fellBack && r.observer != nil {
		r.observer.ScoringFallback()
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func (r *Reranker) score(
	ctx context.Context,
	query string,
	constraints domain.QueryConstraints,
	candidate domain.ScoredCandidate,
	fellBack *bool,
) float64 {
	if r.scorer != nil {
		relevance, err := r.scorer.ScoreRelevance(ctx, query, *candidate.Assessment)
		if err == nil {
			return clampScore(oracleRelevanceWeight*relevance + oracleSimilarityWeight*candidate.Score)
		}
		*fellBack = true
		slog.Warn("relevance_oracle_fallback", "assessment_id", candidate.Assessment.ID, "error", err)
	}
	return ruleScore(constraints, candidate)
}

// ruleScore is the four-factor weighted formula, clamped to 1.0.
func ruleScore(constraints domain.QueryConstraints, candidate domain.ScoredCandidate) float64 {
	a := candidate.Assessment

	skillScore := 0.0
	if len(constraints.RequiredSkills) > 0 && len(a.Skills) > 0 {
		matched := 0
		for _, required := range constraints.RequiredSkills {
			for _, have := range a.Skills {
				if strings.EqualFold(required, have) {
					matched++
					break
				}
			}
		}
		skillScore = float64(matched) / float64(len(constraints.RequiredSkills))
	}

	durationScore := 1.0
	if constraints.MinDuration != nil && a.Duration > 0 && a.Duration < *constraints.MinDuration {
		durationScore = durationPenaltyScore
	}
	if constraints.MaxDuration != nil && a.Duration > 0 && a.Duration > *constraints.MaxDuration {
		durationScore = durationPenaltyScore
	}

	typeScore := typeNeutralScore
	switch {
	case len(constraints.PreferredTestTypes) > 0:
		if a.HasAnyType(constraints.PreferredTestTypes) {
			typeScore = 1.0
		}
	case constraints.IsTechnical && constraints.IsBehavioral:
		hasTechnical := a.HasAnyType(domain.TechnicalTypes)
		hasBehavioral := a.HasAnyType(domain.BehavioralTypes)
		if hasTechnical && hasBehavioral {
			typeScore = 1.0
		} else if hasTechnical || hasBehavioral {
			typeScore = typePartialScore
		}
	case constraints.IsTechnical:
		if a.HasAnyType(domain.TechnicalTypes) {
			typeScore = 1.0
		}
	case constraints.IsBehavioral:
		if a.HasAnyType(domain.BehavioralTypes) {
			typeScore = 1.0
		}
	}

	combined := rerankSimilarityWeight*candidate.Score +
		rerankSkillWeight*skillScore +
		rerankDurationWeight*durationScore +
		rerankTypeWeight*typeScore
	return clampScore(combined)
}

func clampScore(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	return score
}
