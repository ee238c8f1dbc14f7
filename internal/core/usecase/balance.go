package usecase

import (
	"strings"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

// Balance strategy names.
const (
	BalanceInterleave = "interleave"
	BalanceShare      = "share"
)

// Query-intent trigger vocabularies for the interleave strategy. Stem forms
// on purpose: "collaborat" covers collaborate/collaboration.
var (
	technicalIntentKeywords = []string{
		"java", "python", "sql", "code", "programming",
		"technical", "skill", "knowledge", "develop",
	}
	behavioralIntentKeywords = []string{
		"collaborat", "team", "stakeholder", "behavior",
		"personality", "soft skill", "communicat", "lead",
	}
)

// Interleave at most this many knowledge/personality pairs.
const maxInterleavePairs = 3

// Balancer adjusts a refined ranking so mixed technical/behavioral queries do
// not collapse into a single category. It is the last scoring-aware stage;
// scores are dropped from its output.
type Balancer struct {
	strategy           string
	maxRecommendations int
	minTechnicalShare  float64
	minBehavioralShare float64
	observer           PipelineObserver
}

type BalancerConfig struct {
	Strategy           string
	MaxRecommendations int
	MinTechnicalShare  float64
	MinBehavioralShare float64
}

func NewBalancer(cfg BalancerConfig) *Balancer {
	if cfg.Strategy == "" {
		cfg.Strategy = BalanceInterleave
	}
	if cfg.MaxRecommendations <= 0 {
		cfg.MaxRecommendations = 10
	}
	if cfg.MinTechnicalShare <= 0 {
		cfg.MinTechnicalShare = 0.3
	}
	if cfg.MinBehavioralShare <= 0 {
		cfg.MinBehavioralShare = 0.3
	}
	return &Balancer{
		strategy:           cfg.Strategy,
		maxRecommendations: cfg.MaxRecommendations,
		minTechnicalShare:  cfg.MinTechnicalShare,
		minBehavioralShare: cfg.MinBehavioralShare,
	}
}

func (b *Balancer) Balance(query string, ranked []domain.ScoredCandidate) []domain.Assessment {
	if len(ranked) == 0 {
		return nil
	}
	if b.strategy == BalanceShare {
		return b.balanceByShare(ranked)
	}
	return b.balanceByInterleave(query, ranked)
}

// balanceByInterleave applies only when the query lexically signals both
// technical and behavioral intent; otherwise it passes the ranking through.
func (b *Balancer) balanceByInterleave(query string, ranked []domain.ScoredCandidate) []domain.Assessment {
	lowered := strings.ToLower(query)
	if !containsAny(lowered, technicalIntentKeywords) || !containsAny(lowered, behavioralIntentKeywords) {
		return dropScores(ranked)
	}
	if b.observer != nil {
		b.observer.BalanceApplied(BalanceInterleave)
	}

	var knowledge, personality []*domain.Assessment
	for _, candidate := range ranked {
		joined := strings.ToLower(strings.Join(candidate.Assessment.TestType, " "))
		switch {
		case strings.Contains(joined, "knowledge") || strings.Contains(joined, "skill"):
			knowledge = append(knowledge, candidate.Assessment)
		case strings.Contains(joined, "personality") || strings.Contains(joined, "behavior"):
			personality = append(personality, candidate.Assessment)
		}
	}

	pairs := len(knowledge)
	if len(personality) < pairs {
		pairs = len(personality)
	}
	if pairs > maxInterleavePairs {
		pairs = maxInterleavePairs
	}

	balanced := make([]domain.Assessment, 0, len(ranked))
	added := make(map[int]bool, len(ranked))
	for i := 0; i < pairs; i++ {
		balanced = append(balanced, *knowledge[i])
		added[knowledge[i].ID] = true
		balanced = append(balanced, *personality[i])
		added[personality[i].ID] = true
	}

	for _, candidate := range ranked {
		if added[candidate.Assessment.ID] {
			continue
		}
		balanced = append(balanced, *candidate.Assessment)
		added[candidate.Assessment.ID] = true
	}

	if len(balanced) > b.maxRecommendations {
		balanced = balanced[:b.maxRecommendations]
	}
	return balanced
}

// balanceByShare reorders only when either category's share of the full
// ranked list falls below the configured minimum.
func (b *Balancer) balanceByShare(ranked []domain.ScoredCandidate) []domain.Assessment {
	assessments := dropScores(ranked)

	technicalCount := 0
	behavioralCount := 0
	for _, a := range assessments {
		if a.HasAnyType(domain.TechnicalTypes) {
			technicalCount++
		}
		if a.HasAnyType(domain.BehavioralTypes) {
			behavioralCount++
		}
	}
	total := float64(len(assessments))
	if float64(technicalCount)/total >= b.minTechnicalShare &&
		float64(behavioralCount)/total >= b.minBehavioralShare {
		return assessments
	}
	if b.observer != nil {
		b.observer.BalanceApplied(BalanceShare)
	}

	var technical, behavioral, other []domain.Assessment
	for _, a := range assessments {
		isTechnical := a.HasAnyType(domain.TechnicalTypes)
		isBehavioral := a.HasAnyType(domain.BehavioralTypes)
		switch {
		case isTechnical && !isBehavioral:
			technical = append(technical, a)
		case isBehavioral && !isTechnical:
			behavioral = append(behavioral, a)
		default:
			other = append(other, a)
		}
	}

	shorter := len(technical)
	if len(behavioral) < shorter {
		shorter = len(behavioral)
	}

	balanced := make([]domain.Assessment, 0, len(assessments))
	for i := 0; i < shorter; i++ {
		balanced = append(balanced, technical[i], behavioral[i])
	}
	balanced = append(balanced, technical[shorter:]...)
	balanced = append(balanced, behavioral[shorter:]...)
	balanced = append(balanced, other...)

	if len(balanced) > b.maxRecommendations {
		balanced = balanced[:b.maxRecommendations]
	}
	return balanced
}

func containsAny(lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func dropScores(ranked []domain.ScoredCandidate) []domain.Assessment {
	out := make([]domain.Assessment, 0, len(ranked))
	for _, candidate := range ranked {
		out = append(out, *candidate.Assessment)
	}
	return out
}
