package usecase

import (
	"testing"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

func knowledgeAssessment(id int) domain.Assessment {
	return domain.Assessment{ID: id, TestType: []string{"Knowledge & Skills"}}
}

func personalityAssessment(id int) domain.Assessment {
	return domain.Assessment{ID: id, TestType: []string{"Personality & Behavior"}}
}

func rankedList(assessments ...domain.Assessment) []domain.ScoredCandidate {
	ranked := make([]domain.ScoredCandidate, 0, len(assessments))
	for i, a := range assessments {
		ranked = append(ranked, scoredCandidate(a, 1.0-float64(i)*0.05))
	}
	return ranked
}

func assessmentIDs(assessments []domain.Assessment) []int {
	ids := make([]int, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestInterleavePairsOnMixedIntentQuery(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{})
	ranked := rankedList(
		knowledgeAssessment(1),
		knowledgeAssessment(2),
		knowledgeAssessment(3),
		personalityAssessment(4),
		personalityAssessment(5),
		knowledgeAssessment(6),
	)

	got := balancer.Balance("java developer who can collaborate with teams", ranked)

	// Two pairs (limited by the personality side), then the rest in ranked
	// order.
	want := []int{1, 4, 2, 5, 3, 6}
	if !equalIntSlices(assessmentIDs(got), want) {
		t.Fatalf("order = %v, want %v", assessmentIDs(got), want)
	}
}

func TestInterleaveCapsAtThreePairs(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{})
	ranked := rankedList(
		knowledgeAssessment(1),
		knowledgeAssessment(2),
		knowledgeAssessment(3),
		knowledgeAssessment(4),
		personalityAssessment(5),
		personalityAssessment(6),
		personalityAssessment(7),
		personalityAssessment(8),
	)

	got := balancer.Balance("python engineer with strong communication and leadership", ranked)

	want := []int{1, 5, 2, 6, 3, 7, 4, 8}
	if !equalIntSlices(assessmentIDs(got), want) {
		t.Fatalf("order = %v, want %v", assessmentIDs(got), want)
	}
}

func TestInterleavePassesThroughSingleIntentQuery(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{})
	ranked := rankedList(
		knowledgeAssessment(1),
		personalityAssessment(2),
		knowledgeAssessment(3),
	)

	got := balancer.Balance("java sql assessment", ranked)

	want := []int{1, 2, 3}
	if !equalIntSlices(assessmentIDs(got), want) {
		t.Fatalf("order = %v, want pass-through %v", assessmentIDs(got), want)
	}
}

func TestInterleaveTruncatesAtMax(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{MaxRecommendations: 4})
	ranked := rankedList(
		knowledgeAssessment(1),
		knowledgeAssessment(2),
		knowledgeAssessment(3),
		personalityAssessment(4),
		personalityAssessment(5),
		personalityAssessment(6),
	)

	got := balancer.Balance("java team player", ranked)

	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
}

func TestShareReordersWhenCategoryUnderrepresented(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{Strategy: BalanceShare})
	ranked := rankedList(
		knowledgeAssessment(1),
		knowledgeAssessment(2),
		knowledgeAssessment(3),
		knowledgeAssessment(4),
		personalityAssessment(5),
	)

	// Behavioral share is 1/5 < 0.3, so the lists alternate while both
	// categories last.
	got := balancer.Balance("any query", ranked)

	want := []int{1, 5, 2, 3, 4}
	if !equalIntSlices(assessmentIDs(got), want) {
		t.Fatalf("order = %v, want %v", assessmentIDs(got), want)
	}
}

func TestShareKeepsOrderWhenBothSharesMet(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{Strategy: BalanceShare})
	ranked := rankedList(
		knowledgeAssessment(1),
		personalityAssessment(2),
		knowledgeAssessment(3),
		personalityAssessment(4),
	)

	got := balancer.Balance("any query", ranked)

	want := []int{1, 2, 3, 4}
	if !equalIntSlices(assessmentIDs(got), want) {
		t.Fatalf("order = %v, want unchanged %v", assessmentIDs(got), want)
	}
}

func TestBalanceEmptyInput(t *testing.T) {
	balancer := NewBalancer(BalancerConfig{})
	if got := balancer.Balance("java team", nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
