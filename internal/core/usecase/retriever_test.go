package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

const scoreTolerance = 1e-6

func retrievalCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Assessment{
		{ID: 1, Name: "Java 8", Duration: 45, TestType: []string{"Knowledge & Skills"}},
		{ID: 2, Name: "Python Basics", Duration: 30, TestType: []string{"Knowledge & Skills"}},
		{ID: 3, Name: "Teamwork", Duration: 25, TestType: []string{"Personality & Behavior"}},
		{ID: 4, Name: "Leadership", Duration: 60, TestType: []string{"Competencies"}},
		{ID: 5, Name: "SQL Advanced", Duration: 0, TestType: []string{"Knowledge & Skills"}},
	})
}

func TestSearchFusesVectorAndLexicalScores(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{
		{ID: 1, Distance: 0},
		{ID: 2, Distance: 1},
	}}
	lexical := &fakeLexicalIndex{
		ids:    []int{1, 2, 3},
		scores: []float64{0, 2, 4},
	}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, lexical, retrievalCatalog())

	got, err := retriever.Search(context.Background(), "java", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("candidates = %d, want 3", len(got))
	}

	// Vector similarity is 1/(1+d); lexical scores min-max normalize to
	// 0, 0.5 and 1. Combined = 0.6*vector + 0.4*lexical.
	want := []struct {
		id    int
		score float64
	}{
		{1, 0.6 * 1.0},
		{2, 0.6*0.5 + 0.4*0.5},
		{3, 0.4 * 1.0},
	}
	for i, w := range want {
		if got[i].Assessment.ID != w.id {
			t.Fatalf("position %d: id = %d, want %d", i, got[i].Assessment.ID, w.id)
		}
		if math.Abs(got[i].Score-w.score) > scoreTolerance {
			t.Fatalf("position %d: score = %f, want %f", i, got[i].Score, w.score)
		}
	}
}

func TestSearchBreaksScoreTiesByAscendingID(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{
		{ID: 4, Distance: 1},
		{ID: 2, Distance: 1},
	}}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	got, err := retriever.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].Assessment.ID != 2 || got[1].Assessment.ID != 4 {
		t.Fatalf("tie order = [%d %d], want [2 4]", got[0].Assessment.ID, got[1].Assessment.ID)
	}
}

func TestSearchIgnoresHitsOutsideCatalog(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{
		{ID: 999, Distance: 0},
		{ID: 1, Distance: 1},
	}}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	got, err := retriever.Search(context.Background(), "java", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Assessment.ID != 1 {
		t.Fatalf("got %d candidates, want only id 1", len(got))
	}
}

func TestSearchPropagatesEmbedderError(t *testing.T) {
	retriever := NewHybridRetriever(
		&fakeEmbedder{err: errors.New("embed down")},
		&fakeVectorIndex{},
		&fakeLexicalIndex{},
		retrievalCatalog(),
	)

	if _, err := retriever.Search(context.Background(), "java", 3); err == nil {
		t.Fatal("expected error from embedder")
	}
}

func TestRetrieveRequestsHeadroom(t *testing.T) {
	vector := &fakeVectorIndex{}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	if _, err := retriever.Retrieve(context.Background(), "java", 2, domain.RetrievalFilter{}); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// rawK = max(3k, k+10) = 12 for k=2; Search doubles it for each side.
	if vector.requested != 24 {
		t.Fatalf("vector search k = %d, want 24", vector.requested)
	}
}

func TestRetrieveReturnsNothingForNonPositiveK(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{{ID: 1, Distance: 0.1}}}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	for _, k := range []int{0, -1} {
		got, err := retriever.Retrieve(context.Background(), "java", k, domain.RetrievalFilter{})
		if err != nil {
			t.Fatalf("Retrieve k=%d: %v", k, err)
		}
		if len(got) != 0 {
			t.Fatalf("k=%d: candidates = %d, want 0", k, len(got))
		}
	}
	if vector.requested != 0 {
		t.Fatalf("vector search called with k = %d, want no call", vector.requested)
	}
}

func TestRetrieveAppliesDurationFilters(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{
		{ID: 1, Distance: 0.1}, // 45 min
		{ID: 2, Distance: 0.2}, // 30 min
		{ID: 3, Distance: 0.3}, // 25 min
		{ID: 5, Distance: 0.4}, // unknown duration
	}}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	minDur, maxDur := 30, 40
	got, err := retriever.Retrieve(context.Background(), "java", 10, domain.RetrievalFilter{
		MinDuration: &minDur,
		MaxDuration: &maxDur,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	// 45 exceeds max, 25 falls below min; unknown duration is never filtered.
	gotIDs := candidateIDs(got)
	wantIDs := []int{2, 5}
	if !equalIntSlices(gotIDs, wantIDs) {
		t.Fatalf("ids = %v, want %v", gotIDs, wantIDs)
	}
}

func TestRetrieveFiltersByPreferredTestTypes(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{
		{ID: 1, Distance: 0.1},
		{ID: 3, Distance: 0.2},
		{ID: 4, Distance: 0.3},
	}}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	got, err := retriever.Retrieve(context.Background(), "behavioral", 10, domain.RetrievalFilter{
		PreferredTestTypes: []string{"Personality & Behavior", "Competencies"},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	gotIDs := candidateIDs(got)
	wantIDs := []int{3, 4}
	if !equalIntSlices(gotIDs, wantIDs) {
		t.Fatalf("ids = %v, want %v", gotIDs, wantIDs)
	}
}

func TestRetrieveTruncatesAtK(t *testing.T) {
	vector := &fakeVectorIndex{hits: []domain.VectorHit{
		{ID: 1, Distance: 0.1},
		{ID: 2, Distance: 0.2},
		{ID: 3, Distance: 0.3},
	}}
	retriever := NewHybridRetriever(&fakeEmbedder{queryVector: []float32{1}}, vector, &fakeLexicalIndex{}, retrievalCatalog())

	got, err := retriever.Retrieve(context.Background(), "java", 2, domain.RetrievalFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].Assessment.ID != 1 || got[1].Assessment.ID != 2 {
		t.Fatalf("ids = %v, want [1 2]", candidateIDs(got))
	}
}

func candidateIDs(candidates []domain.ScoredCandidate) []int {
	ids := make([]int, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Assessment.ID)
	}
	return ids
}

func equalIntSlices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
