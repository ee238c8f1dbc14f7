package bm25

import (
	"testing"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(
		[]int{1, 2, 3},
		[]string{
			"java programming assessment for developers",
			"personality and behavior profile for teams",
			"sql database knowledge test java",
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return idx
}

func TestScoresRankMatchingDocumentsHigher(t *testing.T) {
	idx := buildTestIndex(t)

	scores := idx.Scores(Tokenize("java programming"))
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[0] <= scores[1] {
		t.Fatalf("expected doc 1 to outrank doc 2: %v", scores)
	}
	if scores[1] != 0 {
		t.Fatalf("expected zero score for non-matching doc, got %f", scores[1])
	}
	// "java" appears in docs 1 and 3; doc 1 also matches "programming".
	if scores[0] <= scores[2] {
		t.Fatalf("expected doc 1 to outrank doc 3: %v", scores)
	}
}

func TestScoresUnknownTokensScoreZero(t *testing.T) {
	idx := buildTestIndex(t)

	scores := idx.Scores(Tokenize("quantum chromodynamics"))
	for i, s := range scores {
		if s != 0 {
			t.Fatalf("expected zero score at %d, got %f", i, s)
		}
	}
}

func TestScoresAlignWithDocumentIDs(t *testing.T) {
	idx := buildTestIndex(t)

	ids := idx.DocumentIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected document ids: %v", ids)
	}
	if len(idx.Scores(nil)) != len(ids) {
		t.Fatalf("score array not aligned to ids")
	}
}

func TestNewRejectsMisalignedInput(t *testing.T) {
	if _, err := New([]int{1}, []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for misaligned input")
	}
	if _, err := New(nil, nil); err == nil {
		t.Fatalf("expected error for empty corpus")
	}
}

func TestCommonTermGetsIDFFloorNotNegative(t *testing.T) {
	idx, err := New(
		[]int{1, 2, 3, 4},
		[]string{"test one", "test two", "test three", "test four rare"},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// "test" appears in every document; raw idf would be negative.
	scores := idx.Scores([]string{"test"})
	for i, s := range scores {
		if s < 0 {
			t.Fatalf("expected non-negative score at %d, got %f", i, s)
		}
	}
}
