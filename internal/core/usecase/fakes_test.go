package usecase

import (
	"context"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

type fakeEmbedder struct {
	queryVector []float32
	err         error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.queryVector
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queryVector, nil
}

type fakeVectorIndex struct {
	hits      []domain.VectorHit
	err       error
	requested int

	recreatedSize int
	recreateCalls int
	upsertedIDs   []int
	upsertErr     error
}

func (f *fakeVectorIndex) Search(_ context.Context, _ []float32, k int) ([]domain.VectorHit, error) {
	f.requested = k
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeVectorIndex) Recreate(_ context.Context, vectorSize int) error {
	f.recreatedSize = vectorSize
	f.recreateCalls++
	return nil
}

func (f *fakeVectorIndex) Upsert(_ context.Context, ids []int, _ [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertedIDs = append(f.upsertedIDs, ids...)
	return nil
}

func (f *fakeVectorIndex) Count(_ context.Context) (int, error) { return len(f.hits), nil }

type fakeLexicalIndex struct {
	ids    []int
	scores []float64
}

func (f *fakeLexicalIndex) Scores(_ []string) []float64 { return f.scores }

func (f *fakeLexicalIndex) DocumentIDs() []int { return f.ids }

type fakeExtractor struct {
	constraints domain.QueryConstraints
	err         error
	calls       int
}

func (f *fakeExtractor) AnalyzeQuery(_ context.Context, _ string) (domain.QueryConstraints, error) {
	f.calls++
	if f.err != nil {
		return domain.QueryConstraints{}, f.err
	}
	return f.constraints, nil
}

type fakeScorer struct {
	scores map[int]float64
	err    error
}

func (f *fakeScorer) ScoreRelevance(_ context.Context, _ string, a domain.Assessment) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[a.ID], nil
}

type fakeObserver struct {
	extractionFallbacks int
	scoringFallbacks    int
	balanceStrategies   []string
	emptyResults        int
	paddedResults       int
}

func (f *fakeObserver) ExtractionFallback() { f.extractionFallbacks++ }

func (f *fakeObserver) ScoringFallback() { f.scoringFallbacks++ }

func (f *fakeObserver) BalanceApplied(strategy string) {
	f.balanceStrategies = append(f.balanceStrategies, strategy)
}

func (f *fakeObserver) EmptyResult() { f.emptyResults++ }

func (f *fakeObserver) PaddedResult() { f.paddedResults++ }
