package ports

import (
	"context"
	"time"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

// AssessmentRepository reads and replaces the persisted catalog.
type AssessmentRepository interface {
	// LoadAll returns every parseable catalog record ordered by id. Rows that
	// fail to parse are skipped with a logged warning, never an error.
	LoadAll(ctx context.Context) ([]domain.Assessment, error)
	ReplaceAll(ctx context.Context, assessments []domain.Assessment) error
}

// Embedder builds vectors for catalog texts and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the pre-built nearest-neighbour index over embedded
// assessment text. Read-only at serving time.
type VectorIndex interface {
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.VectorHit, error)
	Recreate(ctx context.Context, vectorSize int) error
	Upsert(ctx context.Context, ids []int, vectors [][]float32) error
	Count(ctx context.Context) (int, error)
}

// LexicalIndex scores the whole corpus against a tokenized query. Scores are
// aligned by position to DocumentIDs.
type LexicalIndex interface {
	Scores(tokens []string) []float64
	DocumentIDs() []int
}

// ConstraintExtractor turns a free-text query into structured constraints
// using an external language-model service. Any failure (network, timeout,
// malformed response) is returned as an error; the caller decides fallback.
type ConstraintExtractor interface {
	AnalyzeQuery(ctx context.Context, query string) (domain.QueryConstraints, error)
}

// RelevanceScorer is the external per-candidate relevance oracle. The
// returned value is overall relevance in [0,1].
type RelevanceScorer interface {
	ScoreRelevance(ctx context.Context, query string, assessment domain.Assessment) (float64, error)
}

// CatalogQueue publishes/consumes catalog-updated events for index rebuilds.
// The handler receives the event's publish time; a zero time means the
// publisher did not stamp the event.
type CatalogQueue interface {
	PublishCatalogUpdated(ctx context.Context) error
	SubscribeCatalogUpdated(ctx context.Context, handler func(ctx context.Context, published time.Time) error) error
}
