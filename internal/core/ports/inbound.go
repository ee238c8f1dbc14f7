package ports

import (
	"context"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

// Recommender is the inbound contract for the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, query string, k int) ([]domain.Assessment, error)
}

// IndexBuilder is the inbound contract for asynchronous index rebuilds.
type IndexBuilder interface {
	Rebuild(ctx context.Context) (int, error)
}
