package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/ports"
)

// ReindexUseCase rebuilds the vector index from the persisted catalog:
// load rows, compose embedding texts, embed in batches, recreate the
// collection and upsert every vector.
type ReindexUseCase struct {
	repo      ports.AssessmentRepository
	embedder  ports.Embedder
	vector    ports.VectorIndex
	batchSize int
}

func NewReindexUseCase(
	repo ports.AssessmentRepository,
	embedder ports.Embedder,
	vector ports.VectorIndex,
	batchSize int,
) *ReindexUseCase {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &ReindexUseCase{
		repo:      repo,
		embedder:  embedder,
		vector:    vector,
		batchSize: batchSize,
	}
}

// Rebuild returns the number of assessments indexed.
func (uc *ReindexUseCase) Rebuild(ctx context.Context) (int, error) {
	assessments, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	if len(assessments) == 0 {
		return 0, fmt.Errorf("catalog is empty, nothing to index")
	}

	recreated := false
	indexed := 0
	for start := 0; start < len(assessments); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(assessments) {
			end = len(assessments)
		}
		batch := assessments[start:end]

		texts := make([]string, 0, len(batch))
		ids := make([]int, 0, len(batch))
		for _, a := range batch {
			texts = append(texts, a.EmbeddingText())
			ids = append(ids, a.ID)
		}

		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return indexed, fmt.Errorf("embed batch at %d: got %d vectors for %d texts", start, len(vectors), len(batch))
		}

		if !recreated {
			if err := uc.vector.Recreate(ctx, len(vectors[0])); err != nil {
				return indexed, fmt.Errorf("recreate vector index: %w", err)
			}
			recreated = true
		}

		if err := uc.vector.Upsert(ctx, ids, vectors); err != nil {
			return indexed, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
		indexed += len(batch)
		slog.Info("index_batch_upserted", "from", start, "count", len(batch))
	}

	return indexed, nil
}
