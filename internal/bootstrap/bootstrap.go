package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/config"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/ports"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/usecase"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/index/bm25"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/llm/groq"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/queue/nats"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/repository/postgres"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/vector/qdrant"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/observability/metrics"
)

// App wires the API process: catalog snapshot, both indices, the LLM
// strategies and the recommendation pipeline.
type App struct {
	Config config.Config

	Catalog     *domain.Catalog
	Recommender ports.Recommender
	Metrics     *metrics.HTTPServerMetrics

	closeFn func()
}

// pipelineMetrics routes pipeline stage outcomes into the process counters.
type pipelineMetrics struct {
	metrics *metrics.HTTPServerMetrics
	service string
}

func (p *pipelineMetrics) ExtractionFallback() { p.metrics.RecordExtractionFallback(p.service) }
func (p *pipelineMetrics) ScoringFallback()    { p.metrics.RecordScoringFallback(p.service) }
func (p *pipelineMetrics) BalanceApplied(strategy string) {
	p.metrics.RecordBalanceApplied(p.service, strategy)
}
func (p *pipelineMetrics) EmptyResult()  { p.metrics.RecordEmptyResult(p.service) }
func (p *pipelineMetrics) PaddedResult() { p.metrics.RecordPaddedResult(p.service) }

func NewAPI(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewAssessmentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	assessments, err := repo.LoadAll(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(assessments) == 0 {
		_ = db.Close()
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "bootstrap",
			fmt.Errorf("catalog is empty, run the loader first"))
	}
	catalog := domain.NewCatalog(assessments)

	// The lexical corpus is built once per process from the same texts the
	// vector index was built from.
	all := catalog.All()
	ids := make([]int, 0, len(all))
	texts := make([]string, 0, len(all))
	for _, a := range all {
		ids = append(ids, a.ID)
		texts = append(texts, a.EmbeddingText())
	}
	lexical, err := bm25.New(ids, texts)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build lexical index: %w", err)
	}

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	indexed, err := vectorDB.Count(ctx)
	if err != nil {
		_ = db.Close()
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "bootstrap",
			fmt.Errorf("vector index check: %w", err))
	}
	if indexed == 0 {
		_ = db.Close()
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "bootstrap",
			fmt.Errorf("vector collection %q is empty, run the index worker first", cfg.QdrantCollection))
	}
	if indexed != catalog.Len() {
		slog.Warn("catalog_index_count_mismatch", "catalog", catalog.Len(), "indexed", indexed)
	}

	groqClient := groq.New(groq.Config{
		APIKey:     cfg.GroqAPIKey,
		BaseURL:    cfg.GroqBaseURL,
		ChatModel:  cfg.GroqModel,
		EmbedModel: cfg.GroqEmbedModel,
	})
	embedder := groq.NewEmbedder(groqClient)

	ruleAnalyzer := usecase.NewRuleAnalyzer()
	var analyzer usecase.QueryAnalyzer = ruleAnalyzer
	var scorer ports.RelevanceScorer
	if cfg.GroqAPIKey != "" {
		analyzer = usecase.NewLLMAnalyzer(
			groq.NewExtractor(groqClient),
			ruleAnalyzer,
			time.Duration(cfg.LLMTimeoutSecs)*time.Second,
		)
		scorer = groq.NewScorer(groqClient)
	} else {
		slog.Warn("llm_disabled", "reason", "no api key, using rule-based analysis and scoring")
	}

	retriever := usecase.NewHybridRetriever(embedder, vectorDB, lexical, catalog)
	reranker := usecase.NewReranker(scorer)
	balancer := usecase.NewBalancer(usecase.BalancerConfig{
		Strategy:           cfg.BalanceStrategy,
		MaxRecommendations: cfg.MaxRecommendations,
	})

	recommendUC := usecase.NewRecommendUseCase(analyzer, retriever, reranker, balancer, usecase.RecommendConfig{
		TopKRetrieve:       cfg.TopKRetrieve,
		MinRecommendations: cfg.MinRecommendations,
		MaxRecommendations: cfg.MaxRecommendations,
	})

	serverMetrics := metrics.NewHTTPServerMetrics(service)
	recommendUC.SetObserver(&pipelineMetrics{metrics: serverMetrics, service: service})

	return &App{
		Config:      cfg,
		Catalog:     catalog,
		Recommender: recommendUC,
		Metrics:     serverMetrics,
		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// WorkerApp wires the index builder process: queue subscription plus the
// reindex use case.
type WorkerApp struct {
	Config config.Config

	Queue     *nats.Queue
	ReindexUC ports.IndexBuilder

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config) (*WorkerApp, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewAssessmentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	groqClient := groq.New(groq.Config{
		APIKey:     cfg.GroqAPIKey,
		BaseURL:    cfg.GroqBaseURL,
		ChatModel:  cfg.GroqModel,
		EmbedModel: cfg.GroqEmbedModel,
	})
	embedder := groq.NewEmbedder(groqClient)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	reindexUC := usecase.NewReindexUseCase(repo, embedder, vectorDB, cfg.IndexBatchSize)

	return &WorkerApp{
		Config:    cfg,
		Queue:     queue,
		ReindexUC: reindexUC,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *WorkerApp) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// LoaderApp wires the catalog loader process: the catalog store plus the
// queue used to announce the update.
type LoaderApp struct {
	Config config.Config

	Repo  ports.AssessmentRepository
	Queue *nats.Queue

	closeFn func()
}

func NewLoader(ctx context.Context, cfg config.Config) (*LoaderApp, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewAssessmentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	return &LoaderApp{
		Config: cfg,
		Repo:   repo,
		Queue:  queue,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *LoaderApp) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
