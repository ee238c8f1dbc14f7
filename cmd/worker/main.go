package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/bootstrap"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/config"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/observability/logging"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/observability/metrics"
)

const serviceName = "index-worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeCatalogUpdated(ctx, func(handlerCtx context.Context, published time.Time) error {
		rebuildCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		if !published.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(published))
		}
		workerMetrics.StartRebuild()
		start := time.Now()
		indexed, err := app.ReindexUC.Rebuild(rebuildCtx)
		workerMetrics.FinishRebuild(serviceName, indexed, time.Since(start), err)
		if err != nil {
			return err
		}

		slog.Info("index_rebuilt", "indexed", indexed, "duration_ms", time.Since(start).Milliseconds())
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
