package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/bootstrap"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/config"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/observability/logging"
)

const serviceName = "catalog-loader"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	path := flag.String("catalog", cfg.CatalogPath, "path to the scraped catalog JSON file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assessments, skipped, err := loadCatalogFile(*path)
	if err != nil {
		log.Fatalf("load catalog file: %v", err)
	}
	if len(assessments) == 0 {
		log.Fatalf("catalog file %s contains no usable records", *path)
	}

	app, err := bootstrap.NewLoader(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if err := app.Repo.ReplaceAll(ctx, assessments); err != nil {
		log.Fatalf("replace catalog: %v", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.Queue.PublishCatalogUpdated(publishCtx); err != nil {
		log.Fatalf("publish catalog update: %v", err)
	}

	slog.Info("catalog_loaded", "loaded", len(assessments), "skipped", skipped, "path", *path)
}

// loadCatalogFile parses the scraped catalog. Unusable records are skipped
// with a warning so one bad scrape does not block the whole import.
func loadCatalogFile(path string) ([]domain.Assessment, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var records []domain.Assessment
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, 0, fmt.Errorf("parse catalog json: %w", err)
	}

	assessments := make([]domain.Assessment, 0, len(records))
	skipped := 0
	for i, record := range records {
		if reason := validateRecord(record); reason != "" {
			slog.Warn("skip_catalog_record", "index", i, "id", record.ID, "reason", reason)
			skipped++
			continue
		}
		assessments = append(assessments, record)
	}
	return assessments, skipped, nil
}

func validateRecord(a domain.Assessment) string {
	switch {
	case a.ID <= 0:
		return "missing id"
	case strings.TrimSpace(a.Name) == "":
		return "missing name"
	case strings.TrimSpace(a.URL) == "":
		return "missing url"
	case a.Duration < 0:
		return "negative duration"
	case len(a.TestType) == 0:
		return "missing test_type"
	default:
		return ""
	}
}
