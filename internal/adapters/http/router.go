package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/ports"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/observability/metrics"
)

const (
	serviceVersion       = "1.0.0"
	maxQueryLength       = 5000
	maxDescriptionLength = 500
)

type Router struct {
	recommender ports.Recommender
	catalog     *domain.Catalog
	metrics     *metrics.HTTPServerMetrics
	service     string
}

func NewRouter(recommender ports.Recommender, catalog *domain.Catalog, m *metrics.HTTPServerMetrics, service string) *Router {
	return &Router{
		recommender: recommender,
		catalog:     catalog,
		metrics:     m,
		service:     service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/recommend", rt.recommend)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

type healthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	Version          string `json:"version"`
	TotalAssessments int    `json:"total_assessments"`
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		Version:          serviceVersion,
		TotalAssessments: rt.catalog.Len(),
	})
}

type recommendRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type assessmentResponse struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	AdaptiveSupport string   `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	TestType        []string `json:"test_type"`
	Deviation       int      `json:"deviation"`
}

type recommendResponse struct {
	Query                  string               `json:"query"`
	RecommendedAssessments []assessmentResponse `json:"recommended_assessments"`
	Count                  int                  `json:"count"`
	ProcessingTimeMillis   float64              `json:"processing_time_ms"`
}

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	start := time.Now()
	recommendations, err := rt.recommender.Recommend(r.Context(), query, req.K)
	elapsed := time.Since(start)

	if rt.metrics != nil {
		rt.metrics.RecordRecommendation(rt.service, len(recommendations), elapsed, err)
	}
	if err != nil {
		slog.Error("recommend_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	items := make([]assessmentResponse, 0, len(recommendations))
	for _, a := range recommendations {
		items = append(items, toAssessmentResponse(a))
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Query:                  query,
		RecommendedAssessments: items,
		Count:                  len(items),
		ProcessingTimeMillis:   float64(elapsed.Microseconds()) / 1000.0,
	})
}

func toAssessmentResponse(a domain.Assessment) assessmentResponse {
	description := truncateRunes(a.Description, maxDescriptionLength)
	return assessmentResponse{
		URL:             a.URL,
		Name:            a.Name,
		AdaptiveSupport: a.AdaptiveSupport,
		Description:     description,
		Duration:        a.Duration,
		RemoteSupport:   a.RemoteSupport,
		TestType:        a.TestType,
		Deviation:       a.Deviation,
	}
}

// truncateRunes cuts s to at most max characters on a rune boundary, so a
// multibyte description never ends in a broken encoding.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
