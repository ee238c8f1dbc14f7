package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	recommendRequestsTotal  *prometheus.CounterVec
	recommendedCount        *prometheus.HistogramVec
	recommendDuration       *prometheus.HistogramVec
	extractionFallbackTotal *prometheus.CounterVec
	scoringFallbackTotal    *prometheus.CounterVec
	balanceAppliedTotal     *prometheus.CounterVec
	emptyResultsTotal       *prometheus.CounterVec
	paddedResultsTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "irs",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	recommendRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "recommend_requests_total",
			Help:      "Total completed recommendation requests by status.",
		},
		[]string{"service", "status"},
	)
	recommendedCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "recommended_assessments",
			Help:      "Distribution of assessments returned per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 7, 10},
		},
		[]string{"service"},
	)
	recommendDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "recommend_duration_seconds",
			Help:      "End-to-end recommendation pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	extractionFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "extraction_fallback_total",
			Help:      "Total query analyses that fell back to rule-based extraction.",
		},
		[]string{"service"},
	)
	scoringFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "scoring_fallback_total",
			Help:      "Total rerank passes that fell back to rule-based scoring.",
		},
		[]string{"service"},
	)
	balanceAppliedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "balance_applied_total",
			Help:      "Total requests where category balancing reordered results.",
		},
		[]string{"service", "strategy"},
	)
	emptyResultsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "empty_results_total",
			Help:      "Total requests where retrieval produced no candidates.",
		},
		[]string{"service"},
	)
	paddedResultsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "pipeline",
			Name:      "padded_results_total",
			Help:      "Total requests padded from the retrieval ranking to reach the minimum.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		recommendRequestsTotal,
		recommendedCount,
		recommendDuration,
		extractionFallbackTotal,
		scoringFallbackTotal,
		balanceAppliedTotal,
		emptyResultsTotal,
		paddedResultsTotal,
	)

	return &HTTPServerMetrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		recommendRequestsTotal:  recommendRequestsTotal,
		recommendedCount:        recommendedCount,
		recommendDuration:       recommendDuration,
		extractionFallbackTotal: extractionFallbackTotal,
		scoringFallbackTotal:    scoringFallbackTotal,
		balanceAppliedTotal:     balanceAppliedTotal,
		emptyResultsTotal:       emptyResultsTotal,
		paddedResultsTotal:      paddedResultsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordRecommendation(service string, resultCount int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.recommendRequestsTotal.WithLabelValues(service, status).Inc()
	if err == nil {
		m.recommendedCount.WithLabelValues(service).Observe(float64(resultCount))
	}
	m.recommendDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordExtractionFallback(service string) {
	m.extractionFallbackTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordScoringFallback(service string) {
	m.scoringFallbackTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordBalanceApplied(service, strategy string) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.balanceAppliedTotal.WithLabelValues(service, strategy).Inc()
}

func (m *HTTPServerMetrics) RecordEmptyResult(service string) {
	m.emptyResultsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordPaddedResult(service string) {
	m.paddedResultsTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
