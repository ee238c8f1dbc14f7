package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	rebuildTotal    *prometheus.CounterVec
	rebuildDuration *prometheus.HistogramVec
	rebuildInFlight prometheus.Gauge
	indexedCount    *prometheus.GaugeVec
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	rebuildTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irs",
			Subsystem: "worker",
			Name:      "index_rebuild_total",
			Help:      "Total index rebuilds by status.",
		},
		[]string{"service", "status"},
	)
	rebuildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irs",
			Subsystem: "worker",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds by status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	rebuildInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "irs",
			Subsystem: "worker",
			Name:      "index_rebuild_in_flight",
			Help:      "Number of in-flight index rebuilds.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexedCount := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "irs",
			Subsystem: "worker",
			Name:      "indexed_assessments",
			Help:      "Assessments indexed by the last successful rebuild.",
		},
		[]string{"service"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irs",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between catalog update and rebuild start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(rebuildTotal, rebuildDuration, rebuildInFlight, indexedCount, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		rebuildTotal:    rebuildTotal,
		rebuildDuration: rebuildDuration,
		rebuildInFlight: rebuildInFlight,
		indexedCount:    indexedCount,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRebuild() {
	m.rebuildInFlight.Inc()
}

func (m *WorkerMetrics) FinishRebuild(service string, indexed int, duration time.Duration, err error) {
	m.rebuildInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.rebuildTotal.WithLabelValues(service, status).Inc()
	m.rebuildDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.indexedCount.WithLabelValues(service).Set(float64(indexed))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
