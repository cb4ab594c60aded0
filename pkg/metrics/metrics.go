// Package metrics provides the Prometheus instrumentation for the rota
// analytics service: engine operation counters and latencies, HTTP request
// metrics, and dataset snapshot gauges.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the metric vectors. Create one per process with New.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	engineOps     *prometheus.CounterVec
	engineLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	datasetRows     prometheus.Gauge
	datasetLoadedAt prometheus.Gauge
}

// New creates a Manager and registers its vectors on the configured
// registry (the default registerer unless WithRegistry is given).
func New(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rota",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(prometheus.DefaultRegisterer)
	if m.registry != nil {
		factory = promauto.With(m.registry)
	}

	m.engineOps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engine_operations_total",
		Help:      "Engine operations by name and outcome.",
	}, []string{"operation", "success"})
	m.engineLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engine_operation_seconds",
		Help:      "Engine operation latency in seconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	m.httpLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"route"})

	m.datasetRows = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_rows",
		Help:      "Rows in the active dataset snapshot.",
	})
	m.datasetLoadedAt = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_loaded_timestamp_seconds",
		Help:      "Unix time the active snapshot was installed.",
	})
	return m
}

// ObserveEngineOp records one engine operation.
func (m *Manager) ObserveEngineOp(operation string, d time.Duration, success bool) {
	m.engineOps.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	m.engineLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (m *Manager) ObserveHTTP(route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

// SetDataset updates the snapshot gauges after a reload.
func (m *Manager) SetDataset(rows int, loadedAt time.Time) {
	m.datasetRows.Set(float64(rows))
	m.datasetLoadedAt.Set(float64(loadedAt.Unix()))
}

// Handler exposes the metrics endpoint for the configured registry.
func (m *Manager) Handler() http.Handler {
	if m.registry != nil {
		return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
