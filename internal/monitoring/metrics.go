package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry
// so multiple collectors can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Client operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Session mirror metrics
	SessionsMirrored prometheus.Gauge
	SessionsExpired  prometheus.Counter

	// Export metrics
	ExportBytes prometheus.Counter

	// HTTP server metrics (stub backend)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	startTime time.Time
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantquery_operations_total",
				Help: "Total number of client operations",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantquery_operation_duration_seconds",
				Help:    "Client operation duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),

		SessionsMirrored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantquery_sessions_mirrored",
				Help: "Number of locally mirrored sessions",
			},
		),
		SessionsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plantquery_sessions_expired_total",
				Help: "Total number of sessions removed by the idle sweep",
			},
		),

		ExportBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plantquery_export_bytes_total",
				Help: "Total bytes of GraphML exports written",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantquery_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantquery_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "plantquery_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry for exposition and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler for this collector.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordOperation records one client operation outcome.
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetSessionsMirrored sets the mirrored session count.
func (m *Metrics) SetSessionsMirrored(count int) {
	m.SessionsMirrored.Set(float64(count))
}

// IncSessionsExpired increments the expired session counter.
func (m *Metrics) IncSessionsExpired() {
	m.SessionsExpired.Inc()
}

// AddExportBytes adds to the exported byte counter.
func (m *Metrics) AddExportBytes(n int64) {
	m.ExportBytes.Add(float64(n))
}
