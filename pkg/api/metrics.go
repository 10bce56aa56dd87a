package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusFull    = "full"
	statusEmpty   = "empty"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Queue operation metrics
	queueOperationsTotal   *prometheus.CounterVec
	queueOperationDuration *prometheus.HistogramVec
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueBusyIterations    prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mmq_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mmq_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mmq_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		queueOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mmq_queue_operations_total",
				Help: "Total number of queue operations",
			},
			[]string{"operation", "status"},
		),

		queueOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mmq_queue_operation_duration_seconds",
				Help:    "Queue operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		queueSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "mmq_queue_size",
				Help: "Current number of elements in the queue",
			},
		),

		queueCapacity: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "mmq_queue_capacity",
				Help: "Maximum number of elements the queue can hold",
			},
		),

		queueBusyIterations: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "mmq_queue_busy_iterations",
				Help: "Spins on the enqueue publication barrier since open",
			},
		),

		authRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mmq_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordQueueOperation records a queue operation with its outcome.
func (m *Metrics) RecordQueueOperation(operation, status string, duration time.Duration) {
	m.queueOperationsTotal.WithLabelValues(operation, status).Inc()
	m.queueOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateQueueStats updates the queue gauges.
func (m *Metrics) UpdateQueueStats(size int64, capacity int, busyIterations int64) {
	m.queueSize.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
	m.queueBusyIterations.Set(float64(busyIterations))
}

// RecordAuthRequest records an authentication request.
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics.
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Wrap the response writer to capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
