package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the platform-level HTTP metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
}

// New creates and registers the platform metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cattel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method and path",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),

		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cattel_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		}, []string{"method", "path", "status"}),
	}
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
		m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	}
}
