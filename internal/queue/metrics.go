package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the approval queue.
type Metrics struct {
	Enqueued *prometheus.CounterVec
	Overdue  *prometheus.GaugeVec
}

// NewMetrics creates and registers the queue metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Enqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cattel_queue_enqueued_total",
			Help: "Total registrations enqueued for approval by region",
		}, []string{"region"}),

		Overdue: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cattel_queue_overdue_records",
			Help: "Pending registrations past the approval window by region",
		}, []string{"region"}),
	}
}

// IncEnqueued records one enqueued registration.
func (m *Metrics) IncEnqueued(region string) {
	if m != nil {
		m.Enqueued.WithLabelValues(region).Inc()
	}
}

// SetOverdue records the current overdue count for a region.
func (m *Metrics) SetOverdue(region string, n int) {
	if m != nil {
		m.Overdue.WithLabelValues(region).Set(float64(n))
	}
}
