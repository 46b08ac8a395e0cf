package registration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks lifecycle activity. All methods are nil-safe so the
// service can run without metrics in tests.
type Metrics struct {
	Submissions *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Denied      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cattel_registration_submissions_total",
			Help: "Cattle registration submissions by region and outcome",
		}, []string{"region", "outcome"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cattel_registration_transitions_total",
			Help: "Lifecycle transitions applied, by action",
		}, []string{"action"}),
		Denied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cattel_registration_denied_total",
			Help: "Lifecycle actions denied by authorization policy, by action",
		}, []string{"action"}),
	}
}

func (m *Metrics) ObserveSubmission(region, outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(region, outcome).Inc()
}

func (m *Metrics) ObserveTransition(action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveDenied(action string) {
	if m == nil {
		return
	}
	m.Denied.WithLabelValues(action).Inc()
}
