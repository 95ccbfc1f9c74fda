package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the auth-facing Prometheus collectors.
type Metrics struct {
	Logins             *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec
	Refreshes          *prometheus.CounterVec
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quantauth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		TokenVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quantauth",
			Name:      "token_verifications_total",
			Help:      "Access token verifications by result.",
		}, []string{"result"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quantauth",
			Name:      "token_refreshes_total",
			Help:      "Refresh rotations by outcome, including detected reuse.",
		}, []string{"outcome"}),
	}
}

// ObserveVerification returns a callback suitable for the auth middleware.
func (m *Metrics) ObserveVerification() func(result string) {
	return func(result string) {
		m.TokenVerifications.WithLabelValues(result).Inc()
	}
}
