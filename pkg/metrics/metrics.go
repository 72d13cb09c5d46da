// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is registered on its own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	AuthFailures          *prometheus.CounterVec
	ValidationFailures    *prometheus.CounterVec
	ConfirmationDowngrade prometheus.Counter
	ConfirmationDecisions *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Rejected bearer tokens by reason",
		}, []string{"reason"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_validation_failures_total",
			Help: "Profile and vehicle writes rejected by an invariant, by reason",
		}, []string{"reason"}),
		ConfirmationDowngrade: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "driver_confirmation_downgrades_total",
			Help: "Driver profiles unconfirmed because their address was edited",
		}),
		ConfirmationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "driver_confirmation_decisions_total",
			Help: "Confirmation decisions applied from the review workflow",
		}, []string{"confirmed"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthFailures,
		m.ValidationFailures,
		m.ConfirmationDowngrade,
		m.ConfirmationDecisions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncAuthFailure records a rejected token.
func (m *Metrics) IncAuthFailure(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// IncValidationFailure records a write rejected by an invariant.
func (m *Metrics) IncValidationFailure(reason string) {
	m.ValidationFailures.WithLabelValues(reason).Inc()
}

// IncDowngrade records a driver losing confirmation on address edit.
func (m *Metrics) IncDowngrade() {
	m.ConfirmationDowngrade.Inc()
}

// IncDecision records an applied confirmation decision.
func (m *Metrics) IncDecision(confirmed bool) {
	label := "false"
	if confirmed {
		label = "true"
	}
	m.ConfirmationDecisions.WithLabelValues(label).Inc()
}
