// Package metrics exposes the Prometheus metrics of the member subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the member-facing Prometheus collectors.
type Metrics struct {
	Registrations        *prometheus.CounterVec
	Qualifications       prometheus.Counter
	TxRetries            prometheus.Counter
	Compensations        prometheus.Counter
	CompensationFailures prometheus.Counter
}

// New creates and registers all member metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "downline_registrations_total",
			Help: "Registrations by outcome.",
		}, []string{"outcome"}),
		Qualifications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "downline_qualifications_total",
			Help: "One-way qualification transitions fired.",
		}),
		TxRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "downline_registration_tx_retries_total",
			Help: "Registration transactions retried after a serialization conflict.",
		}),
		Compensations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "downline_identity_compensations_total",
			Help: "Credential allocations rolled back after a failed registration write.",
		}),
		CompensationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "downline_identity_compensation_failures_total",
			Help: "Compensating credential deletes that failed and require repair. Alert on any increase.",
		}),
	}
}

// RecordRegistration counts one registration attempt by outcome.
func (m *Metrics) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

// RecordQualifications counts n fired qualification transitions.
func (m *Metrics) RecordQualifications(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Qualifications.Add(float64(n))
}

// RecordCompensation counts a compensating credential delete.
func (m *Metrics) RecordCompensation(failed bool) {
	if m == nil {
		return
	}
	m.Compensations.Inc()
	if failed {
		m.CompensationFailures.Inc()
	}
}
