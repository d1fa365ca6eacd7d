// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package login

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of the attempts counter.
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Metrics contains the Prometheus counters of the login flow.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AttemptsTotal      *prometheus.CounterVec
	AuditFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers the login metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_login_attempts_total",
				Help: "Total number of unified login attempts by guard and outcome",
			},
			[]string{"guard", "outcome"},
		),
		AuditFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gatehouse_login_audit_failures_total",
				Help: "Total number of login attempts that could not be handed to the audit trail",
			},
		),
	}

	reg.MustRegister(m.AttemptsTotal)
	reg.MustRegister(m.AuditFailuresTotal)

	return m
}

func (m *Metrics) attempt(guard, outcome string) {
	if m == nil {
		return
	}
	if guard == "" {
		guard = "none"
	}
	m.AttemptsTotal.WithLabelValues(guard, outcome).Inc()
}

func (m *Metrics) auditFailed() {
	if m == nil {
		return
	}
	m.AuditFailuresTotal.Inc()
}
