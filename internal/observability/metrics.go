package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeNoop     = "noop"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics owns a private registry so several apps (or tests) can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	socialOps *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dwitter_social_operations_total",
		Help: "Account and follow operations by outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(ops)
	return &Metrics{Registry: reg, socialOps: ops}
}

func (m *Metrics) IncSocialOp(op, outcome string) {
	if m == nil || m.socialOps == nil {
		return
	}
	m.socialOps.WithLabelValues(op, outcome).Inc()
}

// SocialOps exposes the counter for inspection.
func (m *Metrics) SocialOps() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.socialOps
}
