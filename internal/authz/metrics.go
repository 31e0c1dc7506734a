package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains access policy metrics.
type Metrics struct {
	registerer prometheus.Registerer

	// rulesRegistered counts registered access rule bindings.
	rulesRegistered *prometheus.CounterVec

	// fallbackTotal counts rules that fell back to requiring
	// authentication because they granted no access level.
	fallbackTotal *prometheus.CounterVec

	// decisionTotal counts evaluation decisions.
	decisionTotal *prometheus.CounterVec

	// evaluationDuration measures policy evaluation duration.
	evaluationDuration prometheus.Histogram
}

// NewMetrics creates new access policy metrics.
// Metrics are registered with prometheus.DefaultRegisterer so they are
// automatically exposed on the default /metrics endpoint.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer. This is useful for registering metrics with the gateway's
// custom registry so they appear on the gateway's /metrics endpoint.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registerer: registerer,
	}

	m.rulesRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "rules_registered_total",
			Help:      "Total number of registered access rule bindings",
		},
		[]string{"scope", "access"},
	)

	m.fallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "rule_fallback_total",
			Help:      "Total number of access rules that fell back to requiring authentication",
		},
		[]string{"scope"},
	)

	m.decisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decision_total",
			Help:      "Total number of authorization decisions",
		},
		[]string{"decision", "reason"},
	)

	m.evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "evaluation_duration_seconds",
			Help:      "Policy evaluation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Register all metrics with the provided registerer, ignoring duplicates.
	collectors := []prometheus.Collector{
		m.rulesRegistered,
		m.fallbackTotal,
		m.decisionTotal,
		m.evaluationDuration,
	}
	for _, c := range collectors {
		_ = registerer.Register(c)
	}

	return m
}

// Init pre-initializes common label combinations with zero values so
// that metrics appear in /metrics output immediately after startup.
// Prometheus *Vec types only emit metric lines after WithLabelValues()
// is called at least once. This method is idempotent and safe to call
// multiple times.
func (m *Metrics) Init() {
	if m == nil {
		return
	}

	m.fallbackTotal.WithLabelValues(ScopeGlobal)

	for _, reason := range []string{ReasonPermitted, ReasonDefaultAllow} {
		m.decisionTotal.WithLabelValues("allowed", reason)
	}
	for _, reason := range []string{ReasonUnauthenticated, ReasonForbidden, ReasonDefaultDeny} {
		m.decisionTotal.WithLabelValues("denied", reason)
	}
}

// RecordRuleRegistered records a registered access rule binding.
func (m *Metrics) RecordRuleRegistered(scope string, access PredicateKind) {
	if m == nil || m.rulesRegistered == nil {
		return
	}
	m.rulesRegistered.WithLabelValues(scope, string(access)).Inc()
}

// RecordFallback records a rule that granted no access level.
func (m *Metrics) RecordFallback(scope string) {
	if m == nil || m.fallbackTotal == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(scope).Inc()
}

// RecordDecision records an evaluation decision.
func (m *Metrics) RecordDecision(decision, reason string, duration time.Duration) {
	if m == nil || m.decisionTotal == nil {
		return
	}
	m.decisionTotal.WithLabelValues(decision, reason).Inc()
	m.evaluationDuration.Observe(duration.Seconds())
}
