package authz

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

// findMetric returns the sample matching the given label values, or nil.
func findMetric(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, metric := range family.GetMetric() {
			got := make(map[string]string, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				got[label.GetName()] = label.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return metric
		}
	}
	return nil
}

func TestMetrics_RecordRuleRegistered(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("mtest", registry)

	m.RecordRuleRegistered(ScopeGlobal, KindPermitAll)
	m.RecordRuleRegistered(ScopeGlobal, KindPermitAll)
	m.RecordRuleRegistered("ldap", KindAnyRole)

	global := findMetric(t, registry, "mtest_authz_rules_registered_total",
		map[string]string{"scope": ScopeGlobal, "access": string(KindPermitAll)})
	require.NotNil(t, global)
	assert.Equal(t, float64(2), global.GetCounter().GetValue())

	ldap := findMetric(t, registry, "mtest_authz_rules_registered_total",
		map[string]string{"scope": "ldap", "access": string(KindAnyRole)})
	require.NotNil(t, ldap)
	assert.Equal(t, float64(1), ldap.GetCounter().GetValue())
}

func TestMetrics_RecordFallback(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("mtest", registry)

	m.RecordFallback("console")

	metric := findMetric(t, registry, "mtest_authz_rule_fallback_total",
		map[string]string{"scope": "console"})
	require.NotNil(t, metric)
	assert.Equal(t, float64(1), metric.GetCounter().GetValue())
}

func TestMetrics_RecordDecision(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("mtest", registry)

	m.RecordDecision("denied", ReasonUnauthenticated, 150*time.Microsecond)

	counter := findMetric(t, registry, "mtest_authz_decision_total",
		map[string]string{"decision": "denied", "reason": ReasonUnauthenticated})
	require.NotNil(t, counter)
	assert.Equal(t, float64(1), counter.GetCounter().GetValue())

	histogram := findMetric(t, registry, "mtest_authz_evaluation_duration_seconds", nil)
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(1), histogram.GetHistogram().GetSampleCount())
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics

	assert.NotPanics(t, func() {
		m.Init()
		m.RecordRuleRegistered(ScopeGlobal, KindPermitAll)
		m.RecordFallback(ScopeGlobal)
		m.RecordDecision("allowed", ReasonPermitted, time.Millisecond)
	})
}

func TestMetrics_DefaultNamespace(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("", registry)

	m.RecordFallback(ScopeGlobal)

	metric := findMetric(t, registry, "gateway_authz_rule_fallback_total",
		map[string]string{"scope": ScopeGlobal})
	assert.NotNil(t, metric)
}

func TestMetrics_Init(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("mtest", registry)

	m.Init()
	m.Init() // idempotent

	metric := findMetric(t, registry, "mtest_authz_decision_total",
		map[string]string{"decision": "denied", "reason": ReasonDefaultDeny})
	require.NotNil(t, metric)
	assert.Equal(t, float64(0), metric.GetCounter().GetValue())
}
