package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace string
	}{
		{
			name:      "with custom namespace",
			namespace: "custom",
		},
		{
			name:      "with empty namespace uses default",
			namespace: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			metrics := NewMetrics(tt.namespace)

			assert.NotNil(t, metrics)
			assert.NotNil(t, metrics.requestsTotal)
			assert.NotNil(t, metrics.requestDuration)
			assert.NotNil(t, metrics.requestSize)
			assert.NotNil(t, metrics.responseSize)
			assert.NotNil(t, metrics.activeRequests)
			assert.NotNil(t, metrics.rateLimitHits)
			assert.NotNil(t, metrics.registry)
		})
	}
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")

	// Should not panic
	metrics.RecordRequest(
		"GET",
		"ldap",
		200,
		100*time.Millisecond,
		1024,
		2048,
	)
}

func TestMetrics_RecordRateLimitHit(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")

	// Should not panic
	metrics.RecordRateLimitHit()
}

func TestMetrics_SetBuildInfo(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")

	// Should not panic
	metrics.SetBuildInfo("1.0.0", "abc123", "2026-01-01")
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")
	handler := metrics.Handler()

	assert.NotNil(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("mwtest")

	resolver := func(r *http.Request) string {
		if strings.HasPrefix(r.URL.Path, "/ldap") {
			return "ldap"
		}
		return ""
	}

	handler := MetricsMiddleware(metrics, resolver)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("ok"))
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/ldap/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	// The request must be recorded under the resolved service label.
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "mwtest_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["service"] == "ldap" && labels["status"] == "202" {
				found = true
				assert.Equal(t, float64(1), m.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found, "expected mwtest_requests_total{service=\"ldap\",status=\"202\"}")
}

func TestMetricsMiddleware_UnresolvedService(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("mwunmatched")

	handler := MetricsMiddleware(metrics, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "mwunmatched_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "service" && lp.GetValue() == unmatchedService {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "unresolved requests should carry the unmatched label")
}
