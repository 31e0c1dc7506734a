package proxy

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetProxyMetrics_Singleton(t *testing.T) {
	m1 := getProxyMetrics()
	m2 := getProxyMetrics()

	assert.Same(t, m1, m2, "getProxyMetrics should return the same instance")
}

func TestGetProxyMetrics_AllFieldsInitialized(t *testing.T) {
	m := getProxyMetrics()

	assert.NotNil(t, m.errorsTotal, "errorsTotal should be initialized")
	assert.NotNil(t, m.backendDuration, "backendDuration should be initialized")
}

func TestProxyMetrics_ErrorsTotal(t *testing.T) {
	m := getProxyMetrics()

	before := testutil.ToFloat64(m.errorsTotal.WithLabelValues("metrics-test-svc", errorTypeConnection))
	m.errorsTotal.WithLabelValues("metrics-test-svc", errorTypeConnection).Inc()
	after := testutil.ToFloat64(m.errorsTotal.WithLabelValues("metrics-test-svc", errorTypeConnection))

	assert.Equal(t, before+1, after, "errorsTotal should increment by 1")
}

func TestInitVecMetrics(t *testing.T) {
	initVecMetrics([]string{"warmup-svc"})

	m := getProxyMetrics()
	value := testutil.ToFloat64(m.errorsTotal.WithLabelValues("warmup-svc", errorTypeTimeout))

	assert.Zero(t, value, "pre-populated metric should start at zero")
}
