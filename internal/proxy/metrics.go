package proxy

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// proxyMetrics contains Prometheus metrics for proxy operations.
type proxyMetrics struct {
	errorsTotal     *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

var (
	proxyMetricsInstance *proxyMetrics
	proxyMetricsOnce     sync.Once
)

// InitMetrics initializes the singleton proxy metrics instance with
// the given Prometheus registry, so that proxy metrics appear on the
// shared /metrics endpoint. If registry is nil, metrics are registered
// with the default registerer. Subsequent calls are no-ops.
func InitMetrics(registry *prometheus.Registry) {
	proxyMetricsOnce.Do(func() {
		var registerer prometheus.Registerer
		if registry != nil {
			registerer = registry
		} else {
			registerer = prometheus.DefaultRegisterer
		}
		factory := promauto.With(registerer)
		proxyMetricsInstance = &proxyMetrics{
			errorsTotal: factory.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "gateway",
					Subsystem: "proxy",
					Name:      "errors_total",
					Help: "Total number of " +
						"proxy errors",
				},
				[]string{"service", "error_type"},
			),
			backendDuration: factory.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "gateway",
					Subsystem: "proxy",
					Name: "backend_duration" +
						"_seconds",
					Help: "Duration of upstream " +
						"proxy requests",
					Buckets: []float64{
						.001, .005, .01, .025,
						.05, .1, .25, .5,
						1, 2.5, 5, 10,
					},
				},
				[]string{"service"},
			),
		}
	})
}

// initVecMetrics pre-populates label combinations for the given
// services with zero values so that proxy Vec metrics appear in
// /metrics output immediately after startup.
func initVecMetrics(services []string) {
	m := getProxyMetrics()

	errorTypes := []string{
		errorTypeConnection,
		errorTypeTimeout,
		errorTypeCanceled,
	}
	for _, service := range services {
		for _, et := range errorTypes {
			m.errorsTotal.WithLabelValues(service, et)
		}
		m.backendDuration.WithLabelValues(service)
	}
}

// getProxyMetrics returns the singleton proxy metrics instance.
// If InitMetrics has not been called, metrics are lazily initialized
// with the default registerer.
func getProxyMetrics() *proxyMetrics {
	InitMetrics(nil)
	return proxyMetricsInstance
}
