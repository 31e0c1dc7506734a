// Package pattern implements ant-style path patterns for access rules.
package pattern

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics holds Prometheus metrics for the compiled pattern
// cache.
type CacheMetrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheSize      prometheus.Gauge
}

var (
	cacheMetrics     *CacheMetrics
	cacheMetricsOnce sync.Once
)

// GetCacheMetrics returns the singleton pattern cache metrics
// instance.
func GetCacheMetrics() *CacheMetrics {
	cacheMetricsOnce.Do(func() {
		cacheMetrics = newCacheMetrics()
	})
	return cacheMetrics
}

// MustRegister registers all pattern cache metric collectors with the
// given Prometheus registry. This is needed because promauto registers
// metrics with the default global registry, but the gateway serves
// /metrics from a custom registry. Calling MustRegister bridges the
// two so pattern cache metrics appear on the gateway's metrics
// endpoint.
func (m *CacheMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.cacheEvictions,
		m.cacheSize,
	)
}

func newCacheMetrics() *CacheMetrics {
	return &CacheMetrics{
		cacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "pattern",
				Name:      "cache_hits_total",
				Help: "Total number of compiled " +
					"pattern cache hits",
			},
		),
		cacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "pattern",
				Name:      "cache_misses_total",
				Help: "Total number of compiled " +
					"pattern cache misses",
			},
		),
		cacheEvictions: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "pattern",
				Name:      "cache_evictions_total",
				Help: "Total number of compiled " +
					"pattern cache evictions",
			},
		),
		cacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "gateway",
				Subsystem: "pattern",
				Name:      "cache_size",
				Help: "Current number of entries in " +
					"the compiled pattern cache",
			},
		),
	}
}
