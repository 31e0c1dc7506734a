// Package health provides health check and readiness probe endpoints.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/routegate/routegate/internal/observability"
)

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates the service is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the service is unhealthy.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the service is degraded but operational.
	StatusDegraded Status = "degraded"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    Status            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Status    Status           `json:"status"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents an individual health check result.
type Check struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a readiness check.
type CheckFunc func() Check

// jsonMarshalFunc is swapped in tests to exercise encode failures.
var jsonMarshalFunc = json.Marshal

// Checker provides health and readiness checking functionality.
type Checker struct {
	version   string
	startTime time.Time
	logger    observability.Logger
	draining  atomic.Bool
	mu        sync.RWMutex
	checks    map[string]CheckFunc
}

// NewChecker creates a new health checker.
func NewChecker(version string, logger observability.Logger) *Checker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Checker{
		version:   version,
		startTime: time.Now(),
		logger:    logger,
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a readiness check function.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes a readiness check function.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// SetDraining marks the gateway as draining. While draining, the health
// and readiness endpoints report unhealthy so load balancers stop
// sending new traffic before the listeners shut down.
func (c *Checker) SetDraining(draining bool) {
	if old := c.draining.Swap(draining); old != draining {
		c.logger.Info("drain state changed",
			observability.Bool("draining", draining),
		)
	}
}

// IsDraining reports whether the gateway is draining.
func (c *Checker) IsDraining() bool {
	return c.draining.Load()
}

// Health returns the health status.
func (c *Checker) Health() HealthResponse {
	response := HealthResponse{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
	}

	if c.draining.Load() {
		response.Status = StatusUnhealthy
		response.Details = map[string]string{"reason": "draining"}
	}

	return response
}

// Readiness returns the readiness status. Individual check results are
// aggregated with unhealthy taking precedence over degraded.
func (c *Checker) Readiness() ReadinessResponse {
	response := ReadinessResponse{
		Status:    StatusHealthy,
		Checks:    make(map[string]Check),
		Timestamp: time.Now(),
	}

	metrics := GetHealthMetrics()

	if c.draining.Load() {
		response.Status = StatusUnhealthy
		response.Checks["draining"] = Check{
			Status:  StatusUnhealthy,
			Message: "gateway is draining",
		}
		metrics.checkStatus.WithLabelValues(overallCheck).Set(0)
		return response
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, checkFunc := range c.checks {
		check := checkFunc()
		response.Checks[name] = check
		metrics.checkStatus.WithLabelValues(name).Set(gaugeValue(check.Status))

		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && response.Status != StatusUnhealthy {
			response.Status = StatusDegraded
		}
	}

	metrics.checkStatus.WithLabelValues(overallCheck).Set(gaugeValue(response.Status))

	return response
}

// gaugeValue maps a check status to the 1=healthy, 0=unhealthy gauge
// convention. Degraded counts as healthy because the gateway keeps
// serving traffic.
func gaugeValue(status Status) float64 {
	if status == StatusUnhealthy {
		return 0
	}
	return 1
}

// HealthHandler returns an HTTP handler for the health endpoint.
func (c *Checker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		GetHealthMetrics().checksTotal.WithLabelValues(probeHealth).Inc()

		response := c.Health()

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.writeJSON(w, statusCode, response)
	}
}

// ReadinessHandler returns an HTTP handler for the readiness endpoint.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		GetHealthMetrics().checksTotal.WithLabelValues(probeReadiness).Inc()

		response := c.Readiness()

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.writeJSON(w, statusCode, response)
	}
}

// LivenessHandler returns an HTTP handler for the liveness endpoint.
// Liveness only proves the process is serving requests, so it stays
// healthy even while draining.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		GetHealthMetrics().checksTotal.WithLabelValues(probeLiveness).Inc()

		w.Header().Set(HeaderContentType, ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// RegisterRoutes attaches the probe endpoints to mux using the
// conventional Kubernetes paths.
func (c *Checker) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", c.HealthHandler())
	mux.HandleFunc("/healthz", c.LivenessHandler())
	mux.HandleFunc("/livez", c.LivenessHandler())
	mux.HandleFunc("/readyz", c.ReadinessHandler())
	mux.HandleFunc("/ready", c.ReadinessHandler())
}

func (c *Checker) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := jsonMarshalFunc(v)
	if err != nil {
		c.logger.Error("failed to encode health response",
			observability.Error(err),
		)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		c.logger.Warn("failed to write health response",
			observability.Error(err),
		)
	}
}
