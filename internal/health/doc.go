// Package health provides health check and readiness probe endpoints
// for the gateway.
//
// This package implements Kubernetes-compatible liveness, readiness and
// health endpoints with extensible check registration and connection
// draining support for graceful shutdown.
//
// # Features
//
//   - Liveness probe endpoints (/healthz, /livez)
//   - Readiness probe endpoints (/readyz, /ready)
//   - Detailed health endpoint (/health) with version and uptime
//   - Extensible readiness check registration
//   - Draining state that fails probes during graceful shutdown
//   - Upstream reachability checks with result caching
//
// # Usage
//
// Create a health checker, register checks, and mount the routes:
//
//	checker := health.NewChecker(version, logger)
//
//	checker.RegisterCheck("ldap", health.UpstreamCheck("ldap:636", 2*time.Second))
//
//	mux := http.NewServeMux()
//	checker.RegisterRoutes(mux)
//
// During shutdown, call SetDraining(true) before stopping the listeners
// so load balancers and kubelets take the instance out of rotation.
package health
