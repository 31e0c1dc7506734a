package main

import (
	"net/http"

	"github.com/routegate/routegate/internal/auth"
	"github.com/routegate/routegate/internal/authz"
	"github.com/routegate/routegate/internal/config"
	"github.com/routegate/routegate/internal/middleware"
	"github.com/routegate/routegate/internal/observability"
)

// middlewareChainResult holds the result of building the middleware chain.
type middlewareChainResult struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// buildMiddlewareChain builds the middleware chain.
// The execution order (outermost executes first):
// Recovery -> RequestID -> Logging -> Tracing -> Metrics ->
// RateLimit -> Identity -> AccessControl -> [proxy]
//
// Identity resolution runs after rate limiting so floods are shed
// before header parsing; access control runs last so every decision
// sees the resolved identity.
func buildMiddlewareChain(
	handler http.Handler,
	cfg *config.GatewayConfig,
	logger observability.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	identifier auth.Identifier,
	engine *authz.Engine,
	resolve observability.ServiceResolver,
) middlewareChainResult {
	h := handler
	var rateLimiter *middleware.RateLimiter

	h = engine.HTTPMiddleware()(h)
	h = identifier.HTTPMiddleware()(h)

	if cfg.Spec.RateLimit != nil && cfg.Spec.RateLimit.Enabled {
		var rateLimitMiddleware func(http.Handler) http.Handler
		rateLimitMiddleware, rateLimiter = middleware.RateLimitFromConfig(cfg.Spec.RateLimit, logger)
		h = rateLimitMiddleware(h)
	}

	h = observability.MetricsMiddleware(metrics, resolve)(h)
	h = observability.TracingMiddleware(tracer)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.Recovery(logger)(h)

	return middlewareChainResult{
		handler:     h,
		rateLimiter: rateLimiter,
	}
}
