// Package middleware provides HTTP middleware components for the
// gateway.
//
// # Middleware Components
//
//   - Request ID: unique request identifier injection
//   - Logging: structured request/response logging
//   - Recovery: panic recovery with stack trace logging
//   - Rate Limiting: token bucket rate limiter, global or per client
//
// # Usage
//
// Middleware functions follow the standard Go pattern:
//
//	handler := middleware.Logging(logger)(
//	    middleware.Recovery(logger)(
//	        middleware.RequestID()(yourHandler),
//	    ),
//	)
package middleware
