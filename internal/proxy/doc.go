// Package proxy provides HTTP reverse proxy functionality for the
// gateway.
//
// Each configured service gets its own reverse proxy bound to a path
// prefix. The registry resolves an incoming request to the service
// with the longest matching prefix and forwards it upstream, after
// the access policy middleware has admitted the request.
//
// # Features
//
//   - Per-service httputil.ReverseProxy with configurable transport
//   - Longest-prefix service resolution, declaration order breaking ties
//   - Hop-by-hop header removal per RFC 7230
//   - X-Forwarded-Proto / X-Forwarded-Host headers on upstream requests
//   - Trace context propagation to upstreams
//   - Structured error types and per-service error/duration metrics
//
// # Usage
//
//	registry, err := proxy.NewRegistry(cfg.Spec.Services,
//	    proxy.WithRegistryLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.Handle("/", registry)
package proxy
