// Package gateway provides the core gateway lifecycle.
//
// This package implements the main Gateway struct that orchestrates
// listeners, the HTTP engine, and graceful shutdown.
//
// # Features
//
//   - HTTP listener management with per-listener timeouts
//   - Graceful shutdown with configurable timeout
//   - Gateway state management (stopped, starting, running, stopping)
//
// # Usage
//
// Create and start a gateway:
//
//	gw, err := gateway.New(cfg,
//	    gateway.WithLogger(logger),
//	    gateway.WithRouteHandler(handler),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := gw.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer gw.Stop(ctx)
//
// The route handler receives every request that reaches the gateway;
// access control, logging and proxying are composed outside this
// package and passed in as a single http.Handler.
package gateway
