package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/routegate/routegate/internal/config"
	"github.com/routegate/routegate/internal/observability"
)

// drainWaitDuration is how long readiness reports draining before the
// listeners close, giving load balancers time to stop routing new
// traffic to this instance.
const drainWaitDuration = 5 * time.Second

// runGateway runs the gateway and handles shutdown.
func runGateway(app *application, logger observability.Logger) {
	ctx := context.Background()

	if err := app.gateway.Start(ctx); err != nil {
		fatalWithSync(logger, "failed to start gateway", observability.Error(err))
		return // unreachable in production; allows test to continue
	}

	startMetricsServerIfEnabled(app, logger)

	waitForShutdown(app, logger)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown.
func waitForShutdown(app *application, logger observability.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	waitForDrain(shutdownCtx, app, logger)
	stopCoreServices(shutdownCtx, app, logger)

	logger.Info("gateway stopped")
}

// waitForDrain marks the instance as draining and waits before closing
// listeners, so readiness probes fail and load balancers drain traffic
// away first.
func waitForDrain(ctx context.Context, app *application, logger observability.Logger) {
	if app.healthChecker == nil {
		return
	}

	app.healthChecker.SetDraining(true)
	logger.Info("draining connections before shutdown",
		observability.Duration("drain_wait", drainWaitDuration),
	)

	timer := time.NewTimer(drainWaitDuration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// stopCoreServices stops the metrics server, gateway, tracer, and rate
// limiter. Errors are logged, not propagated, so a failing component
// does not prevent the others from stopping.
func stopCoreServices(ctx context.Context, app *application, logger observability.Logger) {
	if app.metricsServer != nil {
		logger.Info("stopping metrics server")
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			logger.Error("failed to stop metrics server gracefully", observability.Error(err))
		}
	}

	if err := app.gateway.Stop(ctx); err != nil {
		logger.Error("failed to stop gateway gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	// Stop rate limiter cleanup goroutine
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}
}
