package main

import (
	"net/http"

	"github.com/routegate/routegate/internal/auth"
	"github.com/routegate/routegate/internal/authz"
	"github.com/routegate/routegate/internal/config"
	"github.com/routegate/routegate/internal/gateway"
	"github.com/routegate/routegate/internal/health"
	"github.com/routegate/routegate/internal/middleware"
	"github.com/routegate/routegate/internal/observability"
	"github.com/routegate/routegate/internal/pattern"
	"github.com/routegate/routegate/internal/proxy"
)

// application holds all application components.
type application struct {
	gateway       *gateway.Gateway
	proxyRegistry *proxy.Registry
	engine        *authz.Engine
	healthChecker *health.Checker
	metrics       *observability.Metrics
	metricsServer *http.Server
	tracer        *observability.Tracer
	config        *config.GatewayConfig
	rateLimiter   *middleware.RateLimiter
}

// initApplication initializes all application components.
func initApplication(cfg *config.GatewayConfig, logger observability.Logger) *application {
	metrics := observability.NewMetrics("gateway")
	metrics.SetBuildInfo(version, gitCommit, buildTime)
	tracer := initTracer(cfg, logger)
	healthChecker := health.NewChecker(version, logger)

	// Initialize subsystem metric singletons and register them with the
	// gateway's custom Prometheus registry. These singletons use promauto
	// which auto-registers with the default global registry, but the
	// gateway serves /metrics from its own custom registry. Without this
	// explicit registration, middleware, health, and pattern cache
	// metrics would be invisible on the /metrics endpoint.
	registerSubsystemMetrics(metrics, logger)

	// Create authz metrics registered with the gateway's custom registry
	// so they appear on the gateway's /metrics endpoint.
	authzMetrics := authz.NewMetricsWithRegisterer("gateway", metrics.Registry())
	authzMetrics.Init()

	engine := buildPolicyEngine(cfg, authzMetrics, logger)
	if engine == nil {
		return nil
	}

	proxyRegistry := initProxyRegistry(cfg.Spec.Services, logger)
	if proxyRegistry == nil {
		return nil
	}

	registerUpstreamChecks(cfg.Spec.Services, healthChecker, logger)

	identifier := initIdentifier(cfg, logger)

	middlewareResult := buildMiddlewareChain(
		proxyRegistry, cfg, logger, metrics, tracer,
		identifier, engine, proxyRegistry.ServiceName,
	)

	gw, err := gateway.New(cfg,
		gateway.WithLogger(logger),
		gateway.WithRouteHandler(middlewareResult.handler),
		gateway.WithShutdownTimeout(config.DefaultShutdownTimeout),
	)
	if err != nil {
		fatalWithSync(logger, "failed to create gateway", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}

	return &application{
		gateway:       gw,
		proxyRegistry: proxyRegistry,
		engine:        engine,
		healthChecker: healthChecker,
		metrics:       metrics,
		tracer:        tracer,
		config:        cfg,
		rateLimiter:   middlewareResult.rateLimiter,
	}
}

// registerSubsystemMetrics initializes and registers all subsystem
// metric singletons with the gateway's custom Prometheus registry.
// Several packages use promauto which registers metrics with the
// default global registry, but the gateway's /metrics endpoint is
// served from its own custom registry. Without this explicit
// registration the subsystem metrics would be invisible on the
// /metrics endpoint even though they are being recorded at runtime.
func registerSubsystemMetrics(metrics *observability.Metrics, logger observability.Logger) {
	registry := metrics.Registry()

	// Middleware metrics singleton (rate limiter, panics).
	mwMetrics := middleware.GetMiddlewareMetrics()
	mwMetrics.MustRegister(registry)

	// Health check metrics singleton (checks total, check status).
	hlMetrics := health.GetHealthMetrics()
	hlMetrics.MustRegister(registry)
	hlMetrics.Init()

	// Pattern cache metrics singleton (cache hits, misses,
	// evictions, size).
	patternMetrics := pattern.GetCacheMetrics()
	patternMetrics.MustRegister(registry)

	// Proxy metrics bind to the registry on first initialization, so
	// this must run before the proxy registry is built.
	proxy.InitMetrics(registry)

	subsystems := []string{"middleware", "health", "pattern", "proxy"}
	logger.Info("subsystem metrics registered with gateway registry",
		observability.Int("subsystem_count", len(subsystems)),
	)
}

// buildPolicyEngine builds the authorization engine from the configured
// access rules. Global rules register first, then each service's rules
// in declaration order, so registration order is request-evaluation
// order.
func buildPolicyEngine(
	cfg *config.GatewayConfig,
	authzMetrics *authz.Metrics,
	logger observability.Logger,
) *authz.Engine {
	engine := authz.NewEngine(
		authz.WithEngineLogger(logger),
		authz.WithEngineMetrics(authzMetrics),
		authz.WithDefaultAction(authz.ActionFromPolicy(cfg.Spec.DefaultPolicy)),
	)

	builder := authz.NewBuilder(
		authz.WithBuilderLogger(logger),
		authz.WithBuilderMetrics(authzMetrics),
	)

	set := authz.ConvertFromGatewayConfig(&cfg.Spec)
	if err := builder.Build(set, engine); err != nil {
		fatalWithSync(logger, "failed to build access policy", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}

	logger.Info("access policy built",
		observability.Int("bindings", engine.BindingCount()),
		observability.String("default_policy", cfg.Spec.DefaultPolicy),
	)

	return engine
}

// initProxyRegistry creates the reverse proxy registry for the
// configured services.
func initProxyRegistry(
	services []config.Service,
	logger observability.Logger,
) *proxy.Registry {
	registry, err := proxy.NewRegistry(services, proxy.WithRegistryLogger(logger))
	if err != nil {
		fatalWithSync(logger, "failed to build proxy registry", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}

	logger.Info("proxy registry built",
		observability.Int("services", registry.Len()),
	)

	return registry
}

// registerUpstreamChecks registers a cached TCP reachability check for
// each configured service target, so readiness reflects upstream
// availability.
func registerUpstreamChecks(
	services []config.Service,
	checker *health.Checker,
	logger observability.Logger,
) {
	for _, svc := range services {
		check, err := health.UpstreamCheckForTarget(svc.Target, health.DefaultUpstreamTimeout)
		if err != nil {
			logger.Warn("skipping upstream health check",
				observability.String("service", svc.Name),
				observability.Error(err),
			)
			continue
		}

		checker.RegisterCheck(
			"upstream:"+svc.Name,
			health.CachedCheck(check, health.DefaultCheckCacheTTL),
		)
	}
}

// initIdentifier creates the identity resolver from the gateway
// configuration. When trusted headers are not configured the resolver
// treats every request as anonymous.
func initIdentifier(cfg *config.GatewayConfig, logger observability.Logger) auth.Identifier {
	headerCfg := auth.TrustedHeaderConfig{}
	if cfg.Spec.Identity != nil {
		headerCfg.Enabled = cfg.Spec.Identity.TrustedHeaders.Enabled
		headerCfg.UserHeader = cfg.Spec.Identity.TrustedHeaders.UserHeader
		headerCfg.RolesHeader = cfg.Spec.Identity.TrustedHeaders.RolesHeader
	}

	if headerCfg.Enabled {
		logger.Info("trusted header identity enabled")
	} else {
		logger.Info("trusted header identity disabled, all requests are anonymous")
	}

	return auth.NewHeaderIdentifier(headerCfg, auth.WithIdentifierLogger(logger))
}
