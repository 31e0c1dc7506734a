package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/routegate/routegate/internal/config"
	"github.com/routegate/routegate/internal/observability"
)

// hopHeaders are headers that should not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Error type labels for proxy error metrics.
const (
	errorTypeConnection = "connection"
	errorTypeTimeout    = "timeout"
	errorTypeCanceled   = "canceled"
)

// serviceProxy is one configured service with its compiled upstream.
type serviceProxy struct {
	name    string
	prefix  string
	target  *url.URL
	handler *httputil.ReverseProxy
}

// matches reports whether the request path belongs to this service.
// A prefix of "/" matches everything; otherwise the path must equal
// the prefix or continue it at a path segment boundary, so "/ldap"
// matches "/ldap" and "/ldap/users" but not "/ldapx".
func (sp *serviceProxy) matches(path string) bool {
	if sp.prefix == "/" {
		return true
	}
	return path == sp.prefix || strings.HasPrefix(path, sp.prefix+"/")
}

// Registry resolves requests to configured services and proxies them
// upstream. It is immutable after construction, which makes concurrent
// ServeHTTP calls safe without locking.
type Registry struct {
	services      []*serviceProxy // longest prefix first
	names         []string        // declaration order
	logger        observability.Logger
	transport     http.RoundTripper
	flushInterval time.Duration
}

// RegistryOption is a functional option for configuring the registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger for the registry.
func WithRegistryLogger(logger observability.Logger) RegistryOption {
	return func(reg *Registry) {
		reg.logger = logger
	}
}

// WithRegistryTransport sets the transport used for upstream requests.
func WithRegistryTransport(transport http.RoundTripper) RegistryOption {
	return func(reg *Registry) {
		reg.transport = transport
	}
}

// WithFlushInterval sets the flush interval for streaming responses.
func WithFlushInterval(interval time.Duration) RegistryOption {
	return func(reg *Registry) {
		reg.flushInterval = interval
	}
}

// NewRegistry builds a proxy registry from the configured services.
// Each service's target must be an absolute http(s) URL.
func NewRegistry(services []config.Service, opts ...RegistryOption) (*Registry, error) {
	reg := &Registry{
		logger:        observability.NopLogger(),
		flushInterval: -1, // Immediate flush
	}

	for _, opt := range opts {
		opt(reg)
	}

	transport := reg.transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	for i := range services {
		svc := &services[i]

		target, err := url.Parse(svc.Target)
		if err != nil {
			return nil, NewInvalidTargetError(svc.Name, svc.Target, err)
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, NewInvalidTargetError(svc.Name, svc.Target, nil)
		}

		sp := &serviceProxy{
			name:   svc.Name,
			prefix: svc.EffectivePrefix(),
			target: target,
		}
		sp.handler = &httputil.ReverseProxy{
			Director: reg.director(sp),
			Transport: &timingTransport{
				base:    transport,
				service: sp.name,
			},
			FlushInterval: reg.flushInterval,
			ErrorHandler:  reg.errorHandler(sp),
		}

		reg.services = append(reg.services, sp)
		reg.names = append(reg.names, sp.name)
	}

	// Longest prefix wins; declaration order breaks ties.
	sort.SliceStable(reg.services, func(i, j int) bool {
		return len(reg.services[i].prefix) > len(reg.services[j].prefix)
	})

	initVecMetrics(reg.names)

	return reg, nil
}

// ServeHTTP implements http.Handler.
func (reg *Registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sp := reg.resolve(r.URL.Path)
	if sp == nil {
		reg.handleServiceNotFound(w, r)
		return
	}
	sp.handler.ServeHTTP(w, r)
}

// resolve returns the service handling the given path, or nil.
func (reg *Registry) resolve(path string) *serviceProxy {
	for _, sp := range reg.services {
		if sp.matches(path) {
			return sp
		}
	}
	return nil
}

// ServiceName reports the configured service that would handle the
// request, or the empty string when none matches. It satisfies the
// observability.ServiceResolver contract for metrics labeling.
func (reg *Registry) ServiceName(r *http.Request) string {
	if sp := reg.resolve(r.URL.Path); sp != nil {
		return sp.name
	}
	return ""
}

// ServiceNames returns the registered service names in declaration
// order.
func (reg *Registry) ServiceNames() []string {
	names := make([]string, len(reg.names))
	copy(names, reg.names)
	return names
}

// Len returns the number of registered services.
func (reg *Registry) Len() int {
	return len(reg.services)
}

// Handler returns an http.Handler for the registry.
func (reg *Registry) Handler() http.Handler {
	return reg
}

// director modifies the outgoing request before forwarding. The
// request is already a clone; path and query carry over, so only the
// upstream location and forwarding headers are set here.
func (reg *Registry) director(sp *serviceProxy) func(*http.Request) {
	target := sp.target
	return func(req *http.Request) {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		if target.Path != "" && target.Path != "/" {
			req.URL.Path = singleJoiningSlash(target.Path, req.URL.Path)
		}

		for _, h := range hopHeaders {
			req.Header.Del(h)
		}

		// ReverseProxy appends the client address to X-Forwarded-For
		// itself; only proto and host are set here.
		if req.TLS != nil {
			req.Header.Set("X-Forwarded-Proto", "https")
		} else {
			req.Header.Set("X-Forwarded-Proto", "http")
		}
		req.Header.Set("X-Forwarded-Host", req.Host)

		req.Host = target.Host

		observability.InjectTraceContext(req.Context(), req)
	}
}

// errorHandler builds the upstream error handler for one service.
func (reg *Registry) errorHandler(sp *serviceProxy) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		errType := classifyError(err)

		reg.logger.Error("upstream request failed",
			observability.String("service", sp.name),
			observability.String("target", sp.target.String()),
			observability.String("path", r.URL.Path),
			observability.String("method", r.Method),
			observability.String("error_type", errType),
			observability.Error(err),
		)

		getProxyMetrics().errorsTotal.WithLabelValues(sp.name, errType).Inc()

		w.Header().Set("Content-Type", "application/json")
		if errType == errorTypeTimeout {
			w.WriteHeader(http.StatusGatewayTimeout)
			_, _ = io.WriteString(w, `{"error":"gateway timeout","message":"upstream did not respond in time"}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"bad gateway","message":"failed to reach upstream"}`)
	}
}

// handleServiceNotFound handles requests outside every service prefix.
func (reg *Registry) handleServiceNotFound(w http.ResponseWriter, r *http.Request) {
	reg.logger.Debug("no service for path",
		observability.String("path", r.URL.Path),
		observability.String("method", r.Method),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"error":"not found","message":"no matching service"}`)
}

// classifyError maps an upstream error to a bounded metric label.
func classifyError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return errorTypeTimeout
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	default:
		return errorTypeConnection
	}
}

// timingTransport observes upstream round-trip durations per service.
type timingTransport struct {
	base    http.RoundTripper
	service string
}

// RoundTrip implements http.RoundTripper.
func (t *timingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	getProxyMetrics().backendDuration.WithLabelValues(t.service).Observe(time.Since(start).Seconds())
	return resp, err
}

// singleJoiningSlash joins two URL path segments with exactly one
// slash between them.
func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}

var _ http.Handler = (*Registry)(nil)
