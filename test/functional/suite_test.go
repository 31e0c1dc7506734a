//go:build functional
// +build functional

/*
Package functional provides functional tests for the gateway components.
These tests drive the full request path (identity adoption, access
control, reverse proxying) against mock upstream services, independently
of a deployed environment.
*/
package functional

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/routegate/routegate/internal/auth"
	"github.com/routegate/routegate/internal/authz"
	"github.com/routegate/routegate/internal/config"
	"github.com/routegate/routegate/internal/middleware"
	"github.com/routegate/routegate/internal/observability"
	"github.com/routegate/routegate/internal/proxy"
)

// TestSuite holds shared test resources
type TestSuite struct {
	t            *testing.T
	logger       observability.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	mockBackends []*MockBackend
	servers      []*httptest.Server
	mu           sync.Mutex
}

// MockBackend represents a mock upstream server for testing
type MockBackend struct {
	Server     *httptest.Server
	URL        string
	Handler    http.Handler
	Requests   []RecordedRequest
	mu         sync.Mutex
	StatusCode int
}

// RecordedRequest stores information about a received request
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
	Time    time.Time
}

// NewTestSuite creates a new test suite
func NewTestSuite(t *testing.T) *TestSuite {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	logger := observability.NewZapLogger(zaptest.NewLogger(t))

	return &TestSuite{
		t:            t,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		mockBackends: make([]*MockBackend, 0),
	}
}

// Cleanup cleans up test resources
func (s *TestSuite) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mb := range s.mockBackends {
		if mb.Server != nil {
			mb.Server.Close()
		}
	}
	for _, srv := range s.servers {
		srv.Close()
	}

	s.cancel()
}

// CreateMockBackend creates a new mock upstream server
func (s *TestSuite) CreateMockBackend(opts ...MockBackendOption) *MockBackend {
	mb := &MockBackend{
		StatusCode: http.StatusOK,
		Requests:   make([]RecordedRequest, 0),
	}

	for _, opt := range opts {
		opt(mb)
	}

	if mb.Handler == nil {
		mb.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mb.mu.Lock()
			defer mb.mu.Unlock()

			body, _ := io.ReadAll(r.Body)
			mb.Requests = append(mb.Requests, RecordedRequest{
				Method:  r.Method,
				Path:    r.URL.Path,
				Headers: r.Header.Clone(),
				Body:    body,
				Time:    time.Now(),
			})

			w.WriteHeader(mb.StatusCode)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}

	mb.Server = httptest.NewServer(mb.Handler)
	mb.URL = mb.Server.URL

	s.mu.Lock()
	s.mockBackends = append(s.mockBackends, mb)
	s.mu.Unlock()

	return mb
}

// RequestCount returns the number of requests the backend received
func (mb *MockBackend) RequestCount() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.Requests)
}

// LastRequest returns the most recent request, or nil
func (mb *MockBackend) LastRequest() *RecordedRequest {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.Requests) == 0 {
		return nil
	}
	req := mb.Requests[len(mb.Requests)-1]
	return &req
}

// MockBackendOption configures a mock backend
type MockBackendOption func(*MockBackend)

// WithStatusCode sets the response status code
func WithStatusCode(code int) MockBackendOption {
	return func(mb *MockBackend) {
		mb.StatusCode = code
	}
}

// WithHandler sets a custom handler
func WithHandler(h http.Handler) MockBackendOption {
	return func(mb *MockBackend) {
		mb.Handler = h
	}
}

// BuildGatewayHandler assembles the gateway request path from a spec:
// recovery, request IDs, identity adoption, access control, and the
// reverse proxy registry. It returns the outermost handler.
func (s *TestSuite) BuildGatewayHandler(spec *config.GatewaySpec) http.Handler {
	engine := authz.NewEngine(
		authz.WithEngineLogger(s.logger),
		authz.WithDefaultAction(authz.ActionFromPolicy(spec.DefaultPolicy)),
	)

	builder := authz.NewBuilder(authz.WithBuilderLogger(s.logger))
	require.NoError(s.t, builder.Build(authz.ConvertFromGatewayConfig(spec), engine))

	registry, err := proxy.NewRegistry(spec.Services, proxy.WithRegistryLogger(s.logger))
	require.NoError(s.t, err)

	headerCfg := auth.TrustedHeaderConfig{Enabled: true}
	if spec.Identity != nil {
		headerCfg.Enabled = spec.Identity.TrustedHeaders.Enabled
		headerCfg.UserHeader = spec.Identity.TrustedHeaders.UserHeader
		headerCfg.RolesHeader = spec.Identity.TrustedHeaders.RolesHeader
	}
	identifier := auth.NewHeaderIdentifier(headerCfg, auth.WithIdentifierLogger(s.logger))

	var h http.Handler = registry
	h = engine.HTTPMiddleware()(h)
	h = identifier.HTTPMiddleware()(h)
	h = middleware.RequestID()(h)
	h = middleware.Recovery(s.logger)(h)

	return h
}

// StartGateway serves the assembled gateway handler on an ephemeral
// port and returns its base URL.
func (s *TestSuite) StartGateway(spec *config.GatewaySpec) string {
	server := httptest.NewServer(s.BuildGatewayHandler(spec))

	s.mu.Lock()
	s.servers = append(s.servers, server)
	s.mu.Unlock()

	return server.URL
}
