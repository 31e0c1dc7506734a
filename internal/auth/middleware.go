package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/routegate/routegate/internal/observability"
)

// Default trusted header names.
const (
	// DefaultUserHeader carries the authenticated subject.
	DefaultUserHeader = "X-Auth-User"

	// DefaultRolesHeader carries the subject's roles, separated by
	// commas or semicolons.
	DefaultRolesHeader = "X-Auth-Roles"
)

// TrustedHeaderConfig configures identity adoption from headers set by
// an upstream authenticating proxy. The feature is opt-in: the gateway
// must only trust these headers when something in front of it strips
// them from client traffic.
type TrustedHeaderConfig struct {
	Enabled     bool
	UserHeader  string
	RolesHeader string
}

// Identifier resolves the identity carried by a request, if any.
type Identifier interface {
	// Identify returns the request identity, or nil for anonymous
	// callers.
	Identify(r *http.Request) *Identity

	// HTTPMiddleware returns a middleware that stores the resolved
	// identity in the request context.
	HTTPMiddleware() func(http.Handler) http.Handler
}

// headerIdentifier implements Identifier using trusted headers.
type headerIdentifier struct {
	config TrustedHeaderConfig
	logger observability.Logger
}

var _ Identifier = (*headerIdentifier)(nil)

// HeaderIdentifierOption is a functional option for the header identifier.
type HeaderIdentifierOption func(*headerIdentifier)

// WithIdentifierLogger sets the logger.
func WithIdentifierLogger(logger observability.Logger) HeaderIdentifierOption {
	return func(h *headerIdentifier) {
		h.logger = logger
	}
}

// NewHeaderIdentifier creates an Identifier that adopts identities from
// trusted headers.
func NewHeaderIdentifier(cfg TrustedHeaderConfig, opts ...HeaderIdentifierOption) Identifier {
	if cfg.UserHeader == "" {
		cfg.UserHeader = DefaultUserHeader
	}
	if cfg.RolesHeader == "" {
		cfg.RolesHeader = DefaultRolesHeader
	}

	h := &headerIdentifier{
		config: cfg,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Identify resolves the identity from the configured headers. Requests
// without the user header remain anonymous.
func (h *headerIdentifier) Identify(r *http.Request) *Identity {
	if !h.config.Enabled {
		return nil
	}

	subject := r.Header.Get(h.config.UserHeader)
	if subject == "" {
		return nil
	}

	return &Identity{
		Subject:  subject,
		Roles:    splitRoles(r.Header.Get(h.config.RolesHeader)),
		AuthTime: time.Now(),
	}
}

// HTTPMiddleware returns a middleware that stores the resolved identity
// in the request context.
func (h *headerIdentifier) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity := h.Identify(r); identity != nil {
				h.logger.Debug("adopted upstream identity",
					observability.String("subject", identity.Subject),
					observability.Int("roles", len(identity.Roles)),
				)
				r = r.WithContext(ContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// splitRoles splits a role header value on commas and semicolons,
// trimming whitespace and dropping empty entries.
func splitRoles(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}

	if len(roles) == 0 {
		return nil
	}
	return roles
}
