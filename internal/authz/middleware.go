package authz

import (
	"encoding/json"
	"net/http"

	"github.com/routegate/routegate/internal/auth"
	"github.com/routegate/routegate/internal/observability"
)

// HTTPMiddleware returns an HTTP middleware enforcing the engine's
// policy. An unauthenticated caller hitting a protected binding
// receives 401; an authenticated caller without a required role
// receives 403. Both responses are JSON.
func (e *Engine) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())

			decision := e.Authorize(r.Context(), r.URL.Path, identity)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			e.handleAccessDenied(w, r, decision)
		})
	}
}

// handleAccessDenied writes the denial response.
func (e *Engine) handleAccessDenied(w http.ResponseWriter, r *http.Request, decision Decision) {
	e.logger.Warn("access denied",
		observability.String("path", r.URL.Path),
		observability.String("method", r.Method),
		observability.String("reason", decision.Reason),
		observability.String("pattern", decision.Pattern),
	)

	w.Header().Set(HeaderContentType, ContentTypeJSON)

	if decision.Reason == ReasonUnauthenticated {
		w.Header().Set(HeaderWWWAuthenticate, "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "authentication required",
		})
		return
	}

	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "access denied",
		"reason": decision.Reason,
	})
}
