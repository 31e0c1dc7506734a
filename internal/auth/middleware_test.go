package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderIdentifier_Identify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   TrustedHeaderConfig
		headers  map[string]string
		expected *Identity
	}{
		{
			name:     "disabled ignores headers",
			config:   TrustedHeaderConfig{Enabled: false},
			headers:  map[string]string{DefaultUserHeader: "alice"},
			expected: nil,
		},
		{
			name:     "missing user header is anonymous",
			config:   TrustedHeaderConfig{Enabled: true},
			headers:  map[string]string{DefaultRolesHeader: "ADMIN"},
			expected: nil,
		},
		{
			name:   "subject without roles",
			config: TrustedHeaderConfig{Enabled: true},
			headers: map[string]string{
				DefaultUserHeader: "alice",
			},
			expected: &Identity{Subject: "alice"},
		},
		{
			name:   "subject with comma separated roles",
			config: TrustedHeaderConfig{Enabled: true},
			headers: map[string]string{
				DefaultUserHeader:  "alice",
				DefaultRolesHeader: "ROLE_USER, ROLE_ADMIN",
			},
			expected: &Identity{
				Subject: "alice",
				Roles:   []string{"ROLE_USER", "ROLE_ADMIN"},
			},
		},
		{
			name:   "subject with semicolon separated roles",
			config: TrustedHeaderConfig{Enabled: true},
			headers: map[string]string{
				DefaultUserHeader:  "bob",
				DefaultRolesHeader: "USER;OPERATOR",
			},
			expected: &Identity{
				Subject: "bob",
				Roles:   []string{"USER", "OPERATOR"},
			},
		},
		{
			name: "custom header names",
			config: TrustedHeaderConfig{
				Enabled:     true,
				UserHeader:  "Sec-Username",
				RolesHeader: "Sec-Roles",
			},
			headers: map[string]string{
				"Sec-Username": "carol",
				"Sec-Roles":    "GN_ADMIN",
			},
			expected: &Identity{
				Subject: "carol",
				Roles:   []string{"GN_ADMIN"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identifier := NewHeaderIdentifier(tt.config)

			req := httptest.NewRequest(http.MethodGet, "/console", nil)
			for name, value := range tt.headers {
				req.Header.Set(name, value)
			}

			identity := identifier.Identify(req)

			if tt.expected == nil {
				assert.Nil(t, identity)
				return
			}

			require.NotNil(t, identity)
			assert.Equal(t, tt.expected.Subject, identity.Subject)
			assert.Equal(t, tt.expected.Roles, identity.Roles)
			assert.False(t, identity.AuthTime.IsZero())
		})
	}
}

func TestHeaderIdentifier_HTTPMiddleware(t *testing.T) {
	t.Parallel()

	identifier := NewHeaderIdentifier(TrustedHeaderConfig{Enabled: true})

	var captured *Identity
	handler := identifier.HTTPMiddleware()(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	t.Run("identity stored in context", func(t *testing.T) {
		captured = nil

		req := httptest.NewRequest(http.MethodGet, "/console", nil)
		req.Header.Set(DefaultUserHeader, "alice")
		req.Header.Set(DefaultRolesHeader, "ADMIN")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, captured)
		assert.Equal(t, "alice", captured.Subject)
		assert.Equal(t, []string{"ADMIN"}, captured.Roles)
	})

	t.Run("anonymous request passes through", func(t *testing.T) {
		captured = nil

		req := httptest.NewRequest(http.MethodGet, "/console", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Nil(t, captured)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSplitRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single", value: "ADMIN", expected: []string{"ADMIN"}},
		{name: "commas", value: "A,B,C", expected: []string{"A", "B", "C"}},
		{name: "semicolons", value: "A;B", expected: []string{"A", "B"}},
		{name: "mixed with spaces", value: " A ; B , C ", expected: []string{"A", "B", "C"}},
		{name: "only separators", value: ",;,", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, splitRoles(tt.value))
		})
	}
}
