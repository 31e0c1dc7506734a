package authz

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegate/routegate/internal/auth"
)

// newTestEngine returns an engine with metrics in a private registry.
func newTestEngine(opts ...EngineOption) *Engine {
	opts = append([]EngineOption{
		WithEngineMetrics(NewMetricsWithRegisterer("enginetest", prometheus.NewRegistry())),
	}, opts...)
	return NewEngine(opts...)
}

func TestEngine_Register_BindingCount(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	assert.Equal(t, 0, e.BindingCount())

	require.NoError(t, e.Register([]string{"/a/**", "/b/*"}, PermitAll()))
	require.NoError(t, e.Register([]string{"/c"}, RequireAuthenticated()))

	assert.Equal(t, 2, e.BindingCount())
}

func TestEngine_Authorize_FirstMatchWins(t *testing.T) {
	t.Parallel()

	// Both bindings match /api/admin/users; the earlier registration
	// must decide even though the later one is more specific.
	e := newTestEngine()
	require.NoError(t, e.Register([]string{"/api/**"}, PermitAll()))
	require.NoError(t, e.Register([]string{"/api/admin/**"}, RequireAnyRole("ROLE_ADMIN")))

	decision := e.Authorize(context.Background(), "/api/admin/users", nil)

	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonPermitted, decision.Reason)
	assert.Equal(t, "/api/**", decision.Pattern)
	assert.Equal(t, KindPermitAll, decision.Access.Kind())
}

func TestEngine_Authorize_WorkedExample(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	require.NoError(t, e.Register([]string{"/login"}, PermitAll()))
	require.NoError(t, e.Register([]string{"/ldap/**"}, RequireAnyRole("ROLE_ADMIN")))

	admin := &auth.Identity{Subject: "alice", Roles: []string{"ROLE_ADMIN"}}
	user := &auth.Identity{Subject: "bob", Roles: []string{"ROLE_USER"}}

	tests := []struct {
		name        string
		path        string
		identity    *auth.Identity
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "login is open to anonymous callers",
			path:        "/login",
			identity:    nil,
			wantAllowed: true,
			wantReason:  ReasonPermitted,
		},
		{
			name:        "ldap rejects anonymous callers",
			path:        "/ldap/users",
			identity:    nil,
			wantAllowed: false,
			wantReason:  ReasonUnauthenticated,
		},
		{
			name:        "ldap admits the admin role",
			path:        "/ldap/users",
			identity:    admin,
			wantAllowed: true,
			wantReason:  ReasonPermitted,
		},
		{
			name:        "ldap rejects other roles",
			path:        "/ldap/users",
			identity:    user,
			wantAllowed: false,
			wantReason:  ReasonForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision := e.Authorize(context.Background(), tt.path, tt.identity)

			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			assert.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestEngine_Authorize_DefaultAction(t *testing.T) {
	t.Parallel()

	t.Run("deny by default", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine()
		require.NoError(t, e.Register([]string{"/known"}, PermitAll()))

		decision := e.Authorize(context.Background(), "/unknown", nil)

		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonDefaultDeny, decision.Reason)
		assert.Empty(t, decision.Pattern)
	})

	t.Run("allow when configured", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(WithDefaultAction(ActionAllow))
		require.NoError(t, e.Register([]string{"/known"}, PermitAll()))

		decision := e.Authorize(context.Background(), "/unknown", nil)

		assert.True(t, decision.Allowed)
		assert.Equal(t, ReasonDefaultAllow, decision.Reason)
	})
}

func TestEngine_Authorize_UnprefixedIdentityRole(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	require.NoError(t, e.Register([]string{"/ops/**"}, RequireAnyRole("ROLE_OPERATOR")))

	identity := &auth.Identity{Subject: "eve", Roles: []string{"OPERATOR"}}
	decision := e.Authorize(context.Background(), "/ops/restart", identity)

	assert.True(t, decision.Allowed)
}

func TestEngine_Authorize_MultiplePatternsInOneBinding(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	require.NoError(t, e.Register([]string{"/health", "/ready", "/metrics"}, PermitAll()))

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		decision := e.Authorize(context.Background(), path, nil)
		assert.True(t, decision.Allowed, "path %s", path)
		assert.Equal(t, path, decision.Pattern)
	}
}

func TestEngine_Authorize_AuthenticatedBinding(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	require.NoError(t, e.Register([]string{"/account/**"}, RequireAuthenticated()))

	anonymous := e.Authorize(context.Background(), "/account/profile", nil)
	assert.False(t, anonymous.Allowed)
	assert.Equal(t, ReasonUnauthenticated, anonymous.Reason)

	identity := &auth.Identity{Subject: "frank"}
	authenticated := e.Authorize(context.Background(), "/account/profile", identity)
	assert.True(t, authenticated.Allowed)
	assert.Equal(t, ReasonPermitted, authenticated.Reason)
}
