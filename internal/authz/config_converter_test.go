package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegate/routegate/internal/config"
)

func TestConvertFromGatewayConfig(t *testing.T) {
	t.Parallel()

	spec := &config.GatewaySpec{
		AccessRules: []config.AccessRule{
			{InterceptURLs: []string{"/login"}, Anonymous: true},
			{InterceptURLs: []string{"/console/**"}, Authenticated: true},
		},
		Services: []config.Service{
			{
				Name:   "ldap",
				Target: "http://ldap:8080",
				AccessRules: []config.AccessRule{
					{InterceptURLs: []string{"/ldap/**"}, AllowedRoles: []string{"ADMIN"}},
				},
			},
			{
				Name:   "analytics",
				Target: "http://analytics:8080",
			},
		},
	}

	set := ConvertFromGatewayConfig(spec)

	require.NotNil(t, set)
	require.Len(t, set.Global, 2)
	assert.Equal(t, []string{"/login"}, set.Global[0].Patterns)
	assert.True(t, set.Global[0].Anonymous)
	assert.Equal(t, []string{"/console/**"}, set.Global[1].Patterns)
	assert.True(t, set.Global[1].Authenticated)

	require.Len(t, set.Services, 2)
	assert.Equal(t, "ldap", set.Services[0].Service)
	require.Len(t, set.Services[0].Rules, 1)
	assert.Equal(t, []string{"ADMIN"}, set.Services[0].Rules[0].AllowedRoles)

	// A service without rules still appears, in order, with an empty
	// rule list; the builder logs and skips it.
	assert.Equal(t, "analytics", set.Services[1].Service)
	assert.Empty(t, set.Services[1].Rules)
}

func TestConvertFromGatewayConfig_NilSpec(t *testing.T) {
	t.Parallel()

	set := ConvertFromGatewayConfig(nil)

	require.NotNil(t, set)
	assert.Empty(t, set.Global)
	assert.Empty(t, set.Services)
}

func TestConvertFromGatewayConfig_CopiesSlices(t *testing.T) {
	t.Parallel()

	spec := &config.GatewaySpec{
		AccessRules: []config.AccessRule{
			{InterceptURLs: []string{"/login"}, AllowedRoles: []string{"USER"}},
		},
	}

	set := ConvertFromGatewayConfig(spec)

	spec.AccessRules[0].InterceptURLs[0] = "/mutated"
	spec.AccessRules[0].AllowedRoles[0] = "MUTATED"

	require.Len(t, set.Global, 1)
	assert.Equal(t, []string{"/login"}, set.Global[0].Patterns)
	assert.Equal(t, []string{"USER"}, set.Global[0].AllowedRoles)
}

func TestActionFromPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   string
		expected Action
	}{
		{name: "allow", policy: config.PolicyAllow, expected: ActionAllow},
		{name: "deny", policy: config.PolicyDeny, expected: ActionDeny},
		{name: "empty defaults to deny", policy: "", expected: ActionDeny},
		{name: "unknown defaults to deny", policy: "reject", expected: ActionDeny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ActionFromPolicy(tt.policy))
		})
	}
}
