// Package config provides configuration management for the gateway.
// Configuration is loaded from a YAML file with environment variable
// substitution, then validated before any component is built from it.
package config

import "time"

// APIVersionPrefix is the required prefix for the apiVersion field.
const APIVersionPrefix = "routegate.io/"

// KindGateway is the only supported configuration kind.
const KindGateway = "Gateway"

// Default server settings.
const (
	// DefaultHTTPPort is the default listener port.
	DefaultHTTPPort = 8080

	// DefaultMetricsPort is the default admin/metrics server port.
	DefaultMetricsPort = 9090

	// DefaultMetricsPath is the default metrics endpoint path.
	DefaultMetricsPath = "/metrics"

	// DefaultReadTimeout is the default read timeout for listeners.
	DefaultReadTimeout = 30 * time.Second

	// DefaultReadHeaderTimeout is the default header read timeout.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default write timeout for listeners.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the default idle timeout for listeners.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = 30 * time.Second
)

// Default access policy values.
const (
	// PolicyAllow permits requests that match no access rule.
	PolicyAllow = "allow"

	// PolicyDeny rejects requests that match no access rule.
	PolicyDeny = "deny"
)

// GatewayConfig is the root configuration document.
type GatewayConfig struct {
	APIVersion string      `yaml:"apiVersion"`
	Kind       string      `yaml:"kind"`
	Metadata   Metadata    `yaml:"metadata"`
	Spec       GatewaySpec `yaml:"spec"`
}

// Metadata contains identifying information for the gateway.
type Metadata struct {
	Name        string            `yaml:"name"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// GatewaySpec is the gateway specification.
//
// Services is a sequence, not a mapping: the declaration order of
// services determines the precedence order of their access rules, so
// the document must preserve it.
type GatewaySpec struct {
	Listeners     []Listener           `yaml:"listeners"`
	DefaultPolicy string               `yaml:"defaultPolicy,omitempty"`
	Identity      *IdentityConfig      `yaml:"identity,omitempty"`
	AccessRules   []AccessRule         `yaml:"accessRules,omitempty"`
	Services      []Service            `yaml:"services,omitempty"`
	RateLimit     *RateLimitConfig     `yaml:"rateLimit,omitempty"`
	Observability *ObservabilityConfig `yaml:"observability,omitempty"`
}

// IdentityConfig configures how the gateway consumes identities
// established by an upstream authentication mechanism.
type IdentityConfig struct {
	TrustedHeaders TrustedHeadersConfig `yaml:"trustedHeaders,omitempty"`
}

// TrustedHeadersConfig configures identity adoption from trusted headers.
type TrustedHeadersConfig struct {
	Enabled     bool   `yaml:"enabled"`
	UserHeader  string `yaml:"userHeader,omitempty"`
	RolesHeader string `yaml:"rolesHeader,omitempty"`
}

// RateLimitConfig configures the global request rate limit. When
// PerClient is set the limit applies per client address instead of
// to the gateway as a whole.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`
	Burst             int     `yaml:"burst,omitempty"`
	PerClient         bool    `yaml:"perClient,omitempty"`
}

// DefaultConfig returns a minimal configuration with defaults applied.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		APIVersion: APIVersionPrefix + "v1",
		Kind:       KindGateway,
		Metadata: Metadata{
			Name: "routegate",
		},
		Spec: GatewaySpec{
			Listeners: []Listener{
				{
					Name:     "http",
					Port:     DefaultHTTPPort,
					Protocol: "HTTP",
				},
			},
			DefaultPolicy: PolicyDeny,
		},
	}
}
