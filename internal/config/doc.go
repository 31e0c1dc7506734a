// Package config provides configuration types and loading for the
// gateway.
//
// This package defines the complete configuration model, YAML loading
// with environment variable substitution, and validation. Configuration
// is read once at startup; there is no dynamic reconfiguration.
//
// # Features
//
//   - YAML configuration file loading
//   - Environment variable substitution with ${VAR:-default} syntax
//   - Configuration validation with detailed error reporting
//   - Listener, service, access-rule, and observability config
//
// # Configuration Loading
//
// Load configuration from a YAML file:
//
//	loader := config.NewLoader()
//	cfg, err := loader.Load("gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// # Access rules
//
// Access rules protect URL patterns globally and per service. Services
// are declared as a YAML sequence; their declaration order fixes the
// order in which their rules take effect.
package config
