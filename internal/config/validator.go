package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates gateway configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a gateway configuration.
func ValidateConfig(config *GatewayConfig) error {
	v := NewValidator()
	return v.Validate(config)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *GatewayConfig) error {
	v.errors = make(ValidationErrors, 0)

	if config == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateRoot(config)
	v.validateMetadata(&config.Metadata)
	v.validateSpec(&config.Spec)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateRoot validates root-level fields.
func (v *Validator) validateRoot(config *GatewayConfig) {
	if config.APIVersion == "" {
		v.addError("apiVersion", "apiVersion is required")
	} else if !strings.HasPrefix(config.APIVersion, APIVersionPrefix) {
		v.addError("apiVersion", fmt.Sprintf("apiVersion must start with '%s'", APIVersionPrefix))
	}

	if config.Kind == "" {
		v.addError("kind", "kind is required")
	} else if config.Kind != KindGateway {
		v.addError("kind", fmt.Sprintf("kind must be '%s'", KindGateway))
	}
}

// validateMetadata validates metadata fields.
func (v *Validator) validateMetadata(metadata *Metadata) {
	if metadata.Name == "" {
		v.addError("metadata.name", "name is required")
	}
}

// validateSpec validates the gateway spec.
func (v *Validator) validateSpec(spec *GatewaySpec) {
	if len(spec.Listeners) == 0 {
		v.addError("spec.listeners", "at least one listener is required")
	}

	v.validateListeners(spec.Listeners)
	v.validateDefaultPolicy(spec.DefaultPolicy)
	v.validateAccessRules(spec.AccessRules, "spec.accessRules")
	v.validateServices(spec.Services)

	if spec.RateLimit != nil {
		v.validateRateLimit(spec.RateLimit, "spec.rateLimit")
	}

	if spec.Observability != nil {
		v.validateObservability(spec.Observability, "spec.observability")
	}
}

// validateListeners validates listener configurations.
func (v *Validator) validateListeners(listeners []Listener) {
	names := make(map[string]bool)
	ports := make(map[int]string)

	for i := range listeners {
		listener := &listeners[i]
		path := fmt.Sprintf("spec.listeners[%d]", i)
		v.validateListenerName(listener, path, names)
		v.validateListenerPort(listener, path, ports)
		v.validateListenerProtocol(listener, path)
		v.validateListenerBind(listener, path)
	}
}

// validateListenerName validates listener name uniqueness.
func (v *Validator) validateListenerName(listener *Listener, path string, names map[string]bool) {
	switch {
	case listener.Name == "":
		v.addError(path+".name", "listener name is required")
	case names[listener.Name]:
		v.addError(path+".name", fmt.Sprintf("duplicate listener name: %s", listener.Name))
	default:
		names[listener.Name] = true
	}
}

// validateListenerPort validates listener port uniqueness.
func (v *Validator) validateListenerPort(listener *Listener, path string, ports map[int]string) {
	if listener.Port < 1 || listener.Port > 65535 {
		v.addError(path+".port", fmt.Sprintf("port must be between 1 and 65535, got %d", listener.Port))
		return
	}
	if existingName, exists := ports[listener.Port]; exists {
		v.addError(path+".port", fmt.Sprintf("port %d already used by listener %s", listener.Port, existingName))
		return
	}
	ports[listener.Port] = listener.Name
}

// validateListenerProtocol validates listener protocol.
func (v *Validator) validateListenerProtocol(listener *Listener, path string) {
	switch {
	case listener.Protocol == "":
		v.addError(path+".protocol", "protocol is required")
	case listener.Protocol != "HTTP":
		v.addError(path+".protocol", "protocol must be HTTP")
	}
}

// validateListenerBind validates listener bind address.
func (v *Validator) validateListenerBind(listener *Listener, path string) {
	if listener.Bind != "" && net.ParseIP(listener.Bind) == nil {
		v.addError(path+".bind", fmt.Sprintf("invalid bind address: %s", listener.Bind))
	}
}

// validateDefaultPolicy validates the default access policy.
func (v *Validator) validateDefaultPolicy(policy string) {
	switch policy {
	case "", PolicyAllow, PolicyDeny:
	default:
		v.addError("spec.defaultPolicy",
			fmt.Sprintf("defaultPolicy must be '%s' or '%s', got '%s'", PolicyAllow, PolicyDeny, policy))
	}
}

// validateServices validates service configurations.
func (v *Validator) validateServices(services []Service) {
	names := make(map[string]bool)

	for i := range services {
		service := &services[i]
		path := fmt.Sprintf("spec.services[%d]", i)

		switch {
		case service.Name == "":
			v.addError(path+".name", "service name is required")
		case names[service.Name]:
			v.addError(path+".name", fmt.Sprintf("duplicate service name: %s", service.Name))
		default:
			names[service.Name] = true
		}

		v.validateServiceTarget(service, path)

		if service.Prefix != "" && !strings.HasPrefix(service.Prefix, "/") {
			v.addError(path+".prefix", "prefix must start with '/'")
		}

		v.validateAccessRules(service.AccessRules, path+".accessRules")
	}
}

// validateServiceTarget validates the upstream target URL.
func (v *Validator) validateServiceTarget(service *Service, path string) {
	if service.Target == "" {
		v.addError(path+".target", "service target is required")
		return
	}

	target, err := url.Parse(service.Target)
	if err != nil {
		v.addError(path+".target", fmt.Sprintf("invalid target URL: %v", err))
		return
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		v.addError(path+".target", "target scheme must be http or https")
	}
	if target.Host == "" {
		v.addError(path+".target", "target host is required")
	}
}

// validateAccessRules validates a list of access rules. These checks
// mirror the ones the policy builder performs so that a bad rule fails
// with a YAML path before policy construction even starts.
func (v *Validator) validateAccessRules(rules []AccessRule, path string) {
	for i := range rules {
		rule := &rules[i]
		rulePath := fmt.Sprintf("%s[%d]", path, i)

		if len(rule.InterceptURLs) == 0 {
			v.addError(rulePath+".interceptUrls", "at least one intercept URL pattern is required")
		}
		for j, pattern := range rule.InterceptURLs {
			if pattern == "" {
				v.addError(fmt.Sprintf("%s.interceptUrls[%d]", rulePath, j), "pattern must not be empty")
			}
		}
		for j, role := range rule.AllowedRoles {
			if role == "" {
				v.addError(fmt.Sprintf("%s.allowedRoles[%d]", rulePath, j), "role name must not be empty")
			}
		}
	}
}

// validateRateLimit validates rate limit configuration.
func (v *Validator) validateRateLimit(cfg *RateLimitConfig, path string) {
	if !cfg.Enabled {
		return
	}
	if cfg.RequestsPerSecond <= 0 {
		v.addError(path+".requestsPerSecond", "requestsPerSecond must be positive when rate limiting is enabled")
	}
	if cfg.Burst < 0 {
		v.addError(path+".burst", "burst must not be negative")
	}
}

// validateObservability validates observability configuration.
func (v *Validator) validateObservability(cfg *ObservabilityConfig, path string) {
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if cfg.Metrics.Port != 0 && (cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535) {
			v.addError(path+".metrics.port", fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Metrics.Port))
		}
	}

	if cfg.Tracing != nil && cfg.Tracing.Enabled {
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			v.addError(path+".tracing.samplingRate", "samplingRate must be between 0.0 and 1.0")
		}
	}

	if cfg.Logging != nil && cfg.Logging.Level != "" {
		validLevels := map[string]bool{
			"debug": true, "info": true, "warn": true, "error": true,
		}
		if !validLevels[cfg.Logging.Level] {
			v.addError(path+".logging.level", "level must be debug, info, warn, or error")
		}
	}
}

// addError adds a validation error.
func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Message: message,
	})
}
