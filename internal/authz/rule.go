package authz

// Rule is one configured access rule: an ordered list of URL patterns
// and the access level granted to paths they match.
type Rule struct {
	// Patterns are the URL patterns the rule intercepts, in declaration
	// order. The list must be non-empty and free of empty elements.
	Patterns []string

	// Anonymous permits every caller, authenticated or not.
	Anonymous bool

	// Authenticated permits any authenticated caller.
	Authenticated bool

	// AllowedRoles permits callers holding at least one of the listed
	// roles. Names are normalized with NormalizeRole when the rule is
	// applied.
	AllowedRoles []string
}

// ServiceRules groups the access rules of one proxied service.
type ServiceRules struct {
	// Service is the service name, used as the rule scope.
	Service string

	// Rules are the service's access rules in declaration order.
	Rules []Rule
}

// RuleSet is the complete ordered access rule configuration for the
// gateway. Global rules are registered before any service rules, so
// they take precedence; services keep the order they were configured
// in, which makes cross-service precedence deterministic.
type RuleSet struct {
	// Global rules apply to the whole gateway and are registered first.
	Global []Rule

	// Services hold the per-service rules, registered after the global
	// rules in slice order.
	Services []ServiceRules
}
