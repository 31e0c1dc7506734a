package config

// AccessRule restricts access to a set of URL patterns.
//
// Exactly one access constraint applies per rule, resolved in this
// order: anonymous grants public access, authenticated requires any
// established identity, allowedRoles requires at least one of the
// listed roles. A rule with none of the three set falls back to
// requiring authentication.
type AccessRule struct {
	// InterceptURLs is the ordered list of ant-style path patterns
	// this rule protects. At least one pattern is required.
	InterceptURLs []string `yaml:"interceptUrls"`

	// Anonymous grants access to everybody, including callers with
	// no established identity.
	Anonymous bool `yaml:"anonymous,omitempty"`

	// Authenticated grants access to any caller with an established
	// identity, regardless of roles.
	Authenticated bool `yaml:"authenticated,omitempty"`

	// AllowedRoles grants access to callers holding at least one of
	// these roles. Role names may omit the ROLE_ prefix.
	AllowedRoles []string `yaml:"allowedRoles,omitempty"`
}

// Service is a proxied application fronted by the gateway.
type Service struct {
	// Name is the unique identifier for this service.
	Name string `yaml:"name"`

	// Target is the upstream base URL requests are proxied to.
	Target string `yaml:"target"`

	// Prefix is the path prefix routed to this service. Defaults to
	// "/" + Name.
	Prefix string `yaml:"prefix,omitempty"`

	// AccessRules are the service's access rules, applied after the
	// global rules in declaration order.
	AccessRules []AccessRule `yaml:"accessRules,omitempty"`
}

// EffectivePrefix returns the configured prefix, or the conventional
// "/" + name default.
func (s *Service) EffectivePrefix() string {
	if s.Prefix != "" {
		return s.Prefix
	}
	return "/" + s.Name
}
