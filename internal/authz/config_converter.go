// Package authz builds and evaluates the gateway's URL access policy.
package authz

import (
	"github.com/routegate/routegate/internal/config"
)

// ConvertFromGatewayConfig converts the gateway spec's access rule
// configuration into the RuleSet consumed by the Builder. Declaration
// order is preserved: global rules first, then each service's rules in
// the order the services appear in the spec.
func ConvertFromGatewayConfig(spec *config.GatewaySpec) *RuleSet {
	set := &RuleSet{}
	if spec == nil {
		return set
	}

	set.Global = convertAccessRules(spec.AccessRules)

	for _, svc := range spec.Services {
		set.Services = append(set.Services, ServiceRules{
			Service: svc.Name,
			Rules:   convertAccessRules(svc.AccessRules),
		})
	}

	return set
}

// convertAccessRules converts config access rules preserving order.
// Slices are copied so later config mutation cannot reach the policy.
func convertAccessRules(rules []config.AccessRule) []Rule {
	if len(rules) == 0 {
		return nil
	}

	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Rule{
			Patterns:      append([]string(nil), r.InterceptURLs...),
			Anonymous:     r.Anonymous,
			Authenticated: r.Authenticated,
			AllowedRoles:  append([]string(nil), r.AllowedRoles...),
		})
	}
	return out
}

// ActionFromPolicy maps the spec's defaultPolicy value to an engine
// action. Unset and unknown values fall back to deny.
func ActionFromPolicy(policy string) Action {
	if policy == config.PolicyAllow {
		return ActionAllow
	}
	return ActionDeny
}
