package authz

import (
	"fmt"

	"github.com/routegate/routegate/internal/observability"
)

// Registrar receives ordered (patterns, predicate) bindings from the
// Builder. Registration order is evaluation precedence: implementations
// must test bindings in the order they were registered and let the
// first matching pattern win.
type Registrar interface {
	// Register binds a list of URL patterns to an access predicate.
	Register(patterns []string, access Predicate) error
}

// Builder translates a RuleSet into ordered registrations on a
// Registrar.
type Builder struct {
	logger  observability.Logger
	metrics *Metrics
}

// BuilderOption is a functional option for the Builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the logger.
func WithBuilderLogger(logger observability.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithBuilderMetrics sets the metrics.
func WithBuilderMetrics(metrics *Metrics) BuilderOption {
	return func(b *Builder) {
		b.metrics = metrics
	}
}

// NewBuilder creates a new Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.metrics == nil {
		b.metrics = NewMetrics("gateway")
	}

	return b
}

// Build registers every rule in the set: global rules first, then each
// service's rules, services in configured order, rules in declaration
// order within each scope. It stops at the first invalid rule; a
// registrar that received an error-aborted build holds a partial policy
// and must be discarded.
func (b *Builder) Build(set *RuleSet, reg Registrar) error {
	if set == nil {
		set = &RuleSet{}
	}

	b.logger.Info("configuring access rules",
		observability.Int("globalRules", len(set.Global)),
		observability.Int("services", len(set.Services)),
	)

	if err := b.applyScope(ScopeGlobal, set.Global, reg); err != nil {
		return err
	}

	for _, svc := range set.Services {
		if err := b.applyScope(svc.Service, svc.Rules, reg); err != nil {
			return err
		}
	}

	return nil
}

// applyScope registers all rules of one scope in declaration order. A
// scope with no rules is skipped; that is normal for services that rely
// entirely on the global rules.
func (b *Builder) applyScope(scope string, rules []Rule, reg Registrar) error {
	if len(rules) == 0 {
		b.logger.Info("no access rules found",
			observability.String("scope", scope),
		)
		return nil
	}

	for i, rule := range rules {
		if err := b.ApplyRule(scope, i, rule, reg); err != nil {
			return err
		}
	}

	return nil
}

// ApplyRule validates a single rule, resolves its access predicate, and
// registers the binding. index is the rule's position within its scope,
// used for error and log context. Validation runs before registration,
// so an invalid rule never reaches the registrar.
func (b *Builder) ApplyRule(scope string, index int, rule Rule, reg Registrar) error {
	if err := validatePatterns(scope, index, rule.Patterns); err != nil {
		return err
	}

	access, err := b.resolvePredicate(scope, index, rule)
	if err != nil {
		return err
	}

	b.logger.Debug("registering access rule",
		observability.String("scope", scope),
		observability.Int("rule", index),
		observability.Strings("patterns", rule.Patterns),
		observability.String("access", access.String()),
	)

	if err := reg.Register(rule.Patterns, access); err != nil {
		return fmt.Errorf("failed to register access rule %d in scope %q: %w", index, scope, err)
	}

	b.metrics.RecordRuleRegistered(scope, access.Kind())
	return nil
}

// resolvePredicate maps a rule to its access predicate. The first
// access field that is set wins: anonymous, then authenticated, then
// allowed roles. A rule that sets none of them falls back to requiring
// authentication and is reported exactly once as a warning.
func (b *Builder) resolvePredicate(scope string, index int, rule Rule) (Predicate, error) {
	switch {
	case rule.Anonymous:
		return PermitAll(), nil

	case rule.Authenticated:
		return RequireAuthenticated(), nil

	case len(rule.AllowedRoles) > 0:
		roles := make([]string, 0, len(rule.AllowedRoles))
		for _, name := range rule.AllowedRoles {
			normalized, err := NormalizeRole(name)
			if err != nil {
				return Predicate{}, newRuleError(scope, index, err)
			}
			roles = append(roles, normalized)
		}
		return RequireAnyRole(roles...), nil

	default:
		b.logger.Warn("access rule grants no access level, defaulting to authenticated",
			observability.String("scope", scope),
			observability.Int("rule", index),
			observability.Strings("patterns", rule.Patterns),
		)
		b.metrics.RecordFallback(scope)
		return RequireAuthenticated(), nil
	}
}

// validatePatterns rejects rules whose pattern list is missing or
// contains an empty element.
func validatePatterns(scope string, index int, patterns []string) error {
	if len(patterns) == 0 {
		return newRuleError(scope, index, ErrNoPatterns)
	}
	for _, p := range patterns {
		if p == "" {
			return newRuleError(scope, index, ErrEmptyPattern)
		}
	}
	return nil
}
