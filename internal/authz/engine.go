package authz

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/routegate/routegate/internal/auth"
	"github.com/routegate/routegate/internal/observability"
	"github.com/routegate/routegate/internal/pattern"
)

// engineTracer is the OTEL tracer used for policy evaluation.
var engineTracer = otel.Tracer("routegate/authz")

// Action is the engine's verdict for request paths no binding matches.
type Action string

const (
	// ActionAllow permits unmatched requests.
	ActionAllow Action = "allow"

	// ActionDeny rejects unmatched requests.
	ActionDeny Action = "deny"
)

// Decision is the result of evaluating a request path against the
// policy.
type Decision struct {
	// Allowed indicates if the request is allowed.
	Allowed bool

	// Reason explains the decision.
	Reason string

	// Pattern is the URL pattern that matched, empty when no binding
	// matched and the default action applied.
	Pattern string

	// Access is the predicate of the matched binding.
	Access Predicate
}

// binding is one registered (patterns, predicate) entry.
type binding struct {
	patterns []*pattern.Pattern
	access   Predicate
}

// Engine is the reference Registrar implementation. It compiles
// patterns at registration time and evaluates request paths against the
// bindings in registration order; the first matching pattern wins.
//
// Registration must finish before the engine starts serving: the
// binding list is append-only during Register and read-only afterwards,
// which makes concurrent Authorize calls safe without locking.
type Engine struct {
	bindings      []binding
	defaultAction Action
	logger        observability.Logger
	metrics       *Metrics
}

// EngineOption is a functional option for the Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger observability.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEngineMetrics sets the metrics.
func WithEngineMetrics(metrics *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithDefaultAction sets the verdict for paths no binding matches.
func WithDefaultAction(action Action) EngineOption {
	return func(e *Engine) {
		e.defaultAction = action
	}
}

// NewEngine creates a new Engine. Unmatched paths are denied unless
// WithDefaultAction(ActionAllow) is given.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		defaultAction: ActionDeny,
		logger:        observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = NewMetrics("gateway")
	}

	return e
}

// Register implements Registrar. Patterns are compiled eagerly so an
// invalid pattern fails the policy build instead of the first request
// that hits it.
func (e *Engine) Register(patterns []string, access Predicate) error {
	compiled := make([]*pattern.Pattern, 0, len(patterns))
	for _, raw := range patterns {
		p, err := pattern.Compile(raw)
		if err != nil {
			return fmt.Errorf("failed to compile pattern %q: %w", raw, err)
		}
		compiled = append(compiled, p)
	}

	e.bindings = append(e.bindings, binding{
		patterns: compiled,
		access:   access,
	})
	return nil
}

// BindingCount returns the number of registered bindings.
func (e *Engine) BindingCount() int {
	return len(e.bindings)
}

// Authorize evaluates a request path against the registered bindings in
// registration order. The first binding with a matching pattern
// decides; when nothing matches the default action applies.
func (e *Engine) Authorize(ctx context.Context, path string, identity *auth.Identity) Decision {
	start := time.Now()

	_, span := engineTracer.Start(ctx, "authz.authorize",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("authz.path", path),
		),
	)
	defer span.End()

	decision := e.evaluate(path, identity)

	span.SetAttributes(
		attribute.Bool("authz.allowed", decision.Allowed),
		attribute.String("authz.reason", decision.Reason),
		attribute.String("authz.pattern", decision.Pattern),
	)

	result := "denied"
	if decision.Allowed {
		result = "allowed"
	}
	e.metrics.RecordDecision(result, decision.Reason, time.Since(start))

	e.logger.Debug("authorization decision",
		observability.String("path", path),
		observability.String("subject", subjectOf(identity)),
		observability.Bool("allowed", decision.Allowed),
		observability.String("reason", decision.Reason),
		observability.String("pattern", decision.Pattern),
	)

	return decision
}

// evaluate walks the bindings in registration order.
func (e *Engine) evaluate(path string, identity *auth.Identity) Decision {
	for _, b := range e.bindings {
		for _, p := range b.patterns {
			if p.Match(path) {
				return e.decide(b.access, p.String(), identity)
			}
		}
	}

	if e.defaultAction == ActionAllow {
		return Decision{Allowed: true, Reason: ReasonDefaultAllow}
	}
	return Decision{Allowed: false, Reason: ReasonDefaultDeny}
}

// decide applies the matched binding's predicate to the identity.
func (e *Engine) decide(access Predicate, matched string, identity *auth.Identity) Decision {
	d := Decision{
		Pattern: matched,
		Access:  access,
	}

	switch {
	case access.Satisfied(identity):
		d.Allowed = true
		d.Reason = ReasonPermitted
	case !identity.IsAuthenticated():
		d.Reason = ReasonUnauthenticated
	default:
		d.Reason = ReasonForbidden
	}

	return d
}

// subjectOf returns the identity subject for log output.
func subjectOf(identity *auth.Identity) string {
	if identity == nil {
		return "anonymous"
	}
	return identity.Subject
}

// Ensure Engine implements Registrar.
var _ Registrar = (*Engine)(nil)
