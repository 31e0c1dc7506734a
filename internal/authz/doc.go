// Package authz builds and evaluates the gateway's URL access policy.
//
// The policy is assembled exactly once at startup from ordered access
// rules: global rules first, then each service's rules in the order the
// services are configured. The Builder validates every rule, resolves
// its access predicate, and registers (patterns, predicate) bindings on
// a Registrar. Registration order is evaluation precedence: the Engine,
// the reference Registrar implementation, answers each request with the
// first binding whose pattern matches the request path.
//
// # Access resolution
//
// Exactly one access level applies per rule; the first field that is
// set wins:
//
//   - anonymous: every caller is permitted
//   - authenticated: any authenticated caller is permitted
//   - allowedRoles: callers holding at least one of the listed roles
//     are permitted; names are normalized with the ROLE_ prefix
//
// A rule that sets none of them requires authentication and is reported
// once as a warning.
//
// # Usage
//
// Build the policy into an engine and enforce it as middleware:
//
//	engine := authz.NewEngine(
//	    authz.WithEngineLogger(logger),
//	    authz.WithDefaultAction(authz.ActionDeny),
//	)
//	builder := authz.NewBuilder(authz.WithBuilderLogger(logger))
//	if err := builder.Build(authz.ConvertFromGatewayConfig(&cfg.Spec), engine); err != nil {
//	    log.Fatal(err)
//	}
//	handler := engine.HTTPMiddleware()(mux)
//
// The package never authenticates callers; identities are established
// upstream and consumed from the request context.
package authz
