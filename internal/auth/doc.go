// Package auth defines the identity model consumed by the gateway.
//
// The gateway does not authenticate users. Authentication happens in an
// upstream component (an authenticating reverse proxy, an SSO sidecar);
// this package adopts the identity that component established and makes
// it available to access-rule enforcement via the request context.
//
// # Identity
//
// Identity carries the subject and its roles:
//
//	identity, ok := auth.IdentityFromContext(r.Context())
//	if ok && identity.HasAnyRole("ROLE_ADMIN") {
//	    ...
//	}
//
// # Trusted headers
//
// NewHeaderIdentifier builds the middleware that adopts identities from
// trusted headers (X-Auth-User, X-Auth-Roles by default). It must only
// be enabled when the upstream strips those headers from client traffic.
package auth
