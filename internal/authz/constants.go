// Package authz builds and evaluates the gateway's URL access policy.
package authz

// ScopeGlobal is the scope name for access rules that are not bound to
// a service.
const ScopeGlobal = "global"

// HTTP header constants for denial responses.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderWWWAuthenticate is the WWW-Authenticate header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"
)

// Content type constants.
const (
	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"
)

// Decision reasons.
const (
	// ReasonPermitted indicates the matched binding's predicate was
	// satisfied.
	ReasonPermitted = "permitted"

	// ReasonUnauthenticated indicates the matched binding requires an
	// authenticated caller and none was present.
	ReasonUnauthenticated = "unauthenticated"

	// ReasonForbidden indicates the caller is authenticated but holds
	// none of the required roles.
	ReasonForbidden = "insufficient_roles"

	// ReasonDefaultAllow indicates no binding matched and the engine's
	// default action is allow.
	ReasonDefaultAllow = "default_allow"

	// ReasonDefaultDeny indicates no binding matched and the engine's
	// default action is deny.
	ReasonDefaultDeny = "default_deny"
)
