package auth

import (
	"context"
	"errors"
	"time"
)

// Identity represents an identity established by an upstream
// authentication mechanism. The gateway never verifies credentials
// itself; it consumes identities and enforces access rules on them.
type Identity struct {
	// Subject is the unique identifier for the identity (e.g., user ID).
	Subject string `json:"sub"`

	// Name is the display name of the identity.
	Name string `json:"name,omitempty"`

	// Email is the email address of the identity.
	Email string `json:"email,omitempty"`

	// Roles contains the roles assigned to the identity.
	Roles []string `json:"roles,omitempty"`

	// Groups contains the groups the identity belongs to.
	Groups []string `json:"groups,omitempty"`

	// AuthTime is when the identity was established upstream.
	AuthTime time.Time `json:"auth_time,omitempty"`

	// Attributes contains additional metadata about the identity.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// IsAuthenticated reports whether the identity represents an
// authenticated caller. Safe to call on a nil identity.
func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.Subject != ""
}

// HasRole checks if the identity has a specific role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the identity has any of the specified roles.
func (i *Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// HasGroup checks if the identity belongs to a specific group.
func (i *Identity) HasGroup(group string) bool {
	for _, g := range i.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Context key type for identity.
type identityContextKey struct{}

// ContextWithIdentity adds an identity to the context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok
}

// ErrIdentityNotFound is returned when identity is not found in context.
var ErrIdentityNotFound = errors.New("identity not found in context")

// ErrIdentityNil is returned when identity in context is nil.
var ErrIdentityNil = errors.New("identity in context is nil")

// IdentityFromContextOrError extracts the identity from the context or
// returns an error.
//
// Returns ErrIdentityNotFound if the context does not contain an identity.
// Returns ErrIdentityNil if the identity value in the context is nil.
func IdentityFromContextOrError(ctx context.Context) (*Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrIdentityNotFound
	}
	if identity == nil {
		return nil, ErrIdentityNil
	}
	return identity, nil
}
