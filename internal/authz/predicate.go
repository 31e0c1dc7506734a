package authz

import (
	"fmt"
	"strings"

	"github.com/routegate/routegate/internal/auth"
)

// RolePrefix is the canonical prefix of normalized role names.
const RolePrefix = "ROLE_"

// PredicateKind identifies the access level a predicate grants.
type PredicateKind string

const (
	// KindPermitAll grants access to every caller.
	KindPermitAll PredicateKind = "permitAll"

	// KindAuthenticated grants access to any authenticated caller.
	KindAuthenticated PredicateKind = "authenticated"

	// KindAnyRole grants access to callers holding at least one of the
	// predicate's roles.
	KindAnyRole PredicateKind = "anyRole"
)

// Predicate is the access level bound to a set of URL patterns. The
// zero value grants nothing; predicates are built with PermitAll,
// RequireAuthenticated, or RequireAnyRole.
type Predicate struct {
	kind  PredicateKind
	roles []string
}

// PermitAll returns a predicate satisfied by every caller.
func PermitAll() Predicate {
	return Predicate{kind: KindPermitAll}
}

// RequireAuthenticated returns a predicate satisfied by any
// authenticated caller.
func RequireAuthenticated() Predicate {
	return Predicate{kind: KindAuthenticated}
}

// RequireAnyRole returns a predicate satisfied by callers holding at
// least one of the given roles. Roles are stored verbatim; the Builder
// normalizes configured names with NormalizeRole before constructing
// the predicate.
func RequireAnyRole(roles ...string) Predicate {
	return Predicate{
		kind:  KindAnyRole,
		roles: append([]string(nil), roles...),
	}
}

// Kind returns the predicate kind.
func (p Predicate) Kind() PredicateKind {
	return p.kind
}

// Roles returns a copy of the predicate's role list.
func (p Predicate) Roles() []string {
	if p.roles == nil {
		return nil
	}
	return append([]string(nil), p.roles...)
}

// Satisfied reports whether the identity meets the predicate's access
// level. Identity roles are accepted with or without the ROLE_ prefix.
func (p Predicate) Satisfied(identity *auth.Identity) bool {
	switch p.kind {
	case KindPermitAll:
		return true
	case KindAuthenticated:
		return identity.IsAuthenticated()
	case KindAnyRole:
		if !identity.IsAuthenticated() {
			return false
		}
		for _, have := range identity.Roles {
			if have == "" {
				continue
			}
			if !strings.HasPrefix(have, RolePrefix) {
				have = RolePrefix + have
			}
			for _, want := range p.roles {
				if have == want {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// String returns the predicate in log form.
func (p Predicate) String() string {
	switch p.kind {
	case KindPermitAll:
		return "permitAll"
	case KindAuthenticated:
		return "authenticated"
	case KindAnyRole:
		return fmt.Sprintf("hasAnyRole(%s)", strings.Join(p.roles, ", "))
	default:
		return "unspecified"
	}
}

// NormalizeRole returns the canonical form of a configured role name,
// prepending RolePrefix unless it is already present. An empty name is
// invalid.
func NormalizeRole(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyRole
	}
	if strings.HasPrefix(name, RolePrefix) {
		return name, nil
	}
	return RolePrefix + name, nil
}
