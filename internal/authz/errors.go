package authz

import (
	"errors"
	"fmt"
)

// Sentinel errors for access rule validation.
var (
	// ErrNoPatterns indicates that an access rule has no URL patterns.
	ErrNoPatterns = errors.New("access rule has no URL patterns")

	// ErrEmptyPattern indicates that an access rule contains an empty
	// URL pattern.
	ErrEmptyPattern = errors.New("access rule contains an empty URL pattern")

	// ErrEmptyRole indicates that an access rule contains an empty role
	// name.
	ErrEmptyRole = errors.New("access rule contains an empty role name")
)

// RuleError wraps a rule validation error with the scope and position
// of the offending rule.
type RuleError struct {
	// Scope is ScopeGlobal or the name of the service the rule belongs to.
	Scope string

	// Index is the zero-based position of the rule within its scope.
	Index int

	// Err is the underlying validation error.
	Err error
}

// Error returns the error message.
func (e *RuleError) Error() string {
	return fmt.Sprintf("access rule %d in scope %q: %v", e.Index, e.Scope, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// newRuleError creates a new RuleError.
func newRuleError(scope string, index int, err error) *RuleError {
	return &RuleError{
		Scope: scope,
		Index: index,
		Err:   err,
	}
}

// IsRuleError checks if an error is a rule validation error.
func IsRuleError(err error) bool {
	var ruleErr *RuleError
	return errors.As(err, &ruleErr)
}
