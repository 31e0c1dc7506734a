package authz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleError_Error(t *testing.T) {
	t.Parallel()

	err := newRuleError("ldap", 2, ErrEmptyPattern)

	assert.Equal(t, `access rule 2 in scope "ldap": access rule contains an empty URL pattern`, err.Error())
}

func TestRuleError_Unwrap(t *testing.T) {
	t.Parallel()

	err := newRuleError(ScopeGlobal, 0, ErrNoPatterns)

	assert.ErrorIs(t, err, ErrNoPatterns)
	assert.NotErrorIs(t, err, ErrEmptyRole)
}

func TestRuleError_SurvivesWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("building policy: %w", newRuleError("console", 1, ErrEmptyRole))

	assert.ErrorIs(t, wrapped, ErrEmptyRole)

	var ruleErr *RuleError
	require.ErrorAs(t, wrapped, &ruleErr)
	assert.Equal(t, "console", ruleErr.Scope)
	assert.Equal(t, 1, ruleErr.Index)
}

func TestIsRuleError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRuleError(newRuleError(ScopeGlobal, 0, ErrNoPatterns)))
	assert.True(t, IsRuleError(fmt.Errorf("wrapped: %w", newRuleError("svc", 1, ErrEmptyRole))))
	assert.False(t, IsRuleError(errors.New("unrelated")))
	assert.False(t, IsRuleError(nil))
}
