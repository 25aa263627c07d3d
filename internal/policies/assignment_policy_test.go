package policies

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentPolicyResolvesExactName(t *testing.T) {
	policy := NewAssignmentPolicy([]AssignmentRule{
		{Package: "site", Matches: []string{"system.site"}},
	})

	pkg, ok := policy.Resolve("system.simple", "system.site")
	require.True(t, ok)
	if diff := cmp.Diff("site", pkg); diff != "" {
		t.Fatalf("unexpected package (-want +got):\n%s", diff)
	}
	_, ok = policy.Resolve("system.simple", "system.site_extra")
	assert.False(t, ok)
}

func TestAssignmentPolicyResolvesPrefixAndTypedPattern(t *testing.T) {
	policy := NewAssignmentPolicy([]AssignmentRule{
		{Package: "article", Matches: []string{"field.field:field.field.node.article*"}},
		{Package: "content", Matches: []string{"node.type.*"}},
	})

	pkg, ok := policy.Resolve("field.field", "field.field.node.article.body")
	require.True(t, ok)
	assert.Equal(t, "article", pkg)

	_, ok = policy.Resolve("field.storage", "field.field.node.article.body")
	assert.False(t, ok, "typed pattern must not match other types")

	pkg, ok = policy.Resolve("node.type", "node.type.page")
	require.True(t, ok)
	assert.Equal(t, "content", pkg)
}

func TestAssignmentPolicyEarliestRuleWins(t *testing.T) {
	policy := NewAssignmentPolicy([]AssignmentRule{
		{Package: "everything", Matches: []string{"*"}},
		{Package: "views", Matches: []string{"views.view.frontpage"}},
	})

	pkg, ok := policy.Resolve("views.view", "views.view.frontpage")
	require.True(t, ok)
	if diff := cmp.Diff("everything", pkg); diff != "" {
		t.Fatalf("unexpected package (-want +got):\n%s", diff)
	}
}

func TestAssignmentPolicyTypedWildcard(t *testing.T) {
	policy := NewAssignmentPolicy([]AssignmentRule{
		{Package: "roles", Matches: []string{"user.role:*"}},
	})

	assert.True(t, policy.Matches("user.role", "user.role.editor"))
	assert.False(t, policy.Matches("node.type", "node.type.page"))
}

func TestAssignmentPolicySkipsInvalidPatterns(t *testing.T) {
	policy := NewAssignmentPolicy([]AssignmentRule{
		{Package: "broken", Matches: []string{"a*b", "", "x:y:z"}},
	})

	assert.False(t, policy.Matches("system.simple", "ab"))
	assert.False(t, policy.Matches("system.simple", "x"))
}

func TestPatternSetMatches(t *testing.T) {
	set := NewPatternSet([]string{"system.*", "user.role:user.role.admin"})

	assert.True(t, set.Matches("system.simple", "system.site"))
	assert.True(t, set.Matches("user.role", "user.role.admin"))
	assert.False(t, set.Matches("user.role", "user.role.editor"))
	assert.False(t, NewPatternSet(nil).Matches("system.simple", "system.site"))
}

func TestValidatePattern(t *testing.T) {
	for _, pattern := range []string{"*", "system.site", "node.type.*", "field.field:*", "views.view:views.view.front*", "field.field:node.article.*"} {
		require.NoError(t, ValidatePattern(pattern), pattern)
	}
	for _, pattern := range []string{"", "  ", "a*b", "*:name", ":name", "a:b:c", "type:", "field.field:*.article*"} {
		err := ValidatePattern(pattern)
		require.Error(t, err, pattern)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}
