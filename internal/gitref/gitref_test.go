package gitref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRules = map[string]Rule{
	"master":  {Tag: "latest", Runner: "prod", EnvSecret: "ENV_PRD"},
	"develop": {Tag: "develop", Runner: "dev", EnvSecret: "ENV_DEV"},
}

func TestParseBranch(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		expected  string
		expectErr bool
	}{
		{name: "master", ref: "refs/heads/master", expected: "master"},
		{name: "develop", ref: "refs/heads/develop", expected: "develop"},
		{name: "nested branch", ref: "refs/heads/feature/login", expected: "feature/login"},
		{name: "tag ref", ref: "refs/tags/v1.0.0", expectErr: true},
		{name: "bare branch name", ref: "master", expectErr: true},
		{name: "empty branch", ref: "refs/heads/", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branch, err := ParseBranch(tt.ref)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, branch)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("master resolves to latest/prod/ENV_PRD", func(t *testing.T) {
		release, err := Resolve("master", defaultRules)
		require.NoError(t, err)
		assert.Equal(t, "latest", release.Tag)
		assert.Equal(t, "prod", release.Runner)
		assert.Equal(t, "ENV_PRD", release.EnvSecret)
	})

	t.Run("develop resolves to develop/dev/ENV_DEV", func(t *testing.T) {
		release, err := Resolve("develop", defaultRules)
		require.NoError(t, err)
		assert.Equal(t, "develop", release.Tag)
		assert.Equal(t, "dev", release.Runner)
		assert.Equal(t, "ENV_DEV", release.EnvSecret)
	})

	t.Run("unconfigured branch is a skip", func(t *testing.T) {
		_, err := Resolve("feature/login", defaultRules)
		assert.ErrorIs(t, err, ErrBranchNotConfigured)
	})

	t.Run("empty tag defaults to sanitized branch name", func(t *testing.T) {
		rules := map[string]Rule{
			"release/v2": {Runner: "prod", EnvSecret: "ENV_PRD"},
		}
		release, err := Resolve("release/v2", rules)
		require.NoError(t, err)
		assert.Equal(t, "release_v2", release.Tag)
	})
}

func TestResolveRef(t *testing.T) {
	release, err := ResolveRef("refs/heads/master", defaultRules)
	require.NoError(t, err)
	assert.Equal(t, "master", release.Branch)
	assert.Equal(t, "latest", release.Tag)

	_, err = ResolveRef("refs/tags/v1.0.0", defaultRules)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBranchNotConfigured)
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		expectErr string
	}{
		{name: "valid", rule: Rule{Tag: "latest", Runner: "prod", EnvSecret: "ENV_PRD"}},
		{name: "empty tag is allowed", rule: Rule{Runner: "prod", EnvSecret: "ENV_PRD"}},
		{name: "tag with whitespace", rule: Rule{Tag: "la test", Runner: "prod", EnvSecret: "ENV_PRD"}, expectErr: "contains whitespace"},
		{name: "missing runner", rule: Rule{Tag: "latest", EnvSecret: "ENV_PRD"}, expectErr: "runner is required"},
		{name: "missing env secret", rule: Rule{Tag: "latest", Runner: "prod"}, expectErr: "env secret name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.expectErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.expectErr)
			}
		})
	}
}
