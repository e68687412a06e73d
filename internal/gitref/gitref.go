// Package gitref maps git push refs to the release parameters of the
// delivery pipeline: which image tag to publish, which runner deploys it,
// and which secret supplies the runtime environment.
package gitref

import (
	"errors"
	"fmt"
	"strings"

	"github.com/predixlabs/predix-deploy/internal/helpers"
)

const branchRefPrefix = "refs/heads/"

// ErrBranchNotConfigured is returned when a push targets a branch with no
// release rule. Callers treat this as a skip, not a failure.
var ErrBranchNotConfigured = errors.New("branch is not configured for deployment")

// Rule describes how a single branch is released. An empty Tag defaults to
// the branch name, sanitized into a valid image tag.
type Rule struct {
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty" toml:"tag,omitempty"`
	Runner    string `json:"runner" yaml:"runner" toml:"runner"`
	EnvSecret string `json:"envSecret" yaml:"env_secret" toml:"env_secret"`
}

// Release is a fully resolved deployment target for one push.
type Release struct {
	Branch    string
	Tag       string
	Runner    string
	EnvSecret string
}

// ParseBranch extracts the branch name from a fully qualified ref such as
// "refs/heads/master". Tag refs and other non-branch refs are rejected;
// the pipeline is triggered by branch pushes only.
func ParseBranch(ref string) (string, error) {
	if !strings.HasPrefix(ref, branchRefPrefix) {
		return "", fmt.Errorf("ref '%s' is not a branch ref", ref)
	}
	branch := strings.TrimPrefix(ref, branchRefPrefix)
	if branch == "" {
		return "", fmt.Errorf("ref '%s' has an empty branch name", ref)
	}
	return branch, nil
}

// Resolve looks up the release rule for a branch.
func Resolve(branch string, rules map[string]Rule) (Release, error) {
	rule, ok := rules[branch]
	if !ok {
		return Release{}, fmt.Errorf("%w: %s", ErrBranchNotConfigured, branch)
	}
	tag := rule.Tag
	if tag == "" {
		tag = helpers.SanitizeString(branch)
	}
	return Release{
		Branch:    branch,
		Tag:       tag,
		Runner:    rule.Runner,
		EnvSecret: rule.EnvSecret,
	}, nil
}

// ResolveRef parses a ref and resolves its release in one step.
func ResolveRef(ref string, rules map[string]Rule) (Release, error) {
	branch, err := ParseBranch(ref)
	if err != nil {
		return Release{}, err
	}
	return Resolve(branch, rules)
}

func (r Rule) Validate() error {
	if strings.ContainsAny(r.Tag, " \t\n\r") {
		return fmt.Errorf("tag '%s' contains whitespace", r.Tag)
	}
	if strings.TrimSpace(r.Runner) == "" {
		return errors.New("runner is required")
	}
	if strings.TrimSpace(r.EnvSecret) == "" {
		return errors.New("env secret name is required")
	}
	return nil
}
