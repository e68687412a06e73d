package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var appNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Validate checks that a normalized Config is well-formed.
func (c *Config) Validate() error {
	if !appNamePattern.MatchString(c.Name) {
		return fmt.Errorf("invalid app name '%s'; must contain only alphanumeric characters, hyphens, and underscores", c.Name)
	}

	if strings.TrimSpace(c.Image.Repository) == "" {
		return errors.New("image.repository is required")
	}
	if strings.ContainsAny(c.Image.Repository, " \t\n\r") {
		return fmt.Errorf("image.repository '%s' contains whitespace", c.Image.Repository)
	}
	if c.Image.RegistryAuth != nil {
		if err := c.Image.RegistryAuth.Validate(); err != nil {
			return err
		}
	}
	if c.Image.Builder != nil {
		if c.Image.Builder.Dockerfile == "" {
			return errors.New("image.builder.dockerfile is required when a builder is configured")
		}
	}

	if len(c.Branches) == 0 {
		return errors.New("at least one branch rule is required")
	}
	for branch, rule := range c.Branches {
		if strings.TrimSpace(branch) == "" {
			return errors.New("branch name cannot be empty")
		}
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("branches.%s: %w", branch, err)
		}
	}

	for _, mapping := range c.Ports {
		if err := mapping.Validate(); err != nil {
			return fmt.Errorf("invalid port mapping '%s': %w", mapping, err)
		}
	}

	for _, volume := range c.Volumes {
		// Expected format: /host/path:/container/path[:options]
		parts := strings.Split(volume, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("invalid volume mapping '%s'; expected '/host/path:/container/path[:options]'", volume)
		}
		if !filepath.IsAbs(parts[0]) {
			return fmt.Errorf("volume host path '%s' in '%s' is not an absolute path", parts[0], volume)
		}
		if !filepath.IsAbs(parts[1]) {
			return fmt.Errorf("volume container path '%s' in '%s' is not an absolute path", parts[1], volume)
		}
	}

	if c.Server.Runner != "" && strings.ContainsAny(c.Server.Runner, " \t\n\r") {
		return fmt.Errorf("server.runner '%s' contains whitespace", c.Server.Runner)
	}

	return nil
}
