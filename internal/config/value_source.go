package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/docker/docker/api/types/registry"
)

// ValueSource is a credential reference: a plain value, an environment
// variable name, or the name of a secret in the encrypted store.
type ValueSource struct {
	Type  string `json:"type" yaml:"type" toml:"type"` // "env", "secret", or "plain"
	Value string `json:"value" yaml:"value" toml:"value"`
}

// SecretLookup resolves a secret name to its decrypted value.
type SecretLookup func(name string) (string, error)

func (vs ValueSource) Validate() error {
	if vs.Type == "" {
		return fmt.Errorf("value source type is required")
	}
	if !slices.Contains([]string{"env", "secret", "plain"}, vs.Type) {
		return fmt.Errorf("value source type '%s' is invalid (must be 'env', 'secret', or 'plain')", vs.Type)
	}
	if vs.Value == "" {
		return fmt.Errorf("value source value is required")
	}
	return nil
}

// Resolve returns the concrete value behind the source. lookup is only
// consulted for the "secret" type and may be nil otherwise.
func (vs ValueSource) Resolve(lookup SecretLookup) (string, error) {
	switch vs.Type {
	case "env":
		return os.Getenv(vs.Value), nil
	case "secret":
		if lookup == nil {
			return "", fmt.Errorf("secret '%s' referenced but no secret store is available", vs.Value)
		}
		return lookup(vs.Value)
	case "plain":
		return vs.Value, nil
	default:
		return "", fmt.Errorf("unsupported value source type: %s", vs.Type)
	}
}

type RegistryAuth struct {
	// Server is optional. If not set, it is parsed from the image repository.
	Server   string      `json:"server,omitempty" yaml:"server,omitempty" toml:"server,omitempty"`
	Username ValueSource `json:"username" yaml:"username" toml:"username"`
	Password ValueSource `json:"password" yaml:"password" toml:"password"`
}

func (ra *RegistryAuth) Validate() error {
	if strings.TrimSpace(ra.Server) != "" && strings.ContainsAny(ra.Server, " \t\n\r") {
		return fmt.Errorf("image.registry.server '%s' contains whitespace", ra.Server)
	}
	if err := ra.Username.Validate(); err != nil {
		return fmt.Errorf("image.registry.username: %w", err)
	}
	if err := ra.Password.Validate(); err != nil {
		return fmt.Errorf("image.registry.password: %w", err)
	}
	return nil
}

// AuthString encodes the registry credentials for the docker API
// X-Registry-Auth header. Returns "" when no auth is configured.
func (i *Image) AuthString(lookup SecretLookup) (string, error) {
	if i.RegistryAuth == nil {
		return "", nil
	}
	username, err := i.RegistryAuth.Username.Resolve(lookup)
	if err != nil {
		return "", err
	}
	password, err := i.RegistryAuth.Password.Resolve(lookup)
	if err != nil {
		return "", err
	}

	server := "index.docker.io"
	if i.RegistryAuth.Server != "" {
		server = i.RegistryAuth.Server
	} else {
		// Parse the registry host from the repository, e.g. "ghcr.io/org/app".
		parts := strings.SplitN(i.Repository, "/", 2)
		if len(parts) > 1 && strings.Contains(parts[0], ".") {
			server = parts[0]
		}
	}

	authConfig := registry.AuthConfig{
		Username:      username,
		Password:      password,
		ServerAddress: server,
	}
	authStr, err := registry.EncodeAuthConfig(authConfig)
	if err != nil {
		return "", fmt.Errorf("failed to encode registry auth: %w", err)
	}
	return authStr, nil
}
