package config

import (
	"testing"

	"github.com/predixlabs/predix-deploy/internal/gitref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Name:  "predix-agent",
		Image: Image{Repository: "ghcr.io/predixlabs/predix-agent"},
		Branches: map[string]gitref.Rule{
			"master": {Tag: "latest", Runner: "prod", EnvSecret: "ENV_PRD"},
		},
		Ports:   []PortMapping{{HostPort: "5021", ContainerPort: "80"}},
		Volumes: []string{"/home/ec2-user/predix-agent/logs:/code/logs"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:      "bad app name",
			mutate:    func(c *Config) { c.Name = "predix agent!" },
			expectErr: "invalid app name",
		},
		{
			name:      "missing repository",
			mutate:    func(c *Config) { c.Image.Repository = "" },
			expectErr: "image.repository is required",
		},
		{
			name:      "repository with whitespace",
			mutate:    func(c *Config) { c.Image.Repository = "ghcr.io/org/my app" },
			expectErr: "contains whitespace",
		},
		{
			name:      "no branch rules",
			mutate:    func(c *Config) { c.Branches = nil },
			expectErr: "at least one branch rule",
		},
		{
			name: "branch rule missing runner",
			mutate: func(c *Config) {
				c.Branches["develop"] = gitref.Rule{Tag: "develop", EnvSecret: "ENV_DEV"}
			},
			expectErr: "branches.develop",
		},
		{
			name:      "relative volume host path",
			mutate:    func(c *Config) { c.Volumes = []string{"logs:/code/logs"} },
			expectErr: "not an absolute path",
		},
		{
			name:      "malformed volume",
			mutate:    func(c *Config) { c.Volumes = []string{"/only-host-path"} },
			expectErr: "invalid volume mapping",
		},
		{
			name:      "bad port mapping",
			mutate:    func(c *Config) { c.Ports = []PortMapping{{HostPort: "http", ContainerPort: "80"}} },
			expectErr: "invalid port mapping",
		},
		{
			name: "builder without dockerfile",
			mutate: func(c *Config) {
				c.Image.Builder = &Builder{Context: "."}
			},
			expectErr: "image.builder.dockerfile is required",
		},
		{
			name: "registry auth missing password value",
			mutate: func(c *Config) {
				c.Image.RegistryAuth = &RegistryAuth{
					Username: ValueSource{Type: "plain", Value: "bot"},
					Password: ValueSource{Type: "env"},
				}
			},
			expectErr: "image.registry.password",
		},
		{
			name:      "runner with whitespace",
			mutate:    func(c *Config) { c.Server.Runner = "prod runner" },
			expectErr: "server.runner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
			}
		})
	}
}

func TestNormalizeDoesNotMutateReceiver(t *testing.T) {
	cfg := Config{Image: Image{Repository: "ghcr.io/predixlabs/predix-agent"}}
	normalized, err := cfg.Normalize()
	require.NoError(t, err)

	assert.Empty(t, cfg.Name)
	assert.Empty(t, cfg.Branches)
	assert.Equal(t, "predix-agent", normalized.Name)
	assert.Len(t, normalized.Branches, 2)
}
