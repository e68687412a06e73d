package config

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/gitref"
)

// Config is the deployment manifest for the agent container. It describes
// the image to build, the branch rules that pick tag/runner/env secret, and
// how the container is run on the target host.
type Config struct {
	Name     string                 `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Image    Image                  `json:"image" yaml:"image" toml:"image"`
	Branches map[string]gitref.Rule `json:"branches,omitempty" yaml:"branches,omitempty" toml:"branches,omitempty"`
	Ports    []PortMapping          `json:"ports,omitempty" yaml:"ports,omitempty" toml:"ports,omitempty"`
	Volumes  []string               `json:"volumes,omitempty" yaml:"volumes,omitempty" toml:"volumes,omitempty"`
	EnvFile  string                 `json:"envFile,omitempty" yaml:"env_file,omitempty" toml:"env_file,omitempty"`
	Lint     *Lint                  `json:"lint,omitempty" yaml:"lint,omitempty" toml:"lint,omitempty"`
	Server   Server                 `json:"server,omitempty" yaml:"server,omitempty" toml:"server,omitempty"`

	// Format is the file format the config was loaded from ("json",
	// "yaml" or "toml"), kept for error messages. Not user-settable.
	Format string `json:"-" yaml:"-" toml:"-"`
}

type Image struct {
	Repository   string        `json:"repository" yaml:"repository" toml:"repository"`
	Builder      *Builder      `json:"builder,omitempty" yaml:"builder,omitempty" toml:"builder,omitempty"`
	RegistryAuth *RegistryAuth `json:"registry,omitempty" yaml:"registry,omitempty" toml:"registry,omitempty"`
}

// Ref returns the full image reference for a tag, e.g.
// "ghcr.io/predixlabs/predix-agent:latest".
func (i *Image) Ref(tag string) string {
	return fmt.Sprintf("%s:%s", i.Repository, tag)
}

type Builder struct {
	Dockerfile string            `json:"dockerfile,omitempty" yaml:"dockerfile,omitempty" toml:"dockerfile,omitempty"`
	Context    string            `json:"context,omitempty" yaml:"context,omitempty" toml:"context,omitempty"`
	Args       map[string]string `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
}

type Lint struct {
	// Config is the path to the Python lint configuration validated as a
	// pre-flight check before the build stage.
	Config string `json:"config,omitempty" yaml:"config,omitempty" toml:"config,omitempty"`
}

type Server struct {
	ListenAddr  string `json:"listenAddr,omitempty" yaml:"listen_addr,omitempty" toml:"listen_addr,omitempty"`
	Runner      string `json:"runner,omitempty" yaml:"runner,omitempty" toml:"runner,omitempty"`
	APITokenEnv string `json:"apiTokenEnv,omitempty" yaml:"api_token_env,omitempty" toml:"api_token_env,omitempty"`
	LogLevel    string `json:"logLevel,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`
}

// Normalize returns a copy of the config with defaults applied. The
// receiver is left untouched.
func (c *Config) Normalize() (Config, error) {
	normalized := Config{}
	if err := copier.Copy(&normalized, c); err != nil {
		return Config{}, fmt.Errorf("failed to copy config for normalization: %w", err)
	}

	if normalized.Name == "" {
		normalized.Name = constants.DefaultAppName
	}
	if normalized.Image.Repository == "" {
		normalized.Image.Repository = constants.DefaultRepository
	}
	if len(normalized.Branches) == 0 {
		normalized.Branches = DefaultBranchRules()
	}
	if len(normalized.Ports) == 0 {
		mapping, err := ParsePortMapping(constants.DefaultPortMapping)
		if err != nil {
			return Config{}, err
		}
		normalized.Ports = []PortMapping{mapping}
	}
	if len(normalized.Volumes) == 0 {
		normalized.Volumes = []string{constants.DefaultVolume}
	}
	if normalized.Server.ListenAddr == "" {
		normalized.Server.ListenAddr = constants.DefaultListenAddr
	}
	if normalized.Server.APITokenEnv == "" {
		normalized.Server.APITokenEnv = constants.EnvVarAPIToken
	}
	return normalized, nil
}

// DefaultBranchRules mirrors the original trigger matrix: master publishes
// "latest" and deploys to the prod runner with the ENV_PRD secret; develop
// publishes "develop" and deploys to dev with ENV_DEV.
func DefaultBranchRules() map[string]gitref.Rule {
	return map[string]gitref.Rule{
		constants.DefaultBranch: {
			Tag:       constants.DefaultTag,
			Runner:    constants.ProdRunner,
			EnvSecret: constants.ProdEnvName,
		},
		constants.DevelopBranch: {
			Tag:       constants.DevelopTag,
			Runner:    constants.DevRunner,
			EnvSecret: constants.DevEnvName,
		},
	}
}
