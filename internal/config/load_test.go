package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "predix-deploy.yaml", `
name: predix-agent
image:
  repository: ghcr.io/predixlabs/predix-agent
branches:
  master:
    tag: latest
    runner: prod
    env_secret: ENV_PRD
  develop:
    tag: develop
    runner: dev
    env_secret: ENV_DEV
ports:
  - "5021:80"
volumes:
  - /home/ec2-user/predix-agent/logs:/code/logs
server:
  runner: prod
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "predix-agent", cfg.Name)
	assert.Equal(t, "ghcr.io/predixlabs/predix-agent:latest", cfg.Image.Ref("latest"))
	require.Len(t, cfg.Ports, 1)
	assert.Equal(t, "5021", cfg.Ports[0].HostPort)
	assert.Equal(t, "80", cfg.Ports[0].ContainerPort)
	assert.Equal(t, "prod", cfg.Branches["master"].Runner)
	assert.Equal(t, "ENV_DEV", cfg.Branches["develop"].EnvSecret)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "predix-deploy.toml", `
name = "predix-agent"

[image]
repository = "ghcr.io/predixlabs/predix-agent"

[branches.master]
tag = "latest"
runner = "prod"
env_secret = "ENV_PRD"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "latest", cfg.Branches["master"].Tag)
	assert.Equal(t, "toml", cfg.Format)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "predix-deploy.yaml", `
image:
  repository: ghcr.io/predixlabs/predix-agent
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultAppName, cfg.Name)
	require.Len(t, cfg.Ports, 1)
	assert.Equal(t, "5021:80", cfg.Ports[0].String())
	assert.Equal(t, []string{constants.DefaultVolume}, cfg.Volumes)

	// The default branch matrix is exactly the original trigger filter.
	require.Len(t, cfg.Branches, 2)
	assert.Equal(t, "latest", cfg.Branches["master"].Tag)
	assert.Equal(t, "prod", cfg.Branches["master"].Runner)
	assert.Equal(t, "ENV_PRD", cfg.Branches["master"].EnvSecret)
	assert.Equal(t, "develop", cfg.Branches["develop"].Tag)
	assert.Equal(t, "dev", cfg.Branches["develop"].Runner)
	assert.Equal(t, "ENV_DEV", cfg.Branches["develop"].EnvSecret)
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "predix-deploy.yml")
	require.NoError(t, os.WriteFile(path, []byte("image:\n  repository: ghcr.io/predixlabs/predix-agent\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ghcr.io/predixlabs/predix-agent", cfg.Image.Repository)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "predix-deploy.yaml", `
image:
  repository: ghcr.io/predixlabs/predix-agent
imagePullPolicy: always
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config keys")
	assert.Contains(t, err.Error(), "imagePullPolicy")
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "predix-deploy.ini", "name=predix-agent\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load("/nonexistent/predix-deploy.yaml")
	assert.Error(t, err)
}
