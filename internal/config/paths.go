package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/predixlabs/predix-deploy/internal/constants"
)

func ensureDir(dirPath string) error {
	return os.MkdirAll(dirPath, constants.ModeDirPrivate)
}

// DataDir returns the directory holding the deployment database and the
// materialized env file. Overridable via PREDIX_DEPLOY_DATA_DIR.
func DataDir() (string, error) {
	if envPath, ok := os.LookupEnv(constants.EnvVarDataDir); ok && envPath != "" {
		if strings.HasPrefix(envPath, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			envPath = filepath.Join(home, envPath[2:])
		}
		if err := ensureDir(envPath); err != nil {
			return "", err
		}
		return envPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(home, ".local", "share", "predix-deploy")
	if err := ensureDir(path); err != nil {
		return "", err
	}
	return path, nil
}

// EnvFilePath returns the path the env file is written to before container
// start: the configured override, or <data dir>/.env.
func (c *Config) EnvFilePath() (string, error) {
	if c.EnvFile != "" {
		return c.EnvFile, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, constants.ConfigEnvFileName), nil
}
