// Package envfile materializes and inspects the .env file passed to the
// agent container. The file content comes verbatim from a branch-selected
// secret; this package never rewrites or reorders it.
package envfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/predixlabs/predix-deploy/internal/constants"
)

// Write stores content verbatim at path with secret-file permissions.
// The write goes through a temp file and rename so a crashed deploy never
// leaves a half-written env file behind.
func Write(path, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("env file content is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.ModeDirPrivate); err != nil {
		return fmt.Errorf("failed to create env file directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("failed to create temp env file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(constants.ModeFileSecret); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set env file permissions: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close env file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move env file into place: %w", err)
	}
	return nil
}

// Parse returns the key-value pairs of an env-file body.
func Parse(content string) (map[string]string, error) {
	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file content: %w", err)
	}
	return vars, nil
}

// Read loads the env file at path into key-value pairs.
func Read(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file '%s': %w", path, err)
	}
	return vars, nil
}

// ToList converts parsed vars to the KEY=VALUE list the docker API expects.
func ToList(vars map[string]string) []string {
	list := make([]string, 0, len(vars))
	for k, v := range vars {
		list = append(list, fmt.Sprintf("%s=%s", k, v))
	}
	return list
}
