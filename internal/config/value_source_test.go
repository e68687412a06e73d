package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/docker/docker/api/types/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSourceResolve(t *testing.T) {
	t.Setenv("PREDIX_TEST_TOKEN", "from-env")

	lookup := func(name string) (string, error) {
		if name == "REGISTRY_PASSWORD" {
			return "from-secret", nil
		}
		return "", fmt.Errorf("secret '%s' not found", name)
	}

	tests := []struct {
		name      string
		source    ValueSource
		expected  string
		expectErr bool
	}{
		{name: "plain", source: ValueSource{Type: "plain", Value: "hunter2"}, expected: "hunter2"},
		{name: "env", source: ValueSource{Type: "env", Value: "PREDIX_TEST_TOKEN"}, expected: "from-env"},
		{name: "secret", source: ValueSource{Type: "secret", Value: "REGISTRY_PASSWORD"}, expected: "from-secret"},
		{name: "missing secret", source: ValueSource{Type: "secret", Value: "NOPE"}, expectErr: true},
		{name: "unknown type", source: ValueSource{Type: "vault", Value: "x"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.source.Resolve(lookup)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestAuthStringParsesServerFromRepository(t *testing.T) {
	image := Image{
		Repository: "ghcr.io/predixlabs/predix-agent",
		RegistryAuth: &RegistryAuth{
			Username: ValueSource{Type: "plain", Value: "bot"},
			Password: ValueSource{Type: "plain", Value: "token"},
		},
	}

	authStr, err := image.AuthString(nil)
	require.NoError(t, err)
	require.NotEmpty(t, authStr)

	decoded, err := base64.URLEncoding.DecodeString(authStr)
	require.NoError(t, err)

	var authConfig registry.AuthConfig
	require.NoError(t, json.Unmarshal(decoded, &authConfig))
	assert.Equal(t, "bot", authConfig.Username)
	assert.Equal(t, "token", authConfig.Password)
	assert.Equal(t, "ghcr.io", authConfig.ServerAddress)
}

func TestAuthStringWithoutAuth(t *testing.T) {
	image := Image{Repository: "ghcr.io/predixlabs/predix-agent"}
	authStr, err := image.AuthString(nil)
	require.NoError(t, err)
	assert.Empty(t, authStr)
}
