package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDerivesSessionSecretWhenUnset(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	first, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, first.JWT.Secret, "session tokens must never be signed with an empty key")

	second, err := Load()
	require.NoError(t, err)
	assert.NotEqual(t, first.JWT.Secret, second.JWT.Secret, "the derived secret is per-process, not a fixed default")
}

func TestLoadKeepsConfiguredSessionSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "configured-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "configured-secret", cfg.JWT.Secret)
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage driver")
}
