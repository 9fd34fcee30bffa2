package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSetAPIKeyRejectsBadPrefix(t *testing.T) {
	s := &APIKeyStore{path: filepath.Join(t.TempDir(), "config.yaml")}

	err := s.SetAPIKey("sk-openai-nope", false)
	assert.Error(t, err)
	assert.False(t, s.HasAPIKey())
}

func TestSetAPIKeyInMemory(t *testing.T) {
	s := &APIKeyStore{path: filepath.Join(t.TempDir(), "config.yaml")}

	require.NoError(t, s.SetAPIKey("  sk-ant-test123  ", false))
	assert.True(t, s.HasAPIKey())
	assert.Equal(t, "sk-ant-test123", s.GetAPIKey())

	// persist=false leaves no file behind.
	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
}

func TestSetAPIKeyPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quipwit", "config.yaml")
	s := &APIKeyStore{path: path}

	require.NoError(t, s.SetAPIKey("sk-ant-persisted", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var kf keyFile
	require.NoError(t, yaml.Unmarshal(data, &kf))
	assert.Equal(t, "sk-ant-persisted", kf.APIKey)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnvOverridesStoredKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
	s := NewAPIKeyStore()
	assert.Equal(t, "sk-ant-from-env", s.GetAPIKey())
}
