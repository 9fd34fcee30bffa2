package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// APIKeyPrefix is required of Anthropic keys before they are accepted.
const APIKeyPrefix = "sk-ant-"

type keyFile struct {
	APIKey string `yaml:"apiKey"`
}

// APIKeyStore holds the Anthropic API key: in memory always, on disk when the
// caller asks for persistence. ANTHROPIC_API_KEY overrides the persisted
// value for the current process. Reads are lock-free snapshots of a value
// guarded for writers.
type APIKeyStore struct {
	mu   sync.RWMutex
	key  string
	path string
}

// NewAPIKeyStore loads the persisted key (if any), then applies the
// environment override.
func NewAPIKeyStore() *APIKeyStore {
	s := &APIKeyStore{path: defaultKeyPath()}

	if data, err := os.ReadFile(s.path); err == nil {
		var kf keyFile
		if yaml.Unmarshal(data, &kf) == nil {
			s.key = kf.APIKey
		}
	}
	if env := os.Getenv("ANTHROPIC_API_KEY"); env != "" {
		s.key = env
	}
	return s
}

// GetAPIKey returns the current key, empty when unset.
func (s *APIKeyStore) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// HasAPIKey reports whether a key is configured.
func (s *APIKeyStore) HasAPIKey() bool {
	return s.GetAPIKey() != ""
}

// SetAPIKey stores the key in memory and, when persist is set, on disk.
func (s *APIKeyStore) SetAPIKey(key string, persist bool) error {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return fmt.Errorf("api key must start with %s", APIKeyPrefix)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key

	if !persist {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(keyFile{APIKey: key})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func defaultKeyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "quipwit", "config.yaml")
}
