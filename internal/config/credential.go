package config

import (
	"os"
	"strings"
	"sync"

	"predictd/pkg/types"
)

// Environment variables consulted for the provider API key. EnvAPIKey is
// the service-specific one; EnvAPIKeyFallback matches what existing
// OpenAI tooling already exports.
const (
	EnvAPIKey         = "PREDICTD_API_KEY"
	EnvAPIKeyFallback = "OPENAI_API_KEY"
)

// Credential source labels reported by Status.
const (
	SourceRuntime = "runtime"
	SourceEnv     = "env"
	SourceConfig  = "config"
	SourceKeyFile = "key_file"
	SourceNone    = "none"
)

// CredentialStore resolves the provider API key from its sources in
// priority order: a runtime override set through the API, environment
// variables, the config value, and a key file. A key entered at runtime
// and one from the environment are equivalent; the store simply prefers
// the most explicit source present.
type CredentialStore struct {
	mu      sync.RWMutex
	runtime string
	cfgKey  string
	keyFile string
}

// NewCredentialStore builds a store over the file-config credential
// sources. Environment variables are read on every resolve.
func NewCredentialStore(cfg Config) *CredentialStore {
	return &CredentialStore{
		cfgKey:  strings.TrimSpace(cfg.APIKey),
		keyFile: cfg.APIKeyFile,
	}
}

// Set installs a runtime override. An empty key clears the override,
// falling back to the other sources.
func (s *CredentialStore) Set(key string) {
	s.mu.Lock()
	s.runtime = strings.TrimSpace(key)
	s.mu.Unlock()
}

// Resolve returns the active key and the label of the source it came
// from. It returns ("", SourceNone) when no source has a key.
func (s *CredentialStore) Resolve() (string, string) {
	s.mu.RLock()
	runtime := s.runtime
	cfgKey := s.cfgKey
	keyFile := s.keyFile
	s.mu.RUnlock()

	if runtime != "" {
		return runtime, SourceRuntime
	}
	for _, name := range []string{EnvAPIKey, EnvAPIKeyFallback} {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), SourceEnv
		}
	}
	if cfgKey != "" {
		return cfgKey, SourceConfig
	}
	if keyFile != "" {
		if b, err := os.ReadFile(keyFile); err == nil {
			if key := strings.TrimSpace(string(b)); key != "" {
				return key, SourceKeyFile
			}
		}
	}
	return "", SourceNone
}

// Key adapts the store to the predictor's credential hook.
func (s *CredentialStore) Key() (string, bool) {
	key, src := s.Resolve()
	return key, src != SourceNone
}

// Status reports credential presence without revealing the key.
func (s *CredentialStore) Status() types.CredentialStatus {
	key, src := s.Resolve()
	return types.CredentialStatus{
		Present: src != SourceNone,
		Source:  src,
		Masked:  Mask(key),
	}
}

// Mask redacts a key for display: enough of the prefix to recognize it,
// never enough to use it. Short keys are hidden entirely.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) > 12 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	return "***"
}
