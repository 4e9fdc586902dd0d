// Package secrets resolves the API keys the service needs at startup. The
// pipelines only ever read credentials, so every backend is read-only.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// SecretKey identifies the credentials the service can resolve.
type SecretKey string

const (
	SecretLLMAPIKey    SecretKey = "llm_api_key"
	SecretEmbedAPIKey  SecretKey = "embed_api_key"
	SecretVectorAPIKey SecretKey = "vector_api_key"
)

// Provider is a read-only secret backend.
type Provider interface {
	// Get retrieves a secret by key.
	Get(ctx context.Context, key string) (string, error)
	// Name returns the provider name.
	Name() string
}

// Config configures the secrets manager.
type Config struct {
	// Provider specifies which backend to use: "env", "vault", "file"
	Provider string
	// VaultConfig for HashiCorp Vault backend
	VaultConfig *VaultConfig
	// FileConfig for file-based backend (development only)
	FileConfig *FileConfig
	// Prefix for environment variable names (default: "RAGPIPE_")
	EnvPrefix string
}

// DefaultConfig returns default secrets configuration (env-based).
func DefaultConfig() *Config {
	return &Config{
		Provider:  "env",
		EnvPrefix: "RAGPIPE_",
	}
}

// Manager resolves secrets from a primary backend with env fallback, caching
// values for the lifetime of the process.
type Manager struct {
	primary  Provider
	fallback Provider
	cache    map[string]string
	cacheMu  sync.RWMutex
	useCache bool
}

// NewManager creates a secrets manager with the specified configuration.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var primary Provider
	var err error

	switch cfg.Provider {
	case "vault":
		if cfg.VaultConfig == nil {
			return nil, fmt.Errorf("vault config required for vault provider")
		}
		primary, err = NewVaultProvider(cfg.VaultConfig)
		if err != nil {
			return nil, fmt.Errorf("create vault provider: %w", err)
		}
	case "file":
		if cfg.FileConfig == nil {
			return nil, fmt.Errorf("file config required for file provider")
		}
		primary, err = NewFileProvider(cfg.FileConfig)
		if err != nil {
			return nil, fmt.Errorf("create file provider: %w", err)
		}
	case "env", "":
		primary = NewEnvProvider(cfg.EnvPrefix)
	default:
		return nil, fmt.Errorf("unknown secrets provider: %s", cfg.Provider)
	}

	// Always use env as fallback
	fallback := NewEnvProvider(cfg.EnvPrefix)

	return &Manager{
		primary:  primary,
		fallback: fallback,
		cache:    make(map[string]string),
		useCache: true,
	}, nil
}

// Get retrieves a secret, trying primary then fallback.
func (m *Manager) Get(ctx context.Context, key SecretKey) (string, error) {
	k := string(key)
	if m.useCache {
		m.cacheMu.RLock()
		if val, ok := m.cache[k]; ok {
			m.cacheMu.RUnlock()
			return val, nil
		}
		m.cacheMu.RUnlock()
	}

	val, err := m.primary.Get(ctx, k)
	if err == nil && val != "" {
		m.cacheSet(k, val)
		return val, nil
	}

	if m.fallback != nil {
		val, err = m.fallback.Get(ctx, k)
		if err == nil && val != "" {
			m.cacheSet(k, val)
			return val, nil
		}
	}

	return "", fmt.Errorf("secret not found: %s", k)
}

// GetOrDefault retrieves a secret or returns a default value.
func (m *Manager) GetOrDefault(ctx context.Context, key SecretKey, defaultVal string) string {
	val, err := m.Get(ctx, key)
	if err != nil || val == "" {
		return defaultVal
	}
	return val
}

// ClearCache clears the secrets cache.
func (m *Manager) ClearCache() {
	m.cacheMu.Lock()
	m.cache = make(map[string]string)
	m.cacheMu.Unlock()
}

// DisableCache disables caching (useful for testing).
func (m *Manager) DisableCache() {
	m.useCache = false
}

func (m *Manager) cacheSet(key, value string) {
	if m.useCache {
		m.cacheMu.Lock()
		m.cache[key] = value
		m.cacheMu.Unlock()
	}
}

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an environment-based secrets provider.
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = "RAGPIPE_"
	}
	return &EnvProvider{prefix: prefix}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Get(ctx context.Context, key string) (string, error) {
	// Try with prefix first
	envKey := p.prefix + strings.ToUpper(key)
	if val := os.Getenv(envKey); val != "" {
		return val, nil
	}
	// Try without prefix
	if val := os.Getenv(strings.ToUpper(key)); val != "" {
		return val, nil
	}
	return "", fmt.Errorf("env var not found: %s", envKey)
}
