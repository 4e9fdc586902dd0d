package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VaultConfig configures the HashiCorp Vault provider. The service keeps all
// its credentials under a single KV v2 path, one field per SecretKey.
type VaultConfig struct {
	// Address is the Vault server address (e.g., "http://localhost:8200")
	Address string
	// Token is the Vault authentication token
	Token string
	// MountPath is the secrets engine mount path (default: "secret")
	MountPath string
	// SecretPath is the path under the mount holding the service's keys
	// (default: "ragpipe")
	SecretPath string
	// Timeout for Vault API requests
	Timeout time.Duration
}

// DefaultVaultConfig returns default Vault configuration.
func DefaultVaultConfig() *VaultConfig {
	return &VaultConfig{
		Address:    "http://localhost:8200",
		MountPath:  "secret",
		SecretPath: "ragpipe",
		Timeout:    10 * time.Second,
	}
}

// VaultProvider reads the service's credentials from a Vault KV v2 path.
type VaultProvider struct {
	address    string
	token      string
	secretURL  string
	secretPath string
	client     *http.Client
}

// NewVaultProvider creates a Vault secrets provider.
func NewVaultProvider(config *VaultConfig) (*VaultProvider, error) {
	if config == nil {
		config = DefaultVaultConfig()
	}
	if config.Address == "" {
		return nil, fmt.Errorf("vault address required")
	}
	if config.Token == "" {
		return nil, fmt.Errorf("vault token required")
	}

	mount := config.MountPath
	if mount == "" {
		mount = "secret"
	}
	path := config.SecretPath
	if path == "" {
		path = "ragpipe"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	// KV v2 data endpoint for the service's single secret path.
	url := fmt.Sprintf("%s/v1/%s/data/%s",
		strings.TrimSuffix(config.Address, "/"), mount, path)

	return &VaultProvider{
		address:    config.Address,
		token:      config.Token,
		secretURL:  url,
		secretPath: path,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

func (p *VaultProvider) Name() string { return "vault" }

// Get reads the service's secret path and returns the field named key.
func (p *VaultProvider) Get(ctx context.Context, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.secretURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Vault-Token", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vault request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("secret path not found: %s", p.secretPath)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vault error %d: %s", resp.StatusCode, body)
	}

	// KV v2 nests the fields under data.data.
	var result struct {
		Data struct {
			Data map[string]any `json:"data"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	val, ok := result.Data.Data[key]
	if !ok {
		return "", fmt.Errorf("key not found in vault: %s", key)
	}
	if s, ok := val.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", val), nil
}
