package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/efebarandurmaz/ragpipe/internal/chunk"
	"github.com/efebarandurmaz/ragpipe/internal/secrets"
)

// Config holds all application configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Vector    VectorConfig    `mapstructure:"vector"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Chunker   ChunkerConfig   `mapstructure:"chunker"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Server    ServerConfig    `mapstructure:"server"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Log       LogConfig       `mapstructure:"log"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	EmbedModel  string  `mapstructure:"embed_model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	MaxRetries  int     `mapstructure:"max_retries"`

	// RequestsPerMinute enables client-side rate limiting of provider calls
	// when positive. Useful against free-tier API quotas.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`

	// Per-role overrides. Keys are pipeline roles ("embedder", "generator").
	// Each override inherits unset fields from the top-level LLM config.
	Roles map[string]LLMRoleOverride `mapstructure:"roles"`
}

// LLMRoleOverride allows a pipeline role to use a different provider, e.g.
// OpenAI embeddings alongside Anthropic generation.
type LLMRoleOverride struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	EmbedModel string `mapstructure:"embed_model"`
}

// ResolveForRole returns an LLMConfig with role-specific overrides applied.
func (c LLMConfig) ResolveForRole(role string) LLMConfig {
	override, ok := c.Roles[role]
	if !ok {
		return c
	}
	resolved := c
	if override.Provider != "" {
		resolved.Provider = override.Provider
	}
	if override.Model != "" {
		resolved.Model = override.Model
	}
	if override.APIKey != "" {
		resolved.APIKey = override.APIKey
	}
	if override.BaseURL != "" {
		resolved.BaseURL = override.BaseURL
	}
	if override.EmbedModel != "" {
		resolved.EmbedModel = override.EmbedModel
	}
	return resolved
}

type VectorConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
}

type ExtractorConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type ChunkerConfig struct {
	MinLength int `mapstructure:"min_length"`
	MaxLength int `mapstructure:"max_length"`
	Overlap   int `mapstructure:"overlap"`
}

// ChunkConfig converts to the chunker's own config type, substituting
// defaults for unset fields.
func (c ChunkerConfig) ChunkConfig() chunk.Config {
	cfg := chunk.DefaultConfig()
	if c.MinLength > 0 {
		cfg.MinLength = c.MinLength
	}
	if c.MaxLength > 0 {
		cfg.MaxLength = c.MaxLength
	}
	if c.Overlap > 0 {
		cfg.Overlap = c.Overlap
	}
	return cfg
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SecretsConfig selects the backend API keys are resolved from when they are
// not set inline in the llm section.
type SecretsConfig struct {
	Provider     string `mapstructure:"provider"`
	VaultAddress string `mapstructure:"vault_address"`
	VaultToken   string `mapstructure:"vault_token"`
	VaultMount   string `mapstructure:"vault_mount"`
	VaultPath    string `mapstructure:"vault_path"`
	FilePath     string `mapstructure:"file_path"`
}

// ManagerConfig converts to the secrets manager's own config type.
func (c SecretsConfig) ManagerConfig() *secrets.Config {
	cfg := secrets.DefaultConfig()
	if c.Provider != "" {
		cfg.Provider = c.Provider
	}
	switch cfg.Provider {
	case "vault":
		vc := secrets.DefaultVaultConfig()
		if c.VaultAddress != "" {
			vc.Address = c.VaultAddress
		}
		if c.VaultToken != "" {
			vc.Token = c.VaultToken
		}
		if c.VaultMount != "" {
			vc.MountPath = c.VaultMount
		}
		if c.VaultPath != "" {
			vc.SecretPath = c.VaultPath
		}
		cfg.VaultConfig = vc
	case "file":
		cfg.FileConfig = &secrets.FileConfig{Path: c.FilePath}
	}
	return cfg
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks configuration for issues. Warnings flag suspicious but
// usable settings; the returned error marks settings the pipelines cannot
// run with.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	if c.LLM.Provider != "" && c.LLM.APIKey == "" && c.LLM.Provider != "ollama" {
		warnings = append(warnings, fmt.Sprintf("LLM provider '%s' is configured but api_key is empty", c.LLM.Provider))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("LLM temperature %.2f is outside recommended range [0.0, 2.0]", c.LLM.Temperature))
	}

	if c.LLM.MaxTokens < 0 {
		warnings = append(warnings, fmt.Sprintf("LLM max_tokens %d is negative", c.LLM.MaxTokens))
	}

	if c.Retrieval.TopK < 0 {
		warnings = append(warnings, fmt.Sprintf("retrieval top_k %d is negative, default will be used", c.Retrieval.TopK))
	}

	if err := c.Chunker.ChunkConfig().Validate(); err != nil {
		return warnings, err
	}

	return warnings, nil
}

// Load reads configuration from file and environment. An empty path skips
// the file and uses environment variables and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RAGPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	warnings, err := cfg.Validate()
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("vector.host", "localhost")
	v.SetDefault("vector.port", 6334)
	v.SetDefault("vector.collection", "ragpipe")
	v.SetDefault("extractor.timeout", 30*time.Second)
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("secrets.provider", "env")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
