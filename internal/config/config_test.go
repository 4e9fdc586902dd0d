package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/efebarandurmaz/ragpipe/internal/chunk"
)

func TestValidate_Empty(t *testing.T) {
	cfg := &Config{}
	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatalf("empty config should validate, got %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("empty config should have no warnings, got %v", warnings)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := &Config{
		LLM: LLMConfig{Provider: "openai"},
	}
	warnings, _ := cfg.Validate()
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "api_key") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected warning about missing api_key")
	}
}

func TestValidate_OllamaNeedsNoKey(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Provider: "ollama"}}
	warnings, _ := cfg.Validate()
	for _, w := range warnings {
		if strings.Contains(w, "api_key") {
			t.Error("ollama provider should not warn about missing api_key")
		}
	}
}

func TestValidate_InvalidTemperature(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		want bool // true = should warn
	}{
		{"zero", 0, false},
		{"normal", 0.7, false},
		{"max", 2.0, false},
		{"negative", -1, true},
		{"too_high", 3.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LLM: LLMConfig{Temperature: tt.temp}}
			warnings, _ := cfg.Validate()
			hasWarn := false
			for _, w := range warnings {
				if strings.Contains(w, "temperature") {
					hasWarn = true
				}
			}
			if hasWarn != tt.want {
				t.Errorf("temperature=%.1f: hasWarn=%v, want=%v", tt.temp, hasWarn, tt.want)
			}
		})
	}
}

func TestValidate_BadChunkerIsError(t *testing.T) {
	cfg := &Config{
		Chunker: ChunkerConfig{MinLength: 100, MaxLength: 50},
	}
	_, err := cfg.Validate()
	var cerr *chunk.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected chunk.ConfigError, got %v", err)
	}
}

func TestChunkConfig_Defaults(t *testing.T) {
	cfg := ChunkerConfig{}.ChunkConfig()
	if cfg != chunk.DefaultConfig() {
		t.Errorf("unset chunker config should yield defaults, got %+v", cfg)
	}

	partial := ChunkerConfig{MaxLength: 2048}.ChunkConfig()
	if partial.MaxLength != 2048 {
		t.Errorf("expected max_length override, got %d", partial.MaxLength)
	}
	if partial.MinLength != chunk.DefaultConfig().MinLength {
		t.Errorf("expected default min_length, got %d", partial.MinLength)
	}
}

func TestResolveForRole(t *testing.T) {
	cfg := LLMConfig{
		Provider: "anthropic",
		Model:    "claude-sonnet-4-20250514",
		APIKey:   "key1",
		Roles: map[string]LLMRoleOverride{
			"embedder": {Provider: "openai", EmbedModel: "text-embedding-3-small"},
		},
	}

	resolved := cfg.ResolveForRole("embedder")
	if resolved.Provider != "openai" {
		t.Errorf("expected provider=openai, got %s", resolved.Provider)
	}
	if resolved.EmbedModel != "text-embedding-3-small" {
		t.Errorf("expected embed model override, got %s", resolved.EmbedModel)
	}
	// Should inherit API key and model
	if resolved.APIKey != "key1" {
		t.Errorf("expected inherited api_key=key1, got %s", resolved.APIKey)
	}

	base := cfg.ResolveForRole("generator")
	if base.Provider != "anthropic" {
		t.Errorf("expected base provider=anthropic, got %s", base.Provider)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("RAGPIPE_LLM_PROVIDER", "groq")
	t.Setenv("RAGPIPE_VECTOR_COLLECTION", "test_docs")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "groq" {
		t.Errorf("expected provider from env, got %s", cfg.LLM.Provider)
	}
	if cfg.Vector.Collection != "test_docs" {
		t.Errorf("expected collection from env, got %s", cfg.Vector.Collection)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected default top_k 3, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Secrets.Provider != "env" {
		t.Errorf("expected default secrets provider env, got %s", cfg.Secrets.Provider)
	}
}

func TestLoad_SecretsProviderFromEnv(t *testing.T) {
	t.Setenv("RAGPIPE_SECRETS_PROVIDER", "vault")
	t.Setenv("RAGPIPE_SECRETS_VAULT_ADDRESS", "http://vault:8200")
	t.Setenv("RAGPIPE_SECRETS_VAULT_TOKEN", "t-123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Secrets.Provider != "vault" {
		t.Errorf("expected secrets provider vault, got %s", cfg.Secrets.Provider)
	}
	if cfg.Secrets.VaultAddress != "http://vault:8200" {
		t.Errorf("expected vault address from env, got %s", cfg.Secrets.VaultAddress)
	}
}

func TestManagerConfig(t *testing.T) {
	t.Run("defaults_to_env", func(t *testing.T) {
		mc := SecretsConfig{}.ManagerConfig()
		if mc.Provider != "env" {
			t.Errorf("expected env provider, got %s", mc.Provider)
		}
		if mc.VaultConfig != nil || mc.FileConfig != nil {
			t.Error("env provider should carry no vault or file config")
		}
	})

	t.Run("vault", func(t *testing.T) {
		mc := SecretsConfig{
			Provider:     "vault",
			VaultAddress: "http://vault:8200",
			VaultToken:   "t-123",
			VaultPath:    "myapp",
		}.ManagerConfig()
		if mc.Provider != "vault" {
			t.Fatalf("expected vault provider, got %s", mc.Provider)
		}
		if mc.VaultConfig == nil {
			t.Fatal("expected vault config")
		}
		if mc.VaultConfig.Address != "http://vault:8200" || mc.VaultConfig.Token != "t-123" {
			t.Errorf("vault config not mapped: %+v", mc.VaultConfig)
		}
		if mc.VaultConfig.SecretPath != "myapp" {
			t.Errorf("expected secret path override, got %s", mc.VaultConfig.SecretPath)
		}
		if mc.VaultConfig.MountPath != "secret" {
			t.Errorf("expected default mount path, got %s", mc.VaultConfig.MountPath)
		}
	})

	t.Run("file", func(t *testing.T) {
		mc := SecretsConfig{Provider: "file", FilePath: "/tmp/s.json"}.ManagerConfig()
		if mc.FileConfig == nil || mc.FileConfig.Path != "/tmp/s.json" {
			t.Errorf("file config not mapped: %+v", mc.FileConfig)
		}
	})
}
