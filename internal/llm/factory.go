package llm

import (
	"fmt"
	"time"
)

// ProviderConfig holds all configuration needed to create any LLM provider.
type ProviderConfig struct {
	Provider   string // "anthropic", "openai", "groq", "ollama", "custom"
	APIKey     string
	Model      string
	BaseURL    string // Override for self-hosted / custom endpoints
	EmbedModel string // Embedding model (OpenAI-compatible providers only)

	// Timeout and retry configuration for the wrapped provider.
	Timeout    time.Duration // Per-request timeout (default: 2 minutes)
	MaxRetries int           // Max retry attempts (default: 3)
	RetryDelay time.Duration // Initial retry delay for exponential backoff (default: 1s)
}

// ProviderFactory creates Provider instances from config.
type ProviderFactory struct {
	constructors map[string]ProviderConstructor
}

// ProviderConstructor builds a Provider from config.
type ProviderConstructor func(cfg ProviderConfig) (Provider, error)

// NewFactory creates an empty factory; callers register constructors.
func NewFactory() *ProviderFactory {
	return &ProviderFactory{
		constructors: make(map[string]ProviderConstructor),
	}
}

// Register adds a provider constructor under the given name.
func (f *ProviderFactory) Register(name string, ctor ProviderConstructor) {
	f.constructors[name] = ctor
}

// Create builds a Provider from config. The returned provider is wrapped
// with retry logic when timeout or retries are configured; the pipelines
// themselves never retry, so resilience lives entirely in this wrapper.
func (f *ProviderFactory) Create(cfg ProviderConfig) (Provider, error) {
	ctor, ok := f.constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q (registered: %v)", cfg.Provider, f.names())
	}

	provider, err := ctor(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 || cfg.MaxRetries > 0 {
		return WrapWithRetry(provider, cfg), nil
	}
	return provider, nil
}

func (f *ProviderFactory) names() []string {
	var out []string
	for k := range f.constructors {
		out = append(out, k)
	}
	return out
}

// KnownProviders documents the built-in provider presets. For
// OpenAI-compatible APIs (Groq, vLLM, Ollama, Together, etc.) use the
// "openai" provider with a custom base_url.
var KnownProviders = map[string]string{
	"anthropic": "https://api.anthropic.com/v1",
	"openai":    "https://api.openai.com/v1",
	"groq":      "https://api.groq.com/openai/v1",
	"ollama":    "http://localhost:11434/v1",
	"together":  "https://api.together.xyz/v1",
	"deepseek":  "https://api.deepseek.com/v1",
}
