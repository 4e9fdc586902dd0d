package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures client-side rate limiting for LLM providers.
type RateLimitConfig struct {
	// RequestsPerMinute limits the number of API calls per minute (0 = unlimited)
	RequestsPerMinute int
	// BurstSize allows temporary burst above the steady rate
	BurstSize int
}

// DefaultRateLimitConfig returns conservative defaults for free-tier cloud APIs.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 25,
		BurstSize:         3,
	}
}

// RateLimitProvider wraps a provider with a token-bucket request limiter.
type RateLimitProvider struct {
	inner  Provider
	config *RateLimitConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimitProvider creates a rate-limited provider wrapper.
func NewRateLimitProvider(inner Provider, config *RateLimitConfig) *RateLimitProvider {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	burst := config.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitProvider{
		inner:      inner,
		config:     config,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Name returns the underlying provider name.
func (r *RateLimitProvider) Name() string {
	return r.inner.Name()
}

// Complete acquires a request token, then delegates to the inner provider.
func (r *RateLimitProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.inner.Complete(ctx, prompt, opts)
}

// Embed acquires a request token, then delegates to the inner provider.
func (r *RateLimitProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, texts)
}

// acquire blocks until a request token is available or ctx is done.
func (r *RateLimitProvider) acquire(ctx context.Context) error {
	if r.config.RequestsPerMinute <= 0 {
		return nil
	}
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		// Time until one token accrues at the steady rate.
		wait := time.Duration(float64(time.Minute) / float64(r.config.RequestsPerMinute))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// refill adds tokens accrued since the last refill, capped at burst size.
func (r *RateLimitProvider) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	r.lastRefill = now

	burst := float64(r.config.BurstSize)
	if burst < 1 {
		burst = 1
	}
	r.tokens += elapsed.Minutes() * float64(r.config.RequestsPerMinute)
	if r.tokens > burst {
		r.tokens = burst
	}
}

// WithRateLimit wraps a provider with rate limiting. A nil provider is
// passed through untouched.
func WithRateLimit(provider Provider, config *RateLimitConfig) Provider {
	if provider == nil {
		return nil
	}
	return NewRateLimitProvider(provider, config)
}
