package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// RetryConfig configures retry behavior for LLM calls.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts (0 = no retries)
	RetryDelay time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries (caps exponential backoff)
	Timeout    time.Duration // Per-request timeout
}

// DefaultRetryConfig returns a sensible default configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    2 * time.Minute,
	}
}

// RetryProvider wraps a Provider with timeout and retry logic.
type RetryProvider struct {
	inner  Provider
	config *RetryConfig
}

// NewRetryProvider wraps an existing provider with retry logic.
func NewRetryProvider(inner Provider, config *RetryConfig) *RetryProvider {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryProvider{inner: inner, config: config}
}

// Name returns the underlying provider name.
func (r *RetryProvider) Name() string {
	return r.inner.Name()
}

// Complete sends a prompt with timeout and retry logic.
func (r *RetryProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	var resp *Response
	err := r.attempt(ctx, func(attemptCtx context.Context) error {
		var err error
		resp, err = r.inner.Complete(attemptCtx, prompt, opts)
		return err
	})
	return resp, err
}

// Embed sends an embedding request with timeout and retry logic.
func (r *RetryProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := r.attempt(ctx, func(attemptCtx context.Context) error {
		var err error
		vectors, err = r.inner.Embed(attemptCtx, texts)
		return err
	})
	return vectors, err
}

func (r *RetryProvider) attempt(ctx context.Context, call func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
		err := call(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
}

// backoff returns the delay for the given attempt using exponential backoff.
func (r *RetryProvider) backoff(attempt int) time.Duration {
	delay := r.config.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > r.config.MaxDelay {
			return r.config.MaxDelay
		}
	}
	return delay
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errStr := err.Error()

	// Rate limiting is retryable.
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "Too Many Requests") {
		return true
	}
	// Server errors are retryable.
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(errStr, code) {
			return true
		}
	}
	// Remaining client errors are not.
	for _, code := range []string{"400", "401", "403", "404"} {
		if strings.Contains(errStr, code) {
			return false
		}
	}
	// Default: retry on unknown errors (conservative approach for LLM calls).
	return true
}

// WrapWithRetry wraps a provider with retry logic derived from config.
func WrapWithRetry(provider Provider, cfg ProviderConfig) Provider {
	config := DefaultRetryConfig()
	if cfg.Timeout > 0 {
		config.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries > 0 {
		config.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		config.RetryDelay = cfg.RetryDelay
	}
	return NewRetryProvider(provider, config)
}
