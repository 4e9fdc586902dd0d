package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// mockRetryProvider fails a configurable number of times before succeeding.
type mockRetryProvider struct {
	name     string
	failures int
	failWith error
	calls    int
}

func (m *mockRetryProvider) Name() string { return m.name }

func (m *mockRetryProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, m.failWith
	}
	return &Response{Content: "success"}, nil
}

func (m *mockRetryProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, m.failWith
	}
	return [][]float32{{0.1, 0.2}}, nil
}

func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Timeout:    time.Second,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 3 {
		t.Errorf("expected 3 max retries, got %d", cfg.MaxRetries)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("expected 1 second retry delay, got %v", cfg.RetryDelay)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("expected 2 minute timeout, got %v", cfg.Timeout)
	}
}

func TestRetryProvider_Name(t *testing.T) {
	retry := NewRetryProvider(&mockRetryProvider{name: "test-provider"}, nil)
	if retry.Name() != "test-provider" {
		t.Errorf("expected 'test-provider', got %s", retry.Name())
	}
}

func TestRetryProvider_Complete_SucceedsFirstTry(t *testing.T) {
	inner := &mockRetryProvider{name: "test"}
	retry := NewRetryProvider(inner, fastRetryConfig(3))

	resp, err := retry.Complete(context.Background(), &Prompt{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "success" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestRetryProvider_Complete_RetriesServerError(t *testing.T) {
	inner := &mockRetryProvider{
		name:     "test",
		failures: 2,
		failWith: fmt.Errorf("api: 503 Service Unavailable"),
	}
	retry := NewRetryProvider(inner, fastRetryConfig(3))

	resp, err := retry.Complete(context.Background(), &Prompt{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "success" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryProvider_Complete_NonRetryableStops(t *testing.T) {
	inner := &mockRetryProvider{
		name:     "test",
		failures: 10,
		failWith: fmt.Errorf("api: 401 Unauthorized"),
	}
	retry := NewRetryProvider(inner, fastRetryConfig(3))

	_, err := retry.Complete(context.Background(), &Prompt{}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "non-retryable") {
		t.Errorf("expected non-retryable error, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestRetryProvider_Complete_MaxRetriesExceeded(t *testing.T) {
	inner := &mockRetryProvider{
		name:     "test",
		failures: 10,
		failWith: fmt.Errorf("api: 429 Too Many Requests"),
	}
	retry := NewRetryProvider(inner, fastRetryConfig(2))

	_, err := retry.Complete(context.Background(), &Prompt{}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "max retries") {
		t.Errorf("expected max retries error, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls (1 initial + 2 retries), got %d", inner.calls)
	}
}

func TestRetryProvider_Embed_Retries(t *testing.T) {
	inner := &mockRetryProvider{
		name:     "test",
		failures: 1,
		failWith: fmt.Errorf("api: 500 Internal Server Error"),
	}
	retry := NewRetryProvider(inner, fastRetryConfig(3))

	vectors, err := retry.Embed(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vectors))
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls)
	}
}

func TestRetryProvider_CancelledContext(t *testing.T) {
	inner := &mockRetryProvider{
		name:     "test",
		failures: 10,
		failWith: fmt.Errorf("api: 503 Service Unavailable"),
	}
	retry := NewRetryProvider(inner, fastRetryConfig(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retry.Complete(ctx, &Prompt{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate_limit", fmt.Errorf("429 Too Many Requests"), true},
		{"server_error", fmt.Errorf("502 Bad Gateway"), true},
		{"unauthorized", fmt.Errorf("401 Unauthorized"), false},
		{"not_found", fmt.Errorf("404 Not Found"), false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"unknown", errors.New("connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
