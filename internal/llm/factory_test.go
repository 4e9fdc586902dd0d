package llm

import (
	"context"
	"errors"
	"testing"
)

type mockTestProvider struct {
	name string
}

func (m *mockTestProvider) Name() string { return m.name }

func (m *mockTestProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	return &Response{Content: "ok"}, nil
}

func (m *mockTestProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func TestNewFactory(t *testing.T) {
	f := NewFactory()
	if f == nil {
		t.Fatal("expected non-nil factory")
	}
	if len(f.constructors) != 0 {
		t.Fatalf("expected empty factory, got %d constructors", len(f.constructors))
	}
}

func TestFactoryCreate_UnknownProvider(t *testing.T) {
	f := NewFactory()
	f.Register("provider1", func(cfg ProviderConfig) (Provider, error) {
		return &mockTestProvider{name: "provider1"}, nil
	})

	_, err := f.Create(ProviderConfig{Provider: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactoryCreate_RegisteredProvider(t *testing.T) {
	f := NewFactory()
	expected := &mockTestProvider{name: "test"}
	f.Register("test", func(cfg ProviderConfig) (Provider, error) {
		return expected, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != expected {
		t.Fatal("expected the registered provider instance")
	}
}

func TestFactoryCreate_ConstructorError(t *testing.T) {
	f := NewFactory()
	wantErr := errors.New("constructor failed")
	f.Register("failing", func(cfg ProviderConfig) (Provider, error) {
		return nil, wantErr
	})

	_, err := f.Create(ProviderConfig{Provider: "failing"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected constructor error, got %v", err)
	}
}

func TestFactoryCreate_WrapsWithRetry(t *testing.T) {
	f := NewFactory()
	f.Register("test", func(cfg ProviderConfig) (Provider, error) {
		return &mockTestProvider{name: "test"}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "test", MaxRetries: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Fatalf("expected provider wrapped in *RetryProvider, got %T", p)
	}
}
