package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/efebarandurmaz/ragpipe/internal/llm"
)

func TestNew_SetsDefaults(t *testing.T) {
	client := New("key", "gpt-4o-mini", "", "")

	if client.baseURL != defaultBaseURL {
		t.Errorf("expected default baseURL %q, got %q", defaultBaseURL, client.baseURL)
	}
	if client.embedModel != "text-embedding-3-small" {
		t.Errorf("expected default embed model, got %q", client.embedModel)
	}
}

func TestName(t *testing.T) {
	client := New("key", "model", "", "")
	if client.Name() != "openai" {
		t.Errorf("expected name 'openai', got %q", client.Name())
	}
}

func TestComplete_SendsBearerAuthAndParsesResponse(t *testing.T) {
	var capturedAuth string
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &capturedBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"content": "the answer"},
					"finish_reason": "stop",
				},
			},
			"model": "gpt-4o-mini",
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 7},
		})
	}))
	defer server.Close()

	client := New("sk-test", "gpt-4o-mini", server.URL, "")
	resp, err := client.Complete(context.Background(), &llm.Prompt{
		SystemPrompt: "be terse",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedAuth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", capturedAuth)
	}
	msgs := capturedBody["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("expected system + user message, got %d", len(msgs))
	}
	first := msgs[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "be terse" {
		t.Errorf("expected system message first, got %v", first)
	}

	if resp.Content != "the answer" {
		t.Errorf("expected content 'the answer', got %q", resp.Content)
	}
	if resp.StopReason != "stop" {
		t.Errorf("expected stop reason 'stop', got %q", resp.StopReason)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 7 {
		t.Errorf("unexpected token counts: %d in, %d out", resp.InputTokens, resp.OutputTokens)
	}
}

func TestComplete_HandlesNon200StatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limit"}`))
	}))
	defer server.Close()

	client := New("key", "model", server.URL, "")
	_, err := client.Complete(context.Background(), &llm.Prompt{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}},
	}, nil)

	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected error to contain '429', got: %v", err)
	}
}

func TestEmbed_ParsesVectors(t *testing.T) {
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &capturedBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2}},
				{"embedding": []float32{0.3, 0.4}},
			},
		})
	}))
	defer server.Close()

	client := New("key", "model", server.URL, "custom-embed")
	vectors, err := client.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedBody["model"] != "custom-embed" {
		t.Errorf("expected embed model 'custom-embed', got %v", capturedBody["model"])
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[1][1] != 0.4 {
		t.Errorf("unexpected vector value: %v", vectors[1])
	}
}

func TestEmbed_HandlesNon200StatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New("key", "model", server.URL, "")
	if _, err := client.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
