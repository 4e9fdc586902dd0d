package vector

import (
	"context"
	"fmt"

	"github.com/efebarandurmaz/ragpipe/internal/llm"
)

// Embedder wraps an LLM provider to produce embeddings and write documents
// to a Repository.
type Embedder struct {
	provider llm.Provider
	repo     Repository
}

// NewEmbedder creates an Embedder.
func NewEmbedder(provider llm.Provider, repo Repository) *Embedder {
	return &Embedder{provider: provider, repo: repo}
}

// Index embeds the documents' contents, ensures the backing collection
// exists for the resulting dimension, and upserts them. A nil or empty slice
// is a no-op.
func (e *Embedder) Index(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	vectors, err := e.provider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(docs))
	}

	if err := e.repo.EnsureCollection(ctx, uint64(len(vectors[0]))); err != nil {
		return err
	}

	// Documents are immutable to callers; attach vectors to a copy.
	embedded := make([]Document, len(docs))
	copy(embedded, docs)
	for i := range embedded {
		embedded[i].Vector = vectors[i]
	}
	return e.repo.Upsert(ctx, embedded)
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.provider.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want 1", len(vectors))
	}
	return vectors[0], nil
}
