// Package vector defines the document model and the remote vector store
// contract consumed by the ingestion and query pipelines.
package vector

import "context"

// Document is a chunk of extracted page text with its embedding.
// Documents are immutable once created; Metadata always carries the
// originating URL under the "url" key.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// SearchResult is a single match from a similarity search.
type SearchResult struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]string
}

// Repository provides vector storage and similarity search.
type Repository interface {
	// EnsureCollection creates the backing collection for vectors of the
	// given dimension if it does not exist yet.
	EnsureCollection(ctx context.Context, dimension uint64) error
	// Upsert inserts or updates documents.
	Upsert(ctx context.Context, docs []Document) error
	// Search finds the top-k most similar documents.
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	// Close releases resources.
	Close() error
}
