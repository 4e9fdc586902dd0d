// Package memory provides an in-process vector.Repository used in tests and
// for dependency-free local runs.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/efebarandurmaz/ragpipe/internal/vector"
)

// Repository stores documents in memory and ranks searches by cosine
// similarity.
type Repository struct {
	mu   sync.RWMutex
	docs map[string]vector.Document
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{docs: make(map[string]vector.Document)}
}

// EnsureCollection is a no-op: the in-memory store has no schema.
func (r *Repository) EnsureCollection(ctx context.Context, dimension uint64) error {
	return nil
}

func (r *Repository) Upsert(ctx context.Context, docs []vector.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return nil
}

func (r *Repository) Search(ctx context.Context, vec []float32, topK int) ([]vector.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]vector.SearchResult, 0, len(r.docs))
	for _, d := range r.docs {
		results = append(results, vector.SearchResult{
			ID:       d.ID,
			Score:    cosine(vec, d.Vector),
			Content:  d.Content,
			Metadata: d.Metadata,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (r *Repository) Close() error {
	return nil
}

// Len reports the number of stored documents.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ vector.Repository = (*Repository)(nil)
