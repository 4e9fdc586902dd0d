package pipeline

import (
	"github.com/google/uuid"

	"github.com/efebarandurmaz/ragpipe/internal/vector"
)

// Tag wraps each chunk as a Document carrying the given metadata. Every
// document gets its own copy of the metadata map and a fresh ID; empty input
// yields empty output.
func Tag(chunks []string, metadata map[string]string) []vector.Document {
	docs := make([]vector.Document, len(chunks))
	for i, c := range chunks {
		md := make(map[string]string, len(metadata))
		for k, v := range metadata {
			md[k] = v
		}
		docs[i] = vector.Document{
			ID:       uuid.NewString(),
			Content:  c,
			Metadata: md,
		}
	}
	return docs
}
