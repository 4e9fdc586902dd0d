package pipeline

import "fmt"

// ValidationError reports malformed input rejected before any external call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExtractionError reports a failed page fetch. A page that fetched fine but
// contained no readable article is not an extraction error.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StoreError reports a failure embedding or writing documents to the vector
// store.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("vector store write: %v", e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// RetrievalError reports a failure embedding a query or reading neighbors
// from the vector store.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval: %v", e.Err) }

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError reports a failed model call, including refusals and rate
// limits surfaced by the provider.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
