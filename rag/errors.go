package rag

import "fmt"

// EmbeddingError wraps a failure from the embedder collaborator. The
// retriever never retries; callers decide how to surface the outage.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("failed to embed query: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError wraps a failure from the vector index collaborator.
type IndexError struct {
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("failed to query vector index: %v", e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }
