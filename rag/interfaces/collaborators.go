package interfaces

import (
	"context"

	"github.com/natanel567/newsrag/rag/types"
)

// Embedder turns text into a fixed-length vector. The dimensionality must
// match the vector index's configured space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex answers similarity queries. Implementations return up to n
// candidates in unspecified order; callers re-derive similarity and sort.
type VectorIndex interface {
	Query(ctx context.Context, embedding []float32, n int) ([]types.Candidate, error)
}

// Index is the full index contract used by the serving and index-building
// glue. The retriever itself only depends on VectorIndex.
type Index interface {
	VectorIndex

	// Rebuild drops the stored documents and repopulates the index from
	// the given articles.
	Rebuild(ctx context.Context, articles []types.Article) error
	Reset() error
	Count() int
}
