package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/natanel567/newsrag/rag/interfaces"
	"github.com/natanel567/newsrag/rag/types"
	"github.com/philippgille/chromem-go"
)

// ChromemIndex is a vector index backed by an embedded chromem-go
// collection. Embeddings are produced through the configured Embedder both
// at build and at query time, so scores stay comparable.
type ChromemIndex struct {
	collectionName string
	collection     *chromem.Collection
	db             *chromem.DB
	embedder       interfaces.Embedder
}

var _ interfaces.Index = (*ChromemIndex)(nil)

// NewChromemIndex opens (or creates) a chromem collection persisted under
// path. An empty path keeps the collection in memory, which is what the
// tests use.
func NewChromemIndex(collection, path string, embedder interfaces.Embedder) (*ChromemIndex, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database: %w", err)
		}
	}

	index := &ChromemIndex{
		collectionName: collection,
		db:             db,
		embedder:       embedder,
	}

	c, err := db.GetOrCreateCollection(collection, nil, index.embedding())
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	index.collection = c

	return index, nil
}

func (c *ChromemIndex) embedding() chromem.EmbeddingFunc {
	return chromem.EmbeddingFunc(
		func(ctx context.Context, text string) ([]float32, error) {
			return c.embedder.Embed(ctx, text)
		},
	)
}

func (c *ChromemIndex) Count() int {
	return c.collection.Count()
}

func (c *ChromemIndex) Reset() error {
	if err := c.db.DeleteCollection(c.collectionName); err != nil {
		return fmt.Errorf("error deleting collection: %v", err)
	}
	collection, err := c.db.GetOrCreateCollection(c.collectionName, nil, c.embedding())
	if err != nil {
		return fmt.Errorf("error creating collection: %v", err)
	}
	c.collection = collection
	return nil
}

// Rebuild drops the collection and repopulates it from the prepared news
// table. Each article becomes one document carrying category, date and
// link metadata.
func (c *ChromemIndex) Rebuild(ctx context.Context, articles []types.Article) error {
	if len(articles) == 0 {
		return fmt.Errorf("no articles to index")
	}

	if err := c.Reset(); err != nil {
		return err
	}

	documents := make([]chromem.Document, 0, len(articles))
	for _, a := range articles {
		documents = append(documents, chromem.Document{
			ID:      uuid.NewString(),
			Content: a.Text,
			Metadata: map[string]string{
				"category": a.Category,
				"date":     a.Date,
				"link":     a.Link,
			},
		})
	}

	return c.collection.AddDocuments(ctx, documents, runtime.NumCPU())
}

// Query returns up to n candidates for the given query embedding. Chromem
// reports cosine similarity, which is converted back to the distance
// convention the retriever expects.
func (c *ChromemIndex) Query(ctx context.Context, embedding []float32, n int) ([]types.Candidate, error) {
	// Chromem rejects queries asking for more results than stored
	// documents, so clamp first.
	if count := c.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return []types.Candidate{}, nil
	}

	results, err := c.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, types.Candidate{
			Document: r.Content,
			Metadata: r.Metadata,
			Distance: 1 - r.Similarity,
		})
	}

	return candidates, nil
}
