package rag

import (
	"context"
	"sort"
	"strings"

	"github.com/natanel567/newsrag/rag/interfaces"
	"github.com/natanel567/newsrag/rag/types"
)

const (
	// DefaultTopK is the number of results returned when the caller does
	// not override it.
	DefaultTopK = 4

	// DefaultSimilarityThreshold is the minimum similarity a candidate
	// must reach to count as a normal (non-fallback) match.
	DefaultSimilarityThreshold = 0.25

	// MinAcceptableScore is the global quality floor: candidates below it
	// are never shown, regardless of mode or threshold.
	MinAcceptableScore = -0.55

	// DefaultEmbeddingModel must match the model used to build the index,
	// or similarity scores are meaningless.
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config carries the tunable retrieval policy parameters. Multiple
// retrievers with different policies can coexist.
type Config struct {
	TopK                int
	SimilarityThreshold float32
	MinAcceptableScore  float32
}

// DefaultConfig returns the documented default policy.
func DefaultConfig() Config {
	return Config{
		TopK:                DefaultTopK,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MinAcceptableScore:  MinAcceptableScore,
	}
}

// Retriever turns a free-text query into a bounded, ranked list of
// relevant article chunks. It holds no mutable state between calls, so
// concurrent use is safe as long as the collaborators are.
type Retriever struct {
	embedder interfaces.Embedder
	index    interfaces.VectorIndex
	config   Config
}

// NewRetriever creates a retriever over the given collaborators.
func NewRetriever(embedder interfaces.Embedder, index interfaces.VectorIndex, config Config) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		config:   config,
	}
}

type queryMode int

const (
	// modeExploratory is the relaxed, wider-result policy for single-word
	// queries: a lone keyword is ambiguous, so the threshold loosens and
	// the result count widens to give the user something to browse.
	modeExploratory queryMode = iota

	// modePrecise is the stricter, narrower policy for multi-word queries.
	modePrecise
)

// preciseFallbackLimit caps precise-mode fallback results. A multi-word
// query that missed the normal threshold gets only the closest few, not a
// full top-K, independent of the caller's requested count.
const preciseFallbackLimit = 3

func classifyQuery(query string) queryMode {
	if len(strings.Fields(query)) == 1 {
		return modeExploratory
	}
	return modePrecise
}

func effectiveParams(mode queryMode, threshold float32) (int, float32) {
	if mode == modeExploratory {
		return 6, threshold * 0.8
	}
	return 3, threshold
}

// Retrieve runs the full retrieval policy with the retriever's configured
// defaults. An empty result is a legitimate "no relevant articles" signal,
// distinct from a returned error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]types.Chunk, error) {
	return r.RetrieveWithParams(ctx, query, r.config.TopK, r.config.SimilarityThreshold)
}

// RetrieveWithParams runs the retrieval policy with per-call overrides for
// topK and similarity threshold.
func (r *Retriever) RetrieveWithParams(ctx context.Context, query string, topK int, similarityThreshold float32) ([]types.Chunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		// Not an error: an empty query short-circuits before any
		// collaborator call.
		return []types.Chunk{}, nil
	}

	mode := classifyQuery(query)
	effectiveTopK, effectiveThreshold := effectiveParams(mode, similarityThreshold)

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	// Oversample so our own threshold filtering has room to work with.
	n := max(2*effectiveTopK, effectiveTopK)
	candidates, err := r.index.Query(ctx, embedding, n)
	if err != nil {
		return nil, &IndexError{Err: err}
	}

	allCandidates := make([]types.Chunk, 0, len(candidates))
	passedThreshold := make([]types.Chunk, 0, len(candidates))
	for _, c := range candidates {
		chunk := candidateToChunk(c)
		allCandidates = append(allCandidates, chunk)
		if chunk.Score >= effectiveThreshold {
			passedThreshold = append(passedThreshold, chunk)
		}
	}

	return selectRanked(allCandidates, passedThreshold, mode, effectiveTopK, r.config.MinAcceptableScore), nil
}

// candidateToChunk derives the similarity score (1 - cosine distance) and
// lifts the required metadata keys, defaulting missing ones to "".
func candidateToChunk(c types.Candidate) types.Chunk {
	return types.Chunk{
		Text:     c.Document,
		Category: c.Metadata["category"],
		Date:     c.Metadata["date"],
		Link:     c.Metadata["link"],
		Score:    1 - c.Distance,
	}
}

// selectRanked is the pure decision core: given the scored candidates it
// picks, orders and truncates the final result list. Ties keep the index's
// original candidate order.
func selectRanked(allCandidates, passedThreshold []types.Chunk, mode queryMode, effectiveTopK int, floor float32) []types.Chunk {
	if len(passedThreshold) > 0 {
		strongEnough := keepAboveFloor(passedThreshold, floor)
		if len(strongEnough) > 0 {
			sortByScore(strongEnough)
			return truncate(strongEnough, effectiveTopK)
		}
		if mode == modePrecise {
			// A precise query that cleared the threshold but failed the
			// absolute floor means "no relevant result", not fallback.
			return []types.Chunk{}
		}
		// Exploratory queries are forgiving: fall through to fallback.
	}

	// Fallback: nothing met the threshold, or the floor emptied an
	// exploratory selection. Rank the whole oversampled pool.
	strongFromAll := keepAboveFloor(allCandidates, floor)
	if len(strongFromAll) == 0 {
		return []types.Chunk{}
	}
	sortByScore(strongFromAll)

	if mode == modeExploratory {
		return truncate(strongFromAll, effectiveTopK)
	}
	return truncate(strongFromAll, preciseFallbackLimit)
}

func keepAboveFloor(chunks []types.Chunk, floor float32) []types.Chunk {
	kept := make([]types.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Score >= floor {
			kept = append(kept, c)
		}
	}
	return kept
}

func sortByScore(chunks []types.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}

func truncate(chunks []types.Chunk, limit int) []types.Chunk {
	if len(chunks) > limit {
		return chunks[:limit]
	}
	return chunks
}
