package vectorstore

import (
	"context"

	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/chunker"
)

// Embedder converts text into a vector. Implementations wrap the
// embedding provider and may fail with provider errors (rate limit,
// network) which callers surface unchanged.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk chunker.Chunk
	Score float64
}

// VectorIndex is the narrow capability the synchronizer and retriever
// require of any index implementation.
type VectorIndex interface {
	// Count returns the number of embedded chunks in the index.
	Count() int
	// IsValid reports whether the index is structurally usable, i.e.
	// holds at least one entry.
	IsValid() bool
	// Add embeds and appends chunks to the index.
	Add(ctx context.Context, chunks []chunker.Chunk) error
	// Save persists the index into dir.
	Save(dir string) error
	// Search returns the k nearest chunks for a query.
	Search(ctx context.Context, query string, k int) ([]ScoredChunk, error)
}
