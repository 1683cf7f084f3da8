package domain

import (
	"context"
	"time"
)

// EmbeddingGenerator creates vector embeddings from text.
type EmbeddingGenerator interface {
	// Generate creates a vector embedding from text.
	Generate(ctx context.Context, text string) ([]float64, error)

	// Name returns the generator identifier.
	Name() string

	// Dimension returns the vector dimension.
	Dimension() int
}

// VectorStore persists cache items and answers similarity queries.
type VectorStore interface {
	// Search returns items similar to the query embedding, most similar first.
	Search(ctx context.Context, query SearchQuery) ([]*SearchResult, error)

	// Insert persists a cache item.
	Insert(ctx context.Context, item *CacheItem) error

	// DeleteOlderThan removes items created before cutoff and returns the count.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// DeleteByIDs removes the listed items and returns the count.
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
}

// SearchQuery filters a similarity search.
type SearchQuery struct {
	Embedding    []float64
	Threshold    float64
	Limit        int
	MinCreatedAt time.Time
	TaskType     TaskType
}

// SearchResult represents a vector search result.
type SearchResult struct {
	ID         string
	Question   string
	Answer     string
	Similarity float64
	Model      string
	Provider   string
	CreatedAt  time.Time
}

// CacheStats reports cache performance counters.
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}
