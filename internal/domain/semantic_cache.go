package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/observability"
)

// SemanticCache is the read/write contract used by the gateway.
type SemanticCache interface {
	// GetCachedResponse returns the best match for a semantically similar question.
	GetCachedResponse(ctx context.Context, question string, taskType TaskType) (*CacheMatch, error)

	// CacheResponse stores an answer and returns the new item's ID.
	CacheResponse(ctx context.Context, entry CacheEntry) (string, error)
}

// SemanticCacheConfig contains similarity cache settings.
type SemanticCacheConfig struct {
	SimilarityThreshold float64       `env:"CACHE_SIMILARITY_THRESHOLD" envDefault:"0.85"`
	MaxAge              time.Duration `env:"CACHE_MAX_AGE"              envDefault:"168h"`
	SearchLimit         int           `env:"CACHE_SEARCH_LIMIT"         envDefault:"5"`
}

const defaultSearchLimit = 5

// SemanticCacheService implements semantic caching using embeddings and vector search.
type SemanticCacheService struct {
	embeddingGen EmbeddingGenerator
	store        VectorStore
	metrics      MetricsRecorder
	clock        clock.Clock
	threshold    float64
	maxAge       time.Duration
	limit        int

	hits   atomic.Int64
	misses atomic.Int64
}

// NewSemanticCacheService creates a new semantic cache service. metrics may be nil.
func NewSemanticCacheService(
	embeddingGen EmbeddingGenerator,
	store VectorStore,
	metrics MetricsRecorder,
	clk clock.Clock,
	cfg *SemanticCacheConfig,
) *SemanticCacheService {
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return &SemanticCacheService{
		embeddingGen: embeddingGen,
		store:        store,
		metrics:      metrics,
		clock:        clk,
		threshold:    cfg.SimilarityThreshold,
		maxAge:       cfg.MaxAge,
		limit:        limit,
	}
}

// GetCachedResponse looks up a prior answer for a near-duplicate question.
// Embedding failures force a miss instead of searching with a placeholder
// vector. Returns ErrCacheMiss when nothing qualifies; store failures also
// match ErrCacheMiss so callers can fail open.
func (s *SemanticCacheService) GetCachedResponse(
	ctx context.Context,
	question string,
	taskType TaskType,
) (*CacheMatch, error) {
	logger := observability.FromContext(ctx)

	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question cannot be empty")
	}

	embedding, err := s.embed(ctx, question)
	if err != nil {
		logger.Warn("embedding unavailable, treating lookup as miss",
			observability.Error(err))
		s.recordMiss(ctx, taskType)
		return nil, ErrCacheMiss
	}

	now := s.clock.Now()
	cutoff := now.Add(-s.maxAge)

	results, err := s.store.Search(ctx, SearchQuery{
		Embedding:    embedding,
		Threshold:    s.threshold,
		Limit:        s.limit,
		MinCreatedAt: cutoff,
		TaskType:     taskType,
	})
	if err != nil {
		logger.Error("similarity search failed",
			observability.Error(err),
			observability.Float64("threshold", s.threshold))
		s.recordMiss(ctx, taskType)
		return nil, fmt.Errorf("%w: failed to search similar vectors: %w", ErrCacheMiss, err)
	}

	best := s.bestMatch(results, cutoff)
	if best == nil {
		logger.Debug("no similar results found in cache",
			observability.Int("candidates", len(results)),
			observability.Float64("threshold", s.threshold))
		s.recordMiss(ctx, taskType)
		return nil, ErrCacheMiss
	}

	logger.Info("cache hit",
		observability.String("cache_item_id", best.ID),
		observability.Float64("similarity", best.Similarity))

	s.hits.Add(1)
	if s.metrics != nil {
		s.metrics.CacheHit(ctx, best.ID, observability.GetUserID(ctx))
	}

	return &CacheMatch{
		ID:         best.ID,
		Answer:     best.Answer,
		Similarity: best.Similarity,
		Model:      best.Model,
		Provider:   best.Provider,
		CreatedAt:  best.CreatedAt,
	}, nil
}

// CacheResponse embeds the question and persists a new cache item.
func (s *SemanticCacheService) CacheResponse(ctx context.Context, entry CacheEntry) (string, error) {
	logger := observability.FromContext(ctx)

	if strings.TrimSpace(entry.Question) == "" {
		return "", errors.New("question cannot be empty")
	}

	if entry.Answer == "" {
		return "", errors.New("answer cannot be empty")
	}

	taskType := entry.TaskType
	if taskType == "" {
		taskType = TaskGeneral
	}

	embedding, err := s.embed(ctx, entry.Question)
	if err != nil {
		return "", err
	}

	item := &CacheItem{
		ID:         uuid.New().String(),
		Question:   entry.Question,
		Answer:     entry.Answer,
		Embedding:  embedding,
		Model:      entry.Model,
		Provider:   entry.Provider,
		TaskType:   taskType,
		TokensUsed: entry.TokensUsed,
		CreatedAt:  s.clock.Now(),
		UserID:     entry.UserID,
		Metadata:   entry.Metadata,
	}

	if insertErr := s.store.Insert(ctx, item); insertErr != nil {
		logger.Error("failed to persist cache item",
			observability.Error(insertErr),
			observability.String("cache_item_id", item.ID))
		return "", fmt.Errorf("failed to persist cache item: %w", insertErr)
	}

	logger.Debug("cached response",
		observability.String("cache_item_id", item.ID),
		observability.String("task_type", string(taskType)))

	return item.ID, nil
}

// CleanupExpiredCache deletes every item older than the max cache age.
func (s *SemanticCacheService) CleanupExpiredCache(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.maxAge)

	removed, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache items: %w", err)
	}

	observability.FromContext(ctx).Info("expired cache items removed",
		observability.Int("removed", removed),
		observability.Time("cutoff", cutoff))

	return removed, nil
}

// InvalidateCacheItems deletes the listed items.
func (s *SemanticCacheService) InvalidateCacheItems(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	removed, err := s.store.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate cache items: %w", err)
	}

	observability.FromContext(ctx).Info("cache items invalidated",
		observability.Int("requested", len(ids)),
		observability.Int("removed", removed))

	return removed, nil
}

// embed generates an embedding and rejects anything that is not a usable
// vector of the configured dimension.
func (s *SemanticCacheService) embed(ctx context.Context, text string) ([]float64, error) {
	embedding, err := s.embeddingGen.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	if dim := s.embeddingGen.Dimension(); len(embedding) != dim {
		return nil, fmt.Errorf("%w: got dimension %d, want %d", ErrEmbeddingFailed, len(embedding), dim)
	}

	for _, v := range embedding {
		if v != 0 {
			return embedding, nil
		}
	}

	return nil, fmt.Errorf("%w: zero vector", ErrEmbeddingFailed)
}

// bestMatch re-applies the threshold and age rules to the store's results.
func (s *SemanticCacheService) bestMatch(results []*SearchResult, cutoff time.Time) *SearchResult {
	var best *SearchResult
	for _, result := range results {
		if result == nil || result.Similarity < s.threshold {
			continue
		}
		if !result.CreatedAt.After(cutoff) {
			continue
		}
		if best == nil || result.Similarity > best.Similarity {
			best = result
		}
	}
	return best
}

// Stats returns lookup counters since startup.
func (s *SemanticCacheService) Stats() CacheStats {
	stats := CacheStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (s *SemanticCacheService) recordMiss(ctx context.Context, taskType TaskType) {
	s.misses.Add(1)
	if s.metrics != nil {
		s.metrics.CacheMiss(ctx, taskType)
	}
}
