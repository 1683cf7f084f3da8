// Package redis implements the cache vector store on RediSearch and the
// metrics sink on Redis streams.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
	"github.com/davidbz/relay/internal/vector"
)

const (
	redisDialectVersion = 2
	keyPrefix           = "cache:"
	deleteBatchSize     = 500
)

// Config contains Redis connection and index settings.
type Config struct {
	Addr         string `env:"REDIS_ADDR"           envDefault:"localhost:6379"`
	Password     string `env:"REDIS_PASSWORD"`
	DB           int    `env:"REDIS_DB"             envDefault:"0"`
	IndexName    string `env:"REDIS_INDEX_NAME"     envDefault:"relay_cache_idx"`
	StreamMaxLen int64  `env:"REDIS_STREAM_MAX_LEN" envDefault:"100000"`
}

// NewClient creates a Redis client from cfg.
func NewClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// VectorSearch implements domain.VectorStore using a RediSearch index over
// hashes keyed "cache:<id>".
type VectorSearch struct {
	client             *redis.Client
	indexName          string
	embeddingDimension int
}

// NewVectorSearch creates a new Redis vector search adapter.
func NewVectorSearch(
	ctx context.Context,
	client *redis.Client,
	indexName string,
	embeddingDimension int,
) (*VectorSearch, error) {
	v := &VectorSearch{
		client:             client,
		indexName:          indexName,
		embeddingDimension: embeddingDimension,
	}

	if err := v.createIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return v, nil
}

// Search runs a filtered KNN query and returns results at or above the threshold.
func (v *VectorSearch) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.SearchResult, error) {
	logger := observability.FromContext(ctx)

	limit := query.Limit
	if limit <= 0 {
		limit = 1
	}

	results, err := v.client.FTSearchWithArgs(ctx, v.indexName,
		knnQuery(query.TaskType, query.MinCreatedAt, limit),
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "question"},
				{FieldName: "answer"},
				{FieldName: "model"},
				{FieldName: "provider"},
				{FieldName: "created_at"},
				{FieldName: "score"},
			},
			DialectVersion: redisDialectVersion,
			Params: map[string]any{
				"vec": vector.Encode(query.Embedding),
			},
		},
	).Result()
	if err != nil {
		logger.Error("vector search failed",
			observability.Error(err))
		return nil, fmt.Errorf("search failed: %w", err)
	}

	logger.Debug("vector search completed",
		observability.Int("total_docs", results.Total),
		observability.Int("docs_returned", len(results.Docs)))

	return v.parseSearchResults(ctx, results, query.Threshold), nil
}

// Insert stores a cache item as a hash picked up by the index.
func (v *VectorSearch) Insert(ctx context.Context, item *domain.CacheItem) error {
	if item == nil {
		return errors.New("cache item cannot be nil")
	}

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err = v.client.HSet(ctx, keyPrefix+item.ID,
		"embedding", vector.Encode(item.Embedding),
		"question", item.Question,
		"answer", item.Answer,
		"model", item.Model,
		"provider", item.Provider,
		"task_type", string(item.TaskType),
		"tokens_used", item.TokensUsed,
		"user_id", item.UserID,
		"metadata", string(metadata),
		"created_at", item.CreatedAt.UnixMilli(),
	).Err(); err != nil {
		observability.FromContext(ctx).Error("vector index failed",
			observability.Error(err))
		return fmt.Errorf("failed to index: %w", err)
	}

	return nil
}

// DeleteOlderThan removes items created at or before cutoff.
func (v *VectorSearch) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := fmt.Sprintf("@created_at:[-inf %d]", cutoff.UnixMilli())
	removed := 0

	for {
		results, err := v.client.FTSearchWithArgs(ctx, v.indexName, query,
			&redis.FTSearchOptions{
				NoContent:      true,
				Limit:          deleteBatchSize,
				DialectVersion: redisDialectVersion,
			},
		).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to find expired items: %w", err)
		}

		if len(results.Docs) == 0 {
			return removed, nil
		}

		keys := make([]string, 0, len(results.Docs))
		for _, doc := range results.Docs {
			keys = append(keys, doc.ID)
		}

		n, err := v.client.Del(ctx, keys...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to delete expired items: %w", err)
		}
		removed += int(n)

		if n == 0 {
			// Index lagging behind deletes; avoid spinning on the same page.
			return removed, nil
		}
	}
}

// DeleteByIDs removes the listed items.
func (v *VectorSearch) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}

	n, err := v.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache items: %w", err)
	}
	return int(n), nil
}

// knnQuery builds the hybrid query: task type and age prefilter, then KNN.
func knnQuery(taskType domain.TaskType, minCreatedAt time.Time, limit int) string {
	return fmt.Sprintf("(@task_type:{%s} @created_at:[(%d +inf])=>[KNN %d @embedding $vec AS score]",
		escapeTag(string(taskType)), minCreatedAt.UnixMilli(), limit)
}

// escapeTag escapes TAG query punctuation.
func escapeTag(value string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~| ", r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// createIndex creates the Redis search index if it doesn't exist.
func (v *VectorSearch) createIndex(ctx context.Context) error {
	logger := observability.FromContext(ctx)

	// Check if index already exists
	_, err := v.client.FTInfo(ctx, v.indexName).Result()
	if err == nil {
		logger.Info("redis search index already exists, skipping creation",
			observability.String("index_name", v.indexName))
		return nil
	}

	logger.Info("creating redis search index",
		observability.String("index_name", v.indexName),
		observability.Int("embedding_dimension", v.embeddingDimension))

	_, err = v.client.FTCreate(ctx, v.indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{keyPrefix},
		},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            v.embeddingDimension,
					DistanceMetric: "COSINE",
				},
			},
		},
		&redis.FieldSchema{
			FieldName: "question",
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: "task_type",
			FieldType: redis.SearchFieldTypeTag,
		},
		&redis.FieldSchema{
			FieldName: "provider",
			FieldType: redis.SearchFieldTypeTag,
		},
		&redis.FieldSchema{
			FieldName: "created_at",
			FieldType: redis.SearchFieldTypeNumeric,
			Sortable:  true,
		},
	).Result()
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("successfully created redis search index",
		observability.String("index_name", v.indexName))

	return nil
}

// parseSearchResults parses Redis FTSearchResult into domain SearchResult
// structs, most similar first.
func (v *VectorSearch) parseSearchResults(
	ctx context.Context,
	result redis.FTSearchResult,
	threshold float64,
) []*domain.SearchResult {
	var results []*domain.SearchResult

	for _, doc := range result.Docs {
		searchResult := parseSearchResult(ctx, doc, threshold)
		if searchResult != nil {
			results = append(results, searchResult)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	return results
}

// parseSearchResult parses a single Document into a domain SearchResult.
func parseSearchResult(
	ctx context.Context,
	doc redis.Document,
	threshold float64,
) *domain.SearchResult {
	logger := observability.FromContext(ctx)

	// Extract score from fields (it's returned as "score" field, not doc.Score)
	scoreStr, scoreOk := doc.Fields["score"]
	if !scoreOk {
		return nil
	}

	score, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return nil
	}

	// Convert distance to similarity (1.0 - distance for cosine)
	similarity := 1.0 - score

	if similarity < threshold {
		return nil
	}

	answer, ok := doc.Fields["answer"]
	if !ok {
		logger.Warn("answer field not found in search result",
			observability.String("key", doc.ID))
		return nil
	}

	var createdAt time.Time
	if tsStr, tsOk := doc.Fields["created_at"]; tsOk {
		if ts, parseErr := strconv.ParseInt(tsStr, 10, 64); parseErr == nil {
			createdAt = time.UnixMilli(ts).UTC()
		}
	}

	return &domain.SearchResult{
		ID:         strings.TrimPrefix(doc.ID, keyPrefix),
		Question:   doc.Fields["question"],
		Answer:     answer,
		Similarity: similarity,
		Model:      doc.Fields["model"],
		Provider:   doc.Fields["provider"],
		CreatedAt:  createdAt,
	}
}
