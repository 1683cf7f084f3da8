// Package sqlite implements the cache vector store and metrics sink on an
// embedded SQLite database. Similarity search is brute force in process.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
	"github.com/davidbz/relay/internal/vector"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config contains SQLite store settings.
type Config struct {
	Path string `env:"SQLITE_PATH" envDefault:"relay.db"`
}

const schema = `
CREATE TABLE IF NOT EXISTS cache_items (
	id          TEXT PRIMARY KEY,
	question    TEXT NOT NULL,
	answer      TEXT NOT NULL,
	embedding   BLOB NOT NULL,
	model       TEXT NOT NULL DEFAULT '',
	provider    TEXT NOT NULL DEFAULT '',
	task_type   TEXT NOT NULL,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	user_id     TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_items_task_created ON cache_items(task_type, created_at);

CREATE TABLE IF NOT EXISTS cache_hits (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	cache_item_id TEXT NOT NULL,
	user_id       TEXT NOT NULL DEFAULT '',
	hit_at        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS provider_outcomes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	provider_id TEXT NOT NULL,
	success     INTEGER NOT NULL,
	fallback    INTEGER NOT NULL,
	latency_ms  INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);
`

// Store implements domain.VectorStore and domain.MetricsSink.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps an in-memory database alive for the life of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA busy_timeout=5000"}
	if path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	observability.FromContext(ctx).Info("sqlite cache store opened",
		observability.String("path", path))

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists a cache item.
func (s *Store) Insert(ctx context.Context, item *domain.CacheItem) error {
	if item == nil {
		return errors.New("cache item cannot be nil")
	}

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_items
			(id, question, answer, embedding, model, provider, task_type, tokens_used, user_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Question, item.Answer, vector.Encode(item.Embedding),
		item.Model, item.Provider, string(item.TaskType), item.TokensUsed,
		item.UserID, string(metadata), item.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cache item: %w", err)
	}
	return nil
}

// Search scans items of the query's task type created after MinCreatedAt
// and returns those at or above the threshold, most similar first.
func (s *Store) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, embedding, model, provider, created_at
		FROM cache_items
		WHERE task_type = ? AND created_at > ?`,
		string(query.TaskType), query.MinCreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache items: %w", err)
	}
	defer rows.Close()

	logger := observability.FromContext(ctx)
	var results []*domain.SearchResult

	for rows.Next() {
		var (
			result    domain.SearchResult
			blob      []byte
			createdAt int64
		)
		if err = rows.Scan(&result.ID, &result.Question, &result.Answer, &blob,
			&result.Model, &result.Provider, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache item: %w", err)
		}

		embedding, decodeErr := vector.Decode(blob)
		if decodeErr != nil {
			logger.Warn("skipping cache item with corrupt embedding",
				observability.String("cache_item_id", result.ID),
				observability.Error(decodeErr))
			continue
		}

		similarity, simErr := vector.Cosine(query.Embedding, embedding)
		if simErr != nil {
			logger.Warn("skipping cache item with foreign dimension",
				observability.String("cache_item_id", result.ID),
				observability.Error(simErr))
			continue
		}

		if similarity < query.Threshold {
			continue
		}

		result.Similarity = similarity
		result.CreatedAt = time.UnixMilli(createdAt).UTC()
		results = append(results, &result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cache items: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

// DeleteOlderThan removes items created at or before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_items WHERE created_at <= ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache items: %w", err)
	}
	return affected(res)
}

// DeleteByIDs removes the listed items.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_items WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache items: %w", err)
	}
	return affected(res)
}

// RecordHit appends a cache hit.
func (s *Store) RecordHit(ctx context.Context, record domain.HitRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_hits (cache_item_id, user_id, hit_at) VALUES (?, ?, ?)`,
		record.CacheItemID, record.UserID, record.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record cache hit: %w", err)
	}
	return nil
}

// RecordOutcome appends a provider call outcome.
func (s *Store) RecordOutcome(ctx context.Context, record domain.OutcomeRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_outcomes (provider_id, success, fallback, latency_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.ProviderID, record.Success, record.Fallback,
		record.Latency.Milliseconds(), record.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record provider outcome: %w", err)
	}
	return nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
