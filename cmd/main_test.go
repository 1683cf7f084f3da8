package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	rediscache "github.com/davidbz/relay/internal/cache/redis"
	sqlitecache "github.com/davidbz/relay/internal/cache/sqlite"
	"github.com/davidbz/relay/internal/config"
	embedopenai "github.com/davidbz/relay/internal/embedding/openai"
)

func cacheConfig(backend string, embedding embedopenai.Config) *config.Config {
	cfg := &config.Config{Embedding: embedding}
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = backend
	return cfg
}

func TestNewEmbeddingGenerator(t *testing.T) {
	t.Run("should return nil when caching is disabled", func(t *testing.T) {
		cfg := cacheConfig(config.BackendSQLite, embedopenai.Config{})

		generator, err := newEmbeddingGenerator(cfg, &cfg.Embedding)
		require.NoError(t, err)
		require.Nil(t, generator)
	})

	t.Run("should resolve a zero dimension to the model size", func(t *testing.T) {
		cfg := cacheConfig(config.BackendRedis, embedopenai.Config{
			APIKey: "k", Model: "text-embedding-3-large",
		})

		generator, err := newEmbeddingGenerator(cfg, &cfg.Embedding)
		require.NoError(t, err)
		require.Equal(t, 3072, generator.Dimension())
	})

	t.Run("should fail before any store is opened", func(t *testing.T) {
		cfg := cacheConfig(config.BackendRedis, embedopenai.Config{
			APIKey: "k", Model: "text-embedding-ada-002", Dimension: 256,
		})

		_, err := newEmbeddingGenerator(cfg, &cfg.Embedding)
		require.ErrorContains(t, err, "failed to create embedding generator")
	})
}

func TestNewCacheBackend(t *testing.T) {
	t.Run("should keep only the metrics sink without a generator", func(t *testing.T) {
		cfg := cacheConfig(config.BackendSQLite, embedopenai.Config{})

		backend, err := newCacheBackend(cfg, &sqlitecache.Config{Path: sqlitecache.MemoryPath}, &rediscache.Config{}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = backend.Close() })

		require.Nil(t, backend.Store)
		require.NotNil(t, backend.Sink)
	})

	t.Run("should serve vectors when a generator exists", func(t *testing.T) {
		cfg := cacheConfig(config.BackendSQLite, embedopenai.Config{APIKey: "k"})
		generator, err := newEmbeddingGenerator(cfg, &cfg.Embedding)
		require.NoError(t, err)

		backend, err := newCacheBackend(cfg, &sqlitecache.Config{Path: sqlitecache.MemoryPath}, &rediscache.Config{}, generator)
		require.NoError(t, err)
		t.Cleanup(func() { _ = backend.Close() })

		require.NotNil(t, backend.Store)
	})
}
