package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("should load config with defaults", func(t *testing.T) {
		// Clear environment
		os.Clearenv()

		cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		require.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
		require.Zero(t, cfg.OpenAI.MaxRetries)
		require.Empty(t, cfg.OpenAI.APIKey)

		require.InDelta(t, 0.85, cfg.Semantic.SimilarityThreshold, 1e-9)
		require.Equal(t, 7*24*time.Hour, cfg.Semantic.MaxAge)
		require.Equal(t, 100, cfg.RateLimit.MaxRequests)
		require.Equal(t, time.Minute, cfg.RateLimit.Window)
		require.Equal(t, 30*time.Second, cfg.Health.Interval)
		require.Equal(t, 5*time.Second, cfg.Health.ProbeTimeout)
		require.Equal(t, 30*time.Second, cfg.Routing.ProviderTimeout)
		require.Equal(t, time.Minute, cfg.Gateway.RequestTimeout)
		require.Equal(t, time.Hour, cfg.Janitor.Interval)
		require.Equal(t, 256, cfg.Queue.Capacity)
		require.Equal(t, config.BackendSQLite, cfg.Cache.Backend)
		require.Equal(t, "relay.db", cfg.SQLite.Path)
		require.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
		require.Equal(t, 1536, cfg.Embedding.Dimension)
		require.Equal(t, []string{"gpt-4o-mini", "gpt-4o"}, cfg.Catalog.OpenAIModels)
		require.False(t, cfg.CacheEnabled())
	})

	t.Run("should load config from environment variables", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("OPENAI_API_KEY", "sk-test-key")
		t.Setenv("OPENAI_BASE_URL", "https://test.openai.com")
		t.Setenv("OPENAI_TIMEOUT", "2m")
		t.Setenv("ROUTER_FALLBACK_ORDER", "openai,local,echo")
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("RATE_LIMIT_MAX_REQUESTS", "10")

		cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		require.Equal(t, 9000, cfg.Server.Port)
		require.Equal(t, "sk-test-key", cfg.OpenAI.APIKey)
		require.Equal(t, "sk-test-key", cfg.Embedding.APIKey)
		require.Equal(t, "https://test.openai.com", cfg.OpenAI.BaseURL)
		require.Equal(t, 2*time.Minute, cfg.OpenAI.Timeout)
		require.Equal(t, []string{"openai", "local", "echo"}, cfg.Routing.FallbackOrder)
		require.Equal(t, "redis:6379", cfg.Redis.Addr)
		require.Equal(t, 10, cfg.RateLimit.MaxRequests)
		require.True(t, cfg.CacheEnabled())
	})

	t.Run("should read variables from an env file", func(t *testing.T) {
		os.Clearenv()
		path := filepath.Join(t.TempDir(), "relay.env")
		require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=7070\nCACHE_ENABLED=false\n"), 0o600))
		t.Cleanup(os.Clearenv)

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, 7070, cfg.Server.Port)
		require.False(t, cfg.Cache.Enabled)
	})

	t.Run("should reject invalid settings", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "memcached")
		t.Setenv("CACHE_SIMILARITY_THRESHOLD", "1.5")

		_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
		require.ErrorContains(t, err, `unknown cache backend "memcached"`)
		require.ErrorContains(t, err, "similarity threshold")
	})

	t.Run("should reject a write timeout shorter than the request timeout", func(t *testing.T) {
		t.Setenv("SERVER_WRITE_TIMEOUT", "30s")
		t.Setenv("ROUTER_REQUEST_TIMEOUT", "60s")

		_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
		require.ErrorContains(t, err, "must exceed request timeout")
	})
}

func TestParseDependenciesConfig(t *testing.T) {
	t.Run("should expose pointers into the loaded config", func(t *testing.T) {
		cfg := &config.Config{}
		deps := config.ParseDependenciesConfig(cfg)

		require.Same(t, &cfg.Server, deps.Server)
		require.Same(t, &cfg.Routing, deps.Routing)
		require.Same(t, &cfg.Semantic, deps.Semantic)
	})
}
