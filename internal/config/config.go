package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	rediscache "github.com/davidbz/relay/internal/cache/redis"
	sqlitecache "github.com/davidbz/relay/internal/cache/sqlite"
	"github.com/davidbz/relay/internal/catalog"
	"github.com/davidbz/relay/internal/domain"
	embedopenai "github.com/davidbz/relay/internal/embedding/openai"
	"github.com/davidbz/relay/internal/health"
	"github.com/davidbz/relay/internal/janitor"
	"github.com/davidbz/relay/internal/observability"
	chatopenai "github.com/davidbz/relay/internal/provider/openai"
	"github.com/davidbz/relay/internal/queue"
	"github.com/davidbz/relay/internal/ratelimit"
	"github.com/davidbz/relay/internal/routing"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config represents the relay configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Ingress   IngressConfig
	Log       observability.LogConfig
	Cache     CacheConfig
	OpenAI    chatopenai.Config
	Embedding embedopenai.Config
	Semantic  domain.SemanticCacheConfig
	Gateway   domain.GatewayConfig
	Routing   routing.Config
	RateLimit ratelimit.Config
	Health    health.Config
	Queue     queue.Config
	Janitor   janitor.Config
	Catalog   catalog.Config
	SQLite    sqlitecache.Config
	Redis     rediscache.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port              int           `env:"SERVER_PORT"                envDefault:"8080"`
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ReadTimeout       time.Duration `env:"SERVER_READ_TIMEOUT"        envDefault:"30s"`
	WriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT"       envDefault:"90s"`
	IdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT"        envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT"    envDefault:"15s"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization,X-User-Id,X-Request-Id"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// IngressConfig limits request rate per client at the HTTP edge.
type IngressConfig struct {
	RatePerSecond float64       `env:"INGRESS_RATE_PER_SECOND" envDefault:"20"`
	Burst         int           `env:"INGRESS_BURST"           envDefault:"50"`
	IdleTTL       time.Duration `env:"INGRESS_IDLE_TTL"        envDefault:"10m"`
}

// CacheConfig selects the semantic cache backend.
type CacheConfig struct {
	Enabled bool   `env:"CACHE_ENABLED" envDefault:"true"`
	Backend string `env:"CACHE_BACKEND" envDefault:"sqlite"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	Server    *ServerConfig
	CORS      *CORSConfig
	Ingress   *IngressConfig
	Log       *observability.LogConfig
	Cache     *CacheConfig
	OpenAI    *chatopenai.Config
	Embedding *embedopenai.Config
	Semantic  *domain.SemanticCacheConfig
	Gateway   *domain.GatewayConfig
	Routing   *routing.Config
	RateLimit *ratelimit.Config
	Health    *health.Config
	Queue     *queue.Config
	Janitor   *janitor.Config
	Catalog   *catalog.Config
	SQLite    *sqlitecache.Config
	Redis     *rediscache.Config
}

// Load loads environment files and parses configuration. Missing files are
// skipped; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case BackendSQLite, BackendRedis, BackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}

	if c.Semantic.SimilarityThreshold <= 0 || c.Semantic.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity threshold %.2f outside (0, 1]", c.Semantic.SimilarityThreshold))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.Health.Interval <= 0 {
		errs = append(errs, errors.New("health check interval must be positive"))
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Gateway.RequestTimeout {
		errs = append(errs, fmt.Errorf("server write timeout %s must exceed request timeout %s",
			c.Server.WriteTimeout, c.Gateway.RequestTimeout))
	}
	if c.Queue.Capacity <= 0 {
		errs = append(errs, errors.New("queue capacity must be positive"))
	}

	return errors.Join(errs...)
}

// CacheEnabled reports whether a semantic cache should be built.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && c.Cache.Backend != BackendNone && c.Embedding.APIKey != ""
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Server:    &cfg.Server,
		CORS:      &cfg.CORS,
		Ingress:   &cfg.Ingress,
		Log:       &cfg.Log,
		Cache:     &cfg.Cache,
		OpenAI:    &cfg.OpenAI,
		Embedding: &cfg.Embedding,
		Semantic:  &cfg.Semantic,
		Gateway:   &cfg.Gateway,
		Routing:   &cfg.Routing,
		RateLimit: &cfg.RateLimit,
		Health:    &cfg.Health,
		Queue:     &cfg.Queue,
		Janitor:   &cfg.Janitor,
		Catalog:   &cfg.Catalog,
		SQLite:    &cfg.SQLite,
		Redis:     &cfg.Redis,
	}
}
