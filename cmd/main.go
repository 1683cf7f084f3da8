package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/davidbz/relay/internal/cache/redis"
	sqlitecache "github.com/davidbz/relay/internal/cache/sqlite"
	"github.com/davidbz/relay/internal/catalog"
	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/config"
	"github.com/davidbz/relay/internal/domain"
	embedopenai "github.com/davidbz/relay/internal/embedding/openai"
	"github.com/davidbz/relay/internal/health"
	relayhttp "github.com/davidbz/relay/internal/http"
	"github.com/davidbz/relay/internal/http/middleware"
	"github.com/davidbz/relay/internal/janitor"
	"github.com/davidbz/relay/internal/metrics"
	"github.com/davidbz/relay/internal/observability"
	"github.com/davidbz/relay/internal/provider"
	chatopenai "github.com/davidbz/relay/internal/provider/openai"
	"github.com/davidbz/relay/internal/provider/registry"
	"github.com/davidbz/relay/internal/queue"
	"github.com/davidbz/relay/internal/ratelimit"
	"github.com/davidbz/relay/internal/routing"
)

type flags struct {
	envFiles    []string
	catalogPath string
}

func main() {
	var f flags
	pflag.StringSliceVar(&f.envFiles, "env-file", []string{".env"}, "environment files to load (missing files are skipped)")
	pflag.StringVar(&f.catalogPath, "catalog", "", "provider catalog file (.toml or .yaml), overrides PROVIDER_CATALOG")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := buildContainer(f)

	if err := container.Invoke(func(app application) error {
		return run(ctx, app)
	}); err != nil {
		log.Fatalf("Failed to run application: %v", err)
	}
}

// cacheBackend is the storage behind the semantic cache and the metrics sink.
// Store and Sink are nil when caching is disabled.
type cacheBackend struct {
	Store domain.VectorStore
	Sink  domain.MetricsSink
	close func() error
}

func (b *cacheBackend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

type application struct {
	dig.In

	Config   *config.Config
	Logger   *zap.Logger
	Backend  *cacheBackend
	Registry *registry.Registry
	Loader   *provider.Loader
	Queue    *queue.Queue
	Monitor  *health.Monitor
	Janitor  *janitor.Janitor
	Server   *relayhttp.Server
}

func buildContainer(f flags) *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.Load(f.envFiles...)
		if err != nil {
			return nil, err
		}
		if f.catalogPath != "" {
			cfg.Catalog.Path = f.catalogPath
		}
		return cfg, nil
	}); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(clock.Real); err != nil {
		log.Fatalf("Failed to provide clock: %v", err)
	}

	// Providers
	if err := container.Provide(registry.NewRegistry); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}
	if err := container.Provide(func(reg *registry.Registry) domain.ProviderRegistry {
		return reg
	}); err != nil {
		log.Fatalf("Failed to provide registry interface: %v", err)
	}
	if err := container.Provide(ratelimit.NewLimiter); err != nil {
		log.Fatalf("Failed to provide rate limiter: %v", err)
	}
	if err := container.Provide(func() domain.PricingRegistry {
		return domain.NewInMemoryPricingRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide pricing registry: %v", err)
	}
	if err := container.Provide(func(pricing domain.PricingRegistry) domain.CostCalculator {
		return domain.NewStandardCostCalculator(pricing)
	}); err != nil {
		log.Fatalf("Failed to provide cost calculator: %v", err)
	}
	if err := container.Provide(func(cfg *chatopenai.Config) *provider.Factory {
		return provider.NewFactory(http.DefaultClient, *cfg)
	}); err != nil {
		log.Fatalf("Failed to provide provider factory: %v", err)
	}
	if err := container.Provide(func(
		factory *provider.Factory,
		reg domain.ProviderRegistry,
		limiter *ratelimit.Limiter,
		pricing domain.PricingRegistry,
	) *provider.Loader {
		return provider.NewLoader(factory, reg, limiter, pricing)
	}); err != nil {
		log.Fatalf("Failed to provide provider loader: %v", err)
	}

	// Storage, metrics and semantic cache
	if err := container.Provide(newEmbeddingGenerator); err != nil {
		log.Fatalf("Failed to provide embedding generator: %v", err)
	}
	if err := container.Provide(newCacheBackend); err != nil {
		log.Fatalf("Failed to provide cache backend: %v", err)
	}
	if err := container.Provide(func(backend *cacheBackend, clk clock.Clock) *metrics.Recorder {
		return metrics.NewRecorder(backend.Sink, clk)
	}); err != nil {
		log.Fatalf("Failed to provide metrics recorder: %v", err)
	}
	if err := container.Provide(newSemanticCache); err != nil {
		log.Fatalf("Failed to provide semantic cache: %v", err)
	}

	// Routing
	if err := container.Provide(func(
		reg domain.ProviderRegistry,
		limiter *ratelimit.Limiter,
		costCalculator domain.CostCalculator,
		recorder *metrics.Recorder,
		clk clock.Clock,
		cfg *routing.Config,
	) *routing.ScoringRouter {
		return routing.NewRouter(reg, limiter, costCalculator, recorder, clk, cfg)
	}); err != nil {
		log.Fatalf("Failed to provide router: %v", err)
	}
	if err := container.Provide(func(
		router *routing.ScoringRouter,
		cache *domain.SemanticCacheService,
		clk clock.Clock,
		cfg *domain.GatewayConfig,
	) *domain.GatewayService {
		if cache == nil {
			return domain.NewGatewayService(router, nil, clk, cfg)
		}
		return domain.NewGatewayService(router, cache, clk, cfg)
	}); err != nil {
		log.Fatalf("Failed to provide gateway service: %v", err)
	}
	if err := container.Provide(func(
		gateway *domain.GatewayService,
		cfg *queue.Config,
		gatewayCfg *domain.GatewayConfig,
	) *queue.Queue {
		return queue.New(gateway, cfg, queue.WithRequestTimeout(gatewayCfg.RequestTimeout))
	}); err != nil {
		log.Fatalf("Failed to provide queue: %v", err)
	}

	// Background workers
	if err := container.Provide(health.NewMonitor); err != nil {
		log.Fatalf("Failed to provide health monitor: %v", err)
	}
	if err := container.Provide(func(
		cache *domain.SemanticCacheService,
		clk clock.Clock,
		cfg *janitor.Config,
	) *janitor.Janitor {
		if cache == nil {
			return nil
		}
		return janitor.New(cache, clk, cfg)
	}); err != nil {
		log.Fatalf("Failed to provide cache janitor: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(func(
		q *queue.Queue,
		reg *registry.Registry,
		cache *domain.SemanticCacheService,
		recorder *metrics.Recorder,
	) *relayhttp.Handler {
		if cache == nil {
			return relayhttp.NewHandler(q, reg, nil, recorder)
		}
		return relayhttp.NewHandler(q, reg, cache, recorder)
	}); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(relayhttp.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// newEmbeddingGenerator returns nil when caching is disabled. It runs before
// any store is opened so a model that cannot produce the configured size
// fails startup without side effects.
func newEmbeddingGenerator(cfg *config.Config, embeddingCfg *embedopenai.Config) (*embedopenai.Generator, error) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}

	generator, err := embedopenai.NewGenerator(*embeddingCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding generator: %w", err)
	}
	return generator, nil
}

// newCacheBackend opens the configured store. A disabled cache still gets a
// SQLite metrics sink when the backend is sqlite. Vector indexes are sized
// from the generator.
func newCacheBackend(
	cfg *config.Config,
	sqliteCfg *sqlitecache.Config,
	redisCfg *rediscache.Config,
	generator *embedopenai.Generator,
) (*cacheBackend, error) {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		store, err := sqlitecache.Open(ctx, sqliteCfg.Path)
		if err != nil {
			return nil, err
		}
		backend := &cacheBackend{Sink: store, close: store.Close}
		if generator != nil {
			backend.Store = store
		}
		logger.Info("sqlite backend opened", observability.String("path", sqliteCfg.Path))
		return backend, nil

	case config.BackendRedis:
		client := rediscache.NewClient(redisCfg)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		backend := &cacheBackend{
			Sink:  rediscache.NewStreamSink(client, redisCfg.StreamMaxLen),
			close: client.Close,
		}
		if generator != nil {
			search, err := rediscache.NewVectorSearch(ctx, client, redisCfg.IndexName, generator.Dimension())
			if err != nil {
				_ = client.Close()
				return nil, err
			}
			backend.Store = search
		}
		logger.Info("redis backend connected", observability.String("addr", redisCfg.Addr))
		return backend, nil

	default:
		return &cacheBackend{}, nil
	}
}

// newSemanticCache returns nil when caching is disabled.
func newSemanticCache(
	backend *cacheBackend,
	generator *embedopenai.Generator,
	recorder *metrics.Recorder,
	clk clock.Clock,
	cfg *domain.SemanticCacheConfig,
) (*domain.SemanticCacheService, error) {
	if backend.Store == nil || generator == nil {
		observability.FromContext(context.Background()).Info("semantic cache disabled")
		return nil, nil
	}

	return domain.NewSemanticCacheService(generator, backend.Store, recorder, clk, cfg), nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(&cfg.Catalog, cfg.OpenAI.APIKey != ""), nil
	}
	return catalog.Load(cfg.Catalog.Path)
}

func run(ctx context.Context, app application) error {
	logger := app.Logger
	defer func() { _ = logger.Sync() }()
	defer func() {
		if err := app.Backend.Close(); err != nil {
			logger.Warn("failed to close cache backend", observability.Error(err))
		}
	}()

	cat, err := loadCatalog(app.Config)
	if err != nil {
		return err
	}
	if err := app.Loader.Apply(ctx, cat); err != nil {
		return fmt.Errorf("failed to register providers: %w", err)
	}
	if app.Registry.Len() == 0 {
		logger.Warn("no providers registered, every request will fail")
	}

	if app.Config.Catalog.Path != "" && app.Config.Catalog.Watch {
		if err := catalog.Watch(ctx, app.Config.Catalog.Path, app.Config.Catalog.Debounce, app.Loader.Reload); err != nil {
			return err
		}
	}

	app.Queue.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Monitor.Run(gctx)
		return nil
	})
	if app.Janitor != nil {
		g.Go(func() error {
			app.Janitor.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		return app.Server.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()

		err := app.Server.Shutdown(shutdownCtx)
		app.Queue.Close()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("relay stopped")
	return nil
}
