package domain

import (
	"context"
	"errors"
	"time"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/observability"
)

// GatewayConfig contains request handling settings.
type GatewayConfig struct {
	RequestTimeout time.Duration `env:"ROUTER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// GatewayService puts the semantic cache in front of the router.
type GatewayService struct {
	router         Router
	cache          SemanticCache
	clock          clock.Clock
	requestTimeout time.Duration
}

// NewGatewayService creates a new gateway service (DI constructor). A nil
// cache disables caching.
func NewGatewayService(router Router, cache SemanticCache, clk clock.Clock, cfg *GatewayConfig) *GatewayService {
	return &GatewayService{
		router:         router,
		cache:          cache,
		clock:          clk,
		requestTimeout: cfg.RequestTimeout,
	}
}

// Handle validates the request, serves it from cache when possible and
// otherwise routes it to a provider. Cache failures never fail the request.
func (g *GatewayService) Handle(ctx context.Context, req *Request) (*Response, error) {
	normalized, err := NormalizeRequest(req)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && g.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}

	if observability.GetRequestID(ctx) == "" {
		ctx = observability.WithRequestID(ctx, normalized.ID)
	}
	if normalized.UserID != "" {
		ctx = observability.WithUserID(ctx, normalized.UserID)
	}

	logger := observability.FromContext(ctx)
	useCache := g.cache != nil && !normalized.SkipCache

	if useCache {
		start := g.clock.Now()
		match, cacheErr := g.cache.GetCachedResponse(ctx, normalized.Prompt, normalized.TaskType)
		switch {
		case cacheErr == nil && match != nil:
			return &Response{
				ID:           normalized.ID,
				Content:      match.Answer,
				Provider:     match.Provider,
				Model:        match.Model,
				ResponseTime: g.clock.Now().Sub(start),
				Confidence:   match.Similarity,
				CacheHit:     true,
				Similarity:   match.Similarity,
			}, nil
		case cacheErr != nil && !errors.Is(cacheErr, ErrCacheMiss):
			logger.Warn("cache lookup failed, continuing without cache",
				observability.Error(cacheErr))
		}
	}

	resp, err := g.router.Route(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if useCache {
		_, setErr := g.cache.CacheResponse(ctx, CacheEntry{
			Question:   normalized.Prompt,
			Answer:     resp.Content,
			TaskType:   normalized.TaskType,
			Model:      resp.Model,
			Provider:   resp.Provider,
			TokensUsed: resp.TokensUsed,
			UserID:     normalized.UserID,
			Metadata:   normalized.Metadata,
		})
		if setErr != nil {
			logger.Warn("failed to store in cache", observability.Error(setErr))
		}
	}

	return resp, nil
}
