package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/mocks"
)

func newGateway(router domain.Router, cache domain.SemanticCache) *domain.GatewayService {
	return domain.NewGatewayService(router, cache, clock.Fake(cacheNow), &domain.GatewayConfig{
		RequestTimeout: time.Minute,
	})
}

func TestGatewayService_Handle(t *testing.T) {
	routed := &domain.Response{
		Content:    "routed answer",
		Provider:   "openai",
		Model:      "gpt-4o",
		TokensUsed: 12,
		Confidence: 0.95,
	}

	t.Run("should serve a cache hit without routing", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		cache := mocks.NewMockSemanticCache(t)
		cache.EXPECT().
			GetCachedResponse(mock.Anything, "What is Go?", domain.TaskGeneral).
			Return(&domain.CacheMatch{ID: "item-1", Answer: "cached", Similarity: 0.9, Provider: "openai"}, nil)

		resp, err := newGateway(router, cache).Handle(context.Background(), &domain.Request{Prompt: "What is Go?"})
		require.NoError(t, err)
		require.True(t, resp.CacheHit)
		require.Equal(t, "cached", resp.Content)
		require.InEpsilon(t, 0.9, resp.Confidence, 1e-9)
		require.InEpsilon(t, 0.9, resp.Similarity, 1e-9)
		require.Zero(t, resp.TokensUsed)
		require.Zero(t, resp.Cost)
		require.NotEmpty(t, resp.ID)
		router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
	})

	t.Run("should route and store on a miss", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		cache := mocks.NewMockSemanticCache(t)
		cache.EXPECT().
			GetCachedResponse(mock.Anything, "Explain channels", domain.TaskCoding).
			Return(nil, domain.ErrCacheMiss)
		router.EXPECT().Route(mock.Anything, mock.AnythingOfType("*domain.Request")).Return(routed, nil)
		cache.EXPECT().
			CacheResponse(mock.Anything, mock.MatchedBy(func(entry domain.CacheEntry) bool {
				return entry.Question == "Explain channels" &&
					entry.Answer == "routed answer" &&
					entry.TaskType == domain.TaskCoding &&
					entry.Provider == "openai"
			})).
			Return("new-id", nil)

		resp, err := newGateway(router, cache).Handle(context.Background(), &domain.Request{
			Prompt:   "Explain channels",
			TaskType: domain.TaskCoding,
		})
		require.NoError(t, err)
		require.False(t, resp.CacheHit)
		require.Equal(t, "routed answer", resp.Content)
	})

	t.Run("should treat cache failures as a miss", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		cache := mocks.NewMockSemanticCache(t)
		cache.EXPECT().GetCachedResponse(mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("store unreachable"))
		router.EXPECT().Route(mock.Anything, mock.Anything).Return(routed, nil)
		cache.EXPECT().CacheResponse(mock.Anything, mock.Anything).Return("", errors.New("store unreachable"))

		resp, err := newGateway(router, cache).Handle(context.Background(), &domain.Request{Prompt: "hi"})
		require.NoError(t, err)
		require.Equal(t, "routed answer", resp.Content)
	})

	t.Run("should bypass the cache when requested", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		cache := mocks.NewMockSemanticCache(t)
		router.EXPECT().Route(mock.Anything, mock.Anything).Return(routed, nil)

		_, err := newGateway(router, cache).Handle(context.Background(), &domain.Request{Prompt: "hi", SkipCache: true})
		require.NoError(t, err)
		cache.AssertNotCalled(t, "GetCachedResponse", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "CacheResponse", mock.Anything, mock.Anything)
	})

	t.Run("should work with caching disabled", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		router.EXPECT().Route(mock.Anything, mock.Anything).Return(routed, nil)

		resp, err := newGateway(router, nil).Handle(context.Background(), &domain.Request{Prompt: "hi"})
		require.NoError(t, err)
		require.Equal(t, "openai", resp.Provider)
	})

	t.Run("should apply a default deadline", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		router.EXPECT().Route(mock.Anything, mock.Anything).
			RunAndReturn(func(ctx context.Context, _ *domain.Request) (*domain.Response, error) {
				_, ok := ctx.Deadline()
				require.True(t, ok)
				return routed, nil
			})

		_, err := newGateway(router, nil).Handle(context.Background(), &domain.Request{Prompt: "hi"})
		require.NoError(t, err)
	})

	t.Run("should propagate routing errors without caching", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		cache := mocks.NewMockSemanticCache(t)
		cache.EXPECT().GetCachedResponse(mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		router.EXPECT().Route(mock.Anything, mock.Anything).
			Return(nil, &domain.AllProvidersFailedError{})

		_, err := newGateway(router, cache).Handle(context.Background(), &domain.Request{Prompt: "hi"})
		require.ErrorIs(t, err, domain.ErrAllProvidersFailed)
		cache.AssertNotCalled(t, "CacheResponse", mock.Anything, mock.Anything)
	})

	t.Run("should reject invalid requests", func(t *testing.T) {
		router := mocks.NewMockRouter(t)

		_, err := newGateway(router, nil).Handle(context.Background(), &domain.Request{Prompt: ""})
		require.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = newGateway(router, nil).Handle(context.Background(), nil)
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
