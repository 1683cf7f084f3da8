package provider_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/catalog"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/provider"
	"github.com/davidbz/relay/internal/provider/openai"
	"github.com/davidbz/relay/internal/provider/registry"
)

type recordingLimiter struct {
	limits map[string]int
}

func (r *recordingLimiter) SetLimit(providerID string, maxRequests int) {
	r.limits[providerID] = maxRequests
}

type loaderFixture struct {
	registry *registry.Registry
	limiter  *recordingLimiter
	pricing  *domain.InMemoryPricingRegistry
	loader   *provider.Loader
}

func newLoaderFixture() *loaderFixture {
	f := &loaderFixture{
		registry: registry.NewRegistry(),
		limiter:  &recordingLimiter{limits: map[string]int{}},
		pricing:  domain.NewInMemoryPricingRegistry(),
	}
	factory := provider.NewFactory(http.DefaultClient, openai.Config{APIKey: "test-key"})
	f.loader = provider.NewLoader(factory, f.registry, f.limiter, f.pricing)
	return f
}

func TestFactory_New(t *testing.T) {
	factory := provider.NewFactory(http.DefaultClient, openai.Config{APIKey: "test-key"})

	tests := []struct {
		name    string
		entry   catalog.Entry
		wantErr string
	}{
		{name: "should build an openai adapter", entry: catalog.Entry{ID: "oa", Kind: "openai"}},
		{name: "should build an http adapter", entry: catalog.Entry{ID: "h", Kind: "http", Endpoint: "http://localhost/chat"}},
		{name: "should build an echo adapter", entry: catalog.Entry{ID: "e", Kind: "echo"}},
		{name: "should reject unknown kinds", entry: catalog.Entry{ID: "x", Kind: "smtp"}, wantErr: "unknown provider kind"},
		{name: "should surface adapter errors", entry: catalog.Entry{ID: "h", Kind: "http"}, wantErr: "endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := factory.New(tt.entry)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.entry.ID, client.Name())
		})
	}

	t.Run("should require an API key for openai entries", func(t *testing.T) {
		bare := provider.NewFactory(http.DefaultClient, openai.Config{})
		_, err := bare.New(catalog.Entry{ID: "oa", Kind: "openai", APIKeyEnv: "RELAY_TEST_UNSET_KEY"})
		require.ErrorContains(t, err, "API key is required")
	})
}

func TestLoader_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("should register providers with limits and pricing", func(t *testing.T) {
		f := newLoaderFixture()

		err := f.loader.Apply(ctx, &catalog.Catalog{Providers: []catalog.Entry{
			{ID: "echo", Kind: "echo", Models: []string{"echo4"}, RateLimit: 5},
			{
				ID:     "oa",
				Kind:   "openai",
				Models: []string{"gpt-4o-mini"},
				Pricing: map[string]domain.PricingConfig{
					"gpt-4o-mini": {InputCostPer1K: 1, OutputCostPer1K: 2},
				},
			},
		}})
		require.NoError(t, err)

		providers := f.registry.List(ctx)
		require.Len(t, providers, 2)
		require.Equal(t, "echo", providers[0].ID)
		require.Equal(t, 5, f.limiter.limits["echo"])
		require.Zero(t, f.limiter.limits["oa"])

		override, err := f.pricing.GetPricing(ctx, "oa", "gpt-4o-mini")
		require.NoError(t, err)
		require.InDelta(t, 1.0, override.InputCostPer1K, 1e-12)

		_, err = f.pricing.GetPricing(ctx, "oa", "gpt-4o")
		require.NoError(t, err)
	})

	t.Run("should update known providers and keep their state", func(t *testing.T) {
		f := newLoaderFixture()
		entry := catalog.Entry{ID: "echo", Kind: "echo", Models: []string{"echo4"}, CostPerToken: 0.01, Reliability: 0.9}
		require.NoError(t, f.loader.Apply(ctx, &catalog.Catalog{Providers: []catalog.Entry{entry}}))
		f.registry.RecordFailure(ctx, "echo")

		entry.CostPerToken = 0.02
		f.loader.Reload(ctx, &catalog.Catalog{Providers: []catalog.Entry{entry}})

		snapshot, err := f.registry.Get(ctx, "echo")
		require.NoError(t, err)
		require.InDelta(t, 0.02, snapshot.Spec.CostPerToken, 1e-12)
		require.InDelta(t, 0.855, snapshot.Reliability, 1e-9)
		require.Equal(t, 1, f.registry.Len())
	})

	t.Run("should apply valid entries when others fail", func(t *testing.T) {
		f := newLoaderFixture()

		err := f.loader.Apply(ctx, &catalog.Catalog{Providers: []catalog.Entry{
			{ID: "broken", Kind: "http"},
			{ID: "echo", Kind: "echo", Models: []string{"echo4"}},
		}})
		require.ErrorContains(t, err, "provider broken")
		require.Equal(t, 1, f.registry.Len())
	})
}
