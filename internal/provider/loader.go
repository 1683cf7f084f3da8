package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbz/relay/internal/catalog"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
	"github.com/davidbz/relay/internal/provider/echo"
	"github.com/davidbz/relay/internal/provider/openai"
)

// LimitSetter configures per-provider request windows.
type LimitSetter interface {
	SetLimit(providerID string, maxRequests int)
}

// Loader applies catalogs to the registry. Known providers get their static
// metadata replaced; new providers are built and registered. Providers
// missing from a later catalog stay registered.
type Loader struct {
	factory  *Factory
	registry domain.ProviderRegistry
	limiter  LimitSetter
	pricing  domain.PricingRegistry
}

// NewLoader creates a catalog loader.
func NewLoader(
	factory *Factory,
	registry domain.ProviderRegistry,
	limiter LimitSetter,
	pricing domain.PricingRegistry,
) *Loader {
	return &Loader{
		factory:  factory,
		registry: registry,
		limiter:  limiter,
		pricing:  pricing,
	}
}

// Apply registers or updates every entry. A failing entry does not stop the
// others; all failures are returned together.
func (l *Loader) Apply(ctx context.Context, cat *catalog.Catalog) error {
	var errs []error
	for _, entry := range cat.Providers {
		if err := l.apply(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", entry.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Reload is Apply for the catalog watcher: errors are logged, not returned.
func (l *Loader) Reload(ctx context.Context, cat *catalog.Catalog) {
	if err := l.Apply(ctx, cat); err != nil {
		observability.FromContext(ctx).Error("catalog reload partially failed", observability.Error(err))
	}
}

func (l *Loader) apply(ctx context.Context, entry catalog.Entry) error {
	spec := entry.Spec()

	if err := l.registerPricing(ctx, spec); err != nil {
		return err
	}
	l.limiter.SetLimit(spec.ID, spec.RateLimit)

	existing, err := l.registry.Get(ctx, spec.ID)
	switch {
	case err == nil:
		if existing.Spec.Kind != spec.Kind || existing.Spec.Endpoint != spec.Endpoint {
			observability.FromContext(ctx).Warn("provider kind or endpoint changed; restart to rebuild the client",
				observability.String("provider_id", spec.ID))
		}
		return l.registry.UpdateSpec(ctx, spec)
	case !errors.Is(err, domain.ErrProviderNotFound):
		return err
	}

	client, err := l.factory.New(entry)
	if err != nil {
		return fmt.Errorf("failed to build adapter: %w", err)
	}
	return l.registry.Register(ctx, spec, client)
}

func (l *Loader) registerPricing(ctx context.Context, spec domain.ProviderSpec) error {
	switch spec.Kind {
	case domain.KindOpenAI:
		if err := openai.RegisterPricing(ctx, l.pricing, spec.ID); err != nil {
			return err
		}
	case domain.KindEcho:
		if err := echo.RegisterPricing(ctx, l.pricing, spec.ID, spec.Models); err != nil {
			return err
		}
	case domain.KindHTTP:
	}

	for model, pricing := range spec.Pricing {
		if err := l.pricing.RegisterPricing(ctx, spec.ID, model, pricing); err != nil {
			return fmt.Errorf("failed to register pricing for model %s: %w", model, err)
		}
	}
	return nil
}
