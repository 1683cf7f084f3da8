package echo

import (
	"context"
	"fmt"

	"github.com/davidbz/relay/internal/domain"
)

// RegisterPricing prices every echo model at zero for the given provider.
// Without it the router would charge the catalog's flat per-token rate.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry, providerID string, models []string) error {
	if len(models) == 0 {
		models = []string{defaultModel}
	}

	for _, model := range models {
		if err := registry.RegisterPricing(ctx, providerID, model, domain.PricingConfig{}); err != nil {
			return fmt.Errorf("failed to register echo pricing: %w", err)
		}
	}
	return nil
}
