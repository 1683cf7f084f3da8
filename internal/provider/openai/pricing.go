package openai

import (
	"context"
	"fmt"

	"github.com/davidbz/relay/internal/domain"
)

// listPricing is USD per 1K tokens for well-known chat models.
//
//nolint:gochecknoglobals // read-only table
var listPricing = map[string]domain.PricingConfig{
	"gpt-4o":        {InputCostPer1K: 0.0025, OutputCostPer1K: 0.01},
	"gpt-4o-mini":   {InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
	"gpt-4-turbo":   {InputCostPer1K: 0.01, OutputCostPer1K: 0.03},
	"gpt-3.5-turbo": {InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015},
}

// RegisterPricing registers list pricing for the provider. Catalog pricing
// registered afterwards overrides these values.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry, providerID string) error {
	for model, config := range listPricing {
		if err := registry.RegisterPricing(ctx, providerID, model, config); err != nil {
			return fmt.Errorf("failed to register pricing for model %s: %w", model, err)
		}
	}
	return nil
}
