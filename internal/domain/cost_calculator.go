package domain

import (
	"context"
	"errors"
)

// StandardCostCalculator prices calls from per-model pricing when known and
// from the provider's flat cost per token otherwise.
type StandardCostCalculator struct {
	pricing PricingRegistry
}

// NewStandardCostCalculator creates a new cost calculator.
func NewStandardCostCalculator(registry PricingRegistry) *StandardCostCalculator {
	return &StandardCostCalculator{pricing: registry}
}

func (c *StandardCostCalculator) Calculate(
	ctx context.Context,
	spec ProviderSpec,
	model string,
	usage Usage,
) (float64, error) {
	if model == "" {
		return 0, errors.New("model cannot be empty")
	}

	pricing, err := c.pricing.GetPricing(ctx, spec.ID, model)
	switch {
	case errors.Is(err, ErrPricingNotFound):
		return float64(usage.TotalTokens) * spec.CostPerToken, nil
	case err != nil:
		return 0, err
	}

	return pricing.Cost(usage), nil
}
