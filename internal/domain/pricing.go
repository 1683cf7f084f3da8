package domain

import "context"

const tokensPerPricingUnit = 1000.0

// PricingConfig is list pricing in USD per 1K tokens.
type PricingConfig struct {
	InputCostPer1K  float64 `toml:"input_cost_per_1k"  yaml:"input_cost_per_1k"`
	OutputCostPer1K float64 `toml:"output_cost_per_1k" yaml:"output_cost_per_1k"`
}

// Cost prices prompt and completion tokens separately.
func (p PricingConfig) Cost(usage Usage) float64 {
	return float64(usage.PromptTokens)/tokensPerPricingUnit*p.InputCostPer1K +
		float64(usage.CompletionTokens)/tokensPerPricingUnit*p.OutputCostPer1K
}

// CostCalculator calculates cost based on token usage.
type CostCalculator interface {
	// Calculate returns the total cost of a call to the given provider and model.
	Calculate(ctx context.Context, spec ProviderSpec, model string, usage Usage) (float64, error)
}

// PricingRegistry holds per-provider model pricing. The same model name
// served by two providers can carry two prices.
type PricingRegistry interface {
	// GetPricing returns the pricing for a model on a provider.
	GetPricing(ctx context.Context, providerID, model string) (PricingConfig, error)

	// RegisterPricing sets the pricing for a model on a provider.
	RegisterPricing(ctx context.Context, providerID, model string, config PricingConfig) error
}
