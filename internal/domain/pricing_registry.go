package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPricingNotFound is returned for a provider/model pair with no pricing.
var ErrPricingNotFound = errors.New("pricing not found")

type pricingKey struct {
	provider string
	model    string
}

// InMemoryPricingRegistry keeps pricing in a map guarded by a RWMutex.
type InMemoryPricingRegistry struct {
	mu     sync.RWMutex
	prices map[pricingKey]PricingConfig
}

// NewInMemoryPricingRegistry creates an empty pricing registry.
func NewInMemoryPricingRegistry() *InMemoryPricingRegistry {
	return &InMemoryPricingRegistry{
		prices: make(map[pricingKey]PricingConfig),
	}
}

func (r *InMemoryPricingRegistry) GetPricing(_ context.Context, providerID, model string) (PricingConfig, error) {
	r.mu.RLock()
	config, ok := r.prices[pricingKey{provider: providerID, model: model}]
	r.mu.RUnlock()

	if !ok {
		return PricingConfig{}, fmt.Errorf("%w: %s/%s", ErrPricingNotFound, providerID, model)
	}
	return config, nil
}

// RegisterPricing replaces any earlier pricing for the pair.
func (r *InMemoryPricingRegistry) RegisterPricing(
	_ context.Context,
	providerID string,
	model string,
	config PricingConfig,
) error {
	switch {
	case providerID == "":
		return errors.New("provider id cannot be empty")
	case model == "":
		return errors.New("model cannot be empty")
	case config.InputCostPer1K < 0 || config.OutputCostPer1K < 0:
		return fmt.Errorf("negative pricing for %s/%s", providerID, model)
	}

	r.mu.Lock()
	r.prices[pricingKey{provider: providerID, model: model}] = config
	r.mu.Unlock()
	return nil
}
