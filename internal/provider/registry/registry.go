package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

const (
	// MinReliability is the floor applied after repeated failures.
	MinReliability = 0.1
	// MaxReliability is the ceiling applied after repeated successes.
	MaxReliability = 1.0
	// AvailabilityThreshold is the reliability a provider must exceed to be selectable.
	AvailabilityThreshold = 0.3
	// ProbationReliability is granted when a healthy probe revives an unavailable provider.
	ProbationReliability = 0.5

	successGrowth   = 1.01
	failureDecay    = 0.95
	ewmaRetain      = 0.8
	ewmaObservation = 0.2
)

// Registry implements domain.ProviderRegistry. Iteration order is
// registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

// entry guards the dynamic state of a single provider.
type entry struct {
	mu           sync.Mutex
	spec         domain.ProviderSpec
	client       domain.Provider
	reliability  float64
	responseTime time.Duration
	health       domain.HealthRecord
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:      sync.RWMutex{},
		entries: make(map[string]*entry),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(ctx context.Context, spec domain.ProviderSpec, client domain.Provider) error {
	if client == nil {
		return errors.New("provider cannot be nil")
	}

	if spec.ID == "" {
		return errors.New("provider id cannot be empty")
	}

	seed := spec.SeedReliability
	if seed == 0 {
		seed = MaxReliability
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[spec.ID]; exists {
		return fmt.Errorf("provider %s already registered", spec.ID)
	}

	r.entries[spec.ID] = &entry{
		spec:         spec,
		client:       client,
		reliability:  clamp(seed),
		responseTime: spec.SeedResponseTime,
		health: domain.HealthRecord{
			Status:      domain.HealthHealthy,
			SuccessRate: 1,
		},
	}
	r.order = append(r.order, spec.ID)

	observability.FromContext(ctx).Info("provider registered",
		observability.String("provider_id", spec.ID),
		observability.String("kind", string(spec.Kind)),
		observability.Strings("models", spec.Models))

	return nil
}

// Get returns a snapshot of a provider.
func (r *Registry) Get(_ context.Context, id string) (domain.ProviderSnapshot, error) {
	e, err := r.lookup(id)
	if err != nil {
		return domain.ProviderSnapshot{}, err
	}
	return e.snapshot(), nil
}

// Client returns the adapter used to call a provider.
func (r *Registry) Client(_ context.Context, id string) (domain.Provider, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client, nil
}

// List returns snapshots of every provider in registration order.
func (r *Registry) List(_ context.Context) []domain.ProviderSnapshot {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.entries[id])
	}
	r.mu.RUnlock()

	snapshots := make([]domain.ProviderSnapshot, 0, len(entries))
	for _, e := range entries {
		snapshots = append(snapshots, e.snapshot())
	}
	return snapshots
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// RecordSuccess raises reliability and blends latency into the moving average.
func (r *Registry) RecordSuccess(ctx context.Context, id string, latency time.Duration) {
	e, err := r.lookup(id)
	if err != nil {
		observability.FromContext(ctx).Warn("success recorded for unknown provider",
			observability.String("provider_id", id))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reliability = clamp(e.reliability * successGrowth)
	e.responseTime = time.Duration(ewmaRetain*float64(e.responseTime) + ewmaObservation*float64(latency))
}

// RecordFailure lowers reliability.
func (r *Registry) RecordFailure(ctx context.Context, id string) {
	e, err := r.lookup(id)
	if err != nil {
		observability.FromContext(ctx).Warn("failure recorded for unknown provider",
			observability.String("provider_id", id))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reliability = clamp(e.reliability * failureDecay)
	if e.reliability <= AvailabilityThreshold {
		observability.FromContext(ctx).Warn("provider became unavailable",
			observability.String("provider_id", id),
			observability.Float64("reliability", e.reliability))
	}
}

// UpdateHealth stores a probe result. A healthy probe lifts a provider whose
// reliability has fallen to the availability threshold back to probation.
func (r *Registry) UpdateHealth(ctx context.Context, id string, record domain.HealthRecord) {
	e, err := r.lookup(id)
	if err != nil {
		observability.FromContext(ctx).Warn("health update for unknown provider",
			observability.String("provider_id", id))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.health = record
	if record.Status != domain.HealthDown && e.reliability <= AvailabilityThreshold {
		e.reliability = ProbationReliability
		observability.FromContext(ctx).Info("provider back on probation",
			observability.String("provider_id", id))
	}
}

// UpdateSpec replaces the static metadata of a registered provider and
// keeps its dynamic state.
func (r *Registry) UpdateSpec(_ context.Context, spec domain.ProviderSpec) error {
	e, err := r.lookup(spec.ID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.spec = spec
	return nil
}

func (r *Registry) lookup(id string) (*entry, error) {
	if id == "" {
		return nil, errors.New("provider id cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	return e, nil
}

func (e *entry) snapshot() domain.ProviderSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.ProviderSnapshot{
		Spec:             e.spec,
		ID:               e.spec.ID,
		Name:             e.spec.Name,
		Reliability:      e.reliability,
		ResponseTimeEWMA: e.responseTime,
		Health:           e.health,
		Available:        e.reliability > AvailabilityThreshold && e.health.Status != domain.HealthDown,
	}
}

func clamp(reliability float64) float64 {
	return min(MaxReliability, max(MinReliability, reliability))
}
