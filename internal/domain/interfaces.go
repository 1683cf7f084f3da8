package domain

import (
	"context"
	"time"
)

// Provider represents any LLM provider.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Probe performs a lightweight reachability check.
	Probe(ctx context.Context) error

	// Name returns the provider identifier.
	Name() string
}

// ProviderRegistry holds static provider metadata and the dynamic
// reliability, latency and health state mutated by call outcomes.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, spec ProviderSpec, client Provider) error

	// Get returns a snapshot of a single provider.
	Get(ctx context.Context, id string) (ProviderSnapshot, error)

	// Client returns the adapter used to call a provider.
	Client(ctx context.Context, id string) (Provider, error)

	// List returns snapshots of all providers in registration order.
	List(ctx context.Context) []ProviderSnapshot

	// RecordSuccess raises reliability and blends the observed latency.
	RecordSuccess(ctx context.Context, id string, latency time.Duration)

	// RecordFailure lowers reliability.
	RecordFailure(ctx context.Context, id string)

	// UpdateHealth stores the latest probe result.
	UpdateHealth(ctx context.Context, id string, record HealthRecord)

	// UpdateSpec replaces static metadata, keeping dynamic state.
	UpdateSpec(ctx context.Context, spec ProviderSpec) error
}

// RateLimiter tracks per-provider request windows.
type RateLimiter interface {
	// Allow consumes a slot for the provider, returning false when the window is full.
	Allow(providerID string) bool

	// Allowed reports whether a slot is free without consuming it.
	Allowed(providerID string) bool
}

// Router selects a provider for a request and executes it with fallback.
type Router interface {
	// Route resolves a request to a provider response.
	Route(ctx context.Context, req *Request) (*Response, error)
}

// MetricsRecorder records cache and provider outcomes.
type MetricsRecorder interface {
	// CacheHit records a hit on a cache item.
	CacheHit(ctx context.Context, itemID, userID string)

	// CacheMiss records a lookup that did not produce a hit.
	CacheMiss(ctx context.Context, taskType TaskType)

	// ProviderOutcome records the result of one provider call.
	ProviderOutcome(ctx context.Context, record OutcomeRecord)
}

// MetricsSink is the append-only persistence behind the metrics recorder.
type MetricsSink interface {
	// RecordHit appends a cache hit record.
	RecordHit(ctx context.Context, record HitRecord) error

	// RecordOutcome appends a provider outcome record.
	RecordOutcome(ctx context.Context, record OutcomeRecord) error
}
