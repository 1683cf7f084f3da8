// Package metrics counts cache and provider outcomes and forwards each event
// to a persistent sink.
package metrics

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

// ProviderStats aggregates call outcomes of one provider.
type ProviderStats struct {
	ProviderID        string        `json:"provider_id"`
	Successes         int64         `json:"successes"`
	Failures          int64         `json:"failures"`
	FallbackSuccesses int64         `json:"fallback_successes"`
	AverageLatency    time.Duration `json:"average_latency"`
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	CacheHits   int64           `json:"cache_hits"`
	CacheMisses int64           `json:"cache_misses"`
	HitRate     float64         `json:"hit_rate"`
	Providers   []ProviderStats `json:"providers"`
}

type providerCounters struct {
	successes         atomic.Int64
	failures          atomic.Int64
	fallbackSuccesses atomic.Int64
	totalLatency      atomic.Int64
}

// Recorder implements domain.MetricsRecorder. Sink errors are logged and
// never returned.
type Recorder struct {
	sink  domain.MetricsSink
	clock clock.Clock

	hits   atomic.Int64
	misses atomic.Int64

	mu        sync.RWMutex
	providers map[string]*providerCounters
}

// NewRecorder creates a recorder. sink may be nil.
func NewRecorder(sink domain.MetricsSink, clk clock.Clock) *Recorder {
	return &Recorder{
		sink:      sink,
		clock:     clk,
		providers: make(map[string]*providerCounters),
	}
}

// CacheHit counts a hit and appends it to the sink.
func (r *Recorder) CacheHit(ctx context.Context, itemID, userID string) {
	r.hits.Add(1)

	if r.sink == nil {
		return
	}
	if err := r.sink.RecordHit(ctx, domain.HitRecord{
		CacheItemID: itemID,
		UserID:      userID,
		Timestamp:   r.clock.Now(),
	}); err != nil {
		observability.FromContext(ctx).Warn("failed to record cache hit",
			observability.String("cache_item_id", itemID),
			observability.Error(err))
	}
}

// CacheMiss counts a miss.
func (r *Recorder) CacheMiss(_ context.Context, _ domain.TaskType) {
	r.misses.Add(1)
}

// ProviderOutcome counts a provider call and appends it to the sink.
func (r *Recorder) ProviderOutcome(ctx context.Context, record domain.OutcomeRecord) {
	counters := r.countersFor(record.ProviderID)
	if record.Success {
		counters.successes.Add(1)
		if record.Fallback {
			counters.fallbackSuccesses.Add(1)
		}
	} else {
		counters.failures.Add(1)
	}
	counters.totalLatency.Add(int64(record.Latency))

	if r.sink == nil {
		return
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = r.clock.Now()
	}
	if err := r.sink.RecordOutcome(ctx, record); err != nil {
		observability.FromContext(ctx).Warn("failed to record provider outcome",
			observability.String("provider_id", record.ProviderID),
			observability.Error(err))
	}
}

// Snapshot returns the current counters with providers sorted by ID.
func (r *Recorder) Snapshot() Snapshot {
	snap := Snapshot{
		CacheHits:   r.hits.Load(),
		CacheMisses: r.misses.Load(),
	}
	if total := snap.CacheHits + snap.CacheMisses; total > 0 {
		snap.HitRate = float64(snap.CacheHits) / float64(total)
	}

	r.mu.RLock()
	for id, c := range r.providers {
		stats := ProviderStats{
			ProviderID:        id,
			Successes:         c.successes.Load(),
			Failures:          c.failures.Load(),
			FallbackSuccesses: c.fallbackSuccesses.Load(),
		}
		if calls := stats.Successes + stats.Failures; calls > 0 {
			stats.AverageLatency = time.Duration(c.totalLatency.Load() / calls)
		}
		snap.Providers = append(snap.Providers, stats)
	}
	r.mu.RUnlock()

	sort.Slice(snap.Providers, func(i, j int) bool {
		return snap.Providers[i].ProviderID < snap.Providers[j].ProviderID
	})

	return snap
}

func (r *Recorder) countersFor(providerID string) *providerCounters {
	r.mu.RLock()
	c, ok := r.providers[providerID]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.providers[providerID]; ok {
		return c
	}
	c = &providerCounters{}
	r.providers[providerID] = c
	return c
}
