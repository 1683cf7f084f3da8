// Package health probes providers periodically and records the results in
// the registry.
package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

const (
	successRateRetain = 0.8
	successRateGain   = 0.2
)

// Config contains health monitor settings.
type Config struct {
	Interval        time.Duration `env:"HEALTH_CHECK_INTERVAL"    envDefault:"30s"`
	ProbeTimeout    time.Duration `env:"HEALTH_PROBE_TIMEOUT"     envDefault:"5s"`
	DegradedLatency time.Duration `env:"HEALTH_DEGRADED_LATENCY"  envDefault:"3s"`
	Concurrency     int           `env:"HEALTH_PROBE_CONCURRENCY" envDefault:"8"`
}

// Monitor is the only writer of provider health records.
type Monitor struct {
	registry domain.ProviderRegistry
	clock    clock.Clock
	cfg      Config
}

// NewMonitor creates a health monitor.
func NewMonitor(registry domain.ProviderRegistry, clk clock.Clock, cfg *Config) *Monitor {
	return &Monitor{
		registry: registry,
		clock:    clk,
		cfg:      *cfg,
	}
}

// Run checks every provider immediately and then once per interval until
// ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	logger := observability.FromContext(ctx)
	logger.Info("health monitor started",
		observability.Duration("interval", m.cfg.Interval))

	m.CheckAll(ctx)

	ticker := m.clock.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("health monitor stopped")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll probes every registered provider concurrently and waits for all
// probes to finish.
func (m *Monitor) CheckAll(ctx context.Context) {
	var g errgroup.Group
	if m.cfg.Concurrency > 0 {
		g.SetLimit(m.cfg.Concurrency)
	}

	for _, provider := range m.registry.List(ctx) {
		g.Go(func() error {
			m.check(ctx, provider)
			return nil
		})
	}

	_ = g.Wait()
}

func (m *Monitor) check(ctx context.Context, provider domain.ProviderSnapshot) {
	logger := observability.FromContext(observability.WithProvider(ctx, provider.ID))

	client, err := m.registry.Client(ctx, provider.ID)
	if err != nil {
		logger.Warn("provider vanished during health check", observability.Error(err))
		return
	}

	probeCtx := ctx
	if m.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, m.cfg.ProbeTimeout)
		defer cancel()
	}

	start := m.clock.Now()
	probeErr := client.Probe(probeCtx)
	finished := m.clock.Now()
	latency := finished.Sub(start)

	if ctx.Err() != nil {
		return
	}

	record := domain.HealthRecord{
		ResponseTime: latency,
		LastCheck:    finished,
	}

	switch {
	case probeErr != nil:
		record.Status = domain.HealthDown
		record.SuccessRate = 0
		record.LastError = probeErr.Error()
		logger.Warn("provider probe failed",
			observability.Error(probeErr),
			observability.Duration("latency", latency))
	case m.cfg.DegradedLatency > 0 && latency > m.cfg.DegradedLatency:
		record.Status = domain.HealthDegraded
		record.SuccessRate = successRateRetain*provider.Health.SuccessRate + successRateGain
		logger.Info("provider degraded",
			observability.Duration("latency", latency))
	default:
		record.Status = domain.HealthHealthy
		record.SuccessRate = successRateRetain*provider.Health.SuccessRate + successRateGain
	}

	m.registry.UpdateHealth(ctx, provider.ID, record)
}
