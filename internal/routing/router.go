package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

// fallbackConfidence discounts the reliability of a provider reached via fallback.
const fallbackConfidence = 0.9

// Config contains routing settings.
type Config struct {
	FallbackOrder   []string      `env:"ROUTER_FALLBACK_ORDER"   envSeparator:","`
	ProviderTimeout time.Duration `env:"ROUTER_PROVIDER_TIMEOUT" envDefault:"30s"`
}

// ScoringRouter picks the highest scoring provider and falls back through
// the remaining providers when it fails.
type ScoringRouter struct {
	registry        domain.ProviderRegistry
	limiter         domain.RateLimiter
	costCalculator  domain.CostCalculator
	metrics         domain.MetricsRecorder
	clock           clock.Clock
	fallbackOrder   []string
	providerTimeout time.Duration
}

// NewRouter creates a new router. metrics may be nil.
func NewRouter(
	registry domain.ProviderRegistry,
	limiter domain.RateLimiter,
	costCalculator domain.CostCalculator,
	metrics domain.MetricsRecorder,
	clk clock.Clock,
	cfg *Config,
) *ScoringRouter {
	return &ScoringRouter{
		registry:        registry,
		limiter:         limiter,
		costCalculator:  costCalculator,
		metrics:         metrics,
		clock:           clk,
		fallbackOrder:   cfg.FallbackOrder,
		providerTimeout: cfg.ProviderTimeout,
	}
}

// attemptLog tracks which providers one Route call has touched.
type attemptLog struct {
	tried  map[string]bool
	called []string
	errs   []domain.AttemptError
}

func (l *attemptLog) record(providerID string, err error) {
	l.errs = append(l.errs, domain.AttemptError{ProviderID: providerID, Err: err})
}

// Route resolves a request to a provider response.
func (r *ScoringRouter) Route(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	logger := observability.FromContext(ctx)

	providers := r.registry.List(ctx)
	if len(providers) == 0 {
		return nil, domain.ErrNoProvidersConfigured
	}

	primary, ok := r.selectPrimary(providers, req)
	if !ok {
		logger.Warn("no provider available",
			observability.Int("providers", len(providers)))
		return nil, domain.ErrNoAvailableProvider
	}

	logger.Info("provider selected",
		observability.String("provider_id", primary.ID),
		observability.String("priority", string(req.Priority)),
		observability.String("task_type", string(req.TaskType)),
		observability.Float64("score", Score(primary, req)))

	log := &attemptLog{tried: map[string]bool{primary.ID: true}}

	resp, err := r.execute(ctx, primary, req, false, log)
	if err == nil {
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	logger.Warn("primary provider failed, starting fallback",
		observability.String("provider_id", primary.ID),
		observability.Error(err))

	return r.fallback(ctx, req, log)
}

// selectPrimary returns the best candidate, or any usable provider as a
// last resort when none is capable.
func (r *ScoringRouter) selectPrimary(
	providers []domain.ProviderSnapshot,
	req *domain.Request,
) (domain.ProviderSnapshot, bool) {
	var usable, capable []domain.ProviderSnapshot
	for _, p := range providers {
		if !p.Available || !r.limiter.Allowed(p.ID) {
			continue
		}
		usable = append(usable, p)
		if p.Spec.Supports(req.TaskType) {
			capable = append(capable, p)
		}
	}

	candidates := capable
	if req.Model != "" {
		var withModel []domain.ProviderSnapshot
		for _, p := range capable {
			if p.Spec.SupportsModel(req.Model) {
				withModel = append(withModel, p)
			}
		}
		if len(withModel) > 0 {
			candidates = withModel
		}
	}

	if len(candidates) == 0 {
		candidates = usable
	}

	if len(candidates) == 0 {
		return domain.ProviderSnapshot{}, false
	}

	best := candidates[0]
	bestScore := Score(best, req)
	for _, c := range candidates[1:] {
		if s := Score(c, req); s > bestScore {
			best, bestScore = c, s
		}
	}

	return best, true
}

// execute dispatches the request to one provider and updates its state.
func (r *ScoringRouter) execute(
	ctx context.Context,
	provider domain.ProviderSnapshot,
	req *domain.Request,
	fallback bool,
	log *attemptLog,
) (*domain.Response, error) {
	if !r.limiter.Allow(provider.ID) {
		err := fmt.Errorf("%w: %s", domain.ErrRateLimited, provider.ID)
		log.record(provider.ID, err)
		return nil, err
	}

	client, err := r.registry.Client(ctx, provider.ID)
	if err != nil {
		log.record(provider.ID, err)
		return nil, err
	}

	ctx = observability.WithProvider(ctx, provider.ID)
	logger := observability.FromContext(ctx)

	model := req.Model
	if model == "" || !provider.Spec.SupportsModel(model) {
		model = provider.Spec.DefaultModel()
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = provider.Spec.MaxTokens
	}

	attemptCtx := ctx
	if r.providerTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.providerTimeout)
		defer cancel()
	}

	log.called = append(log.called, provider.ID)

	start := r.clock.Now()
	completion, err := client.Complete(attemptCtx, &domain.CompletionRequest{
		Model:       model,
		Messages:    []domain.Message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	})
	latency := r.clock.Now().Sub(start)

	if err != nil {
		log.record(provider.ID, err)
		if ctx.Err() != nil {
			return nil, err
		}
		r.registry.RecordFailure(ctx, provider.ID)
		r.recordOutcome(ctx, provider.ID, false, fallback, latency)
		logger.Warn("provider call failed",
			observability.Error(err),
			observability.Duration("latency", latency))
		return nil, err
	}

	r.registry.RecordSuccess(ctx, provider.ID, latency)
	r.recordOutcome(ctx, provider.ID, true, fallback, latency)

	confidence := provider.Reliability
	if fallback {
		confidence *= fallbackConfidence
	}

	usage := completion.Usage
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	responseModel := completion.Model
	if responseModel == "" {
		responseModel = model
	}

	cost, costErr := r.costCalculator.Calculate(ctx, provider.Spec, responseModel, usage)
	if costErr != nil {
		logger.Debug("cost unavailable", observability.Error(costErr))
	}

	logger.Info("provider call succeeded",
		observability.Duration("latency", latency),
		observability.Int("tokens", usage.TotalTokens),
		observability.Bool("fallback", fallback))

	return &domain.Response{
		ID:           req.ID,
		Content:      completion.Content,
		Provider:     provider.ID,
		Model:        responseModel,
		TokensUsed:   usage.TotalTokens,
		ResponseTime: latency,
		Cost:         cost,
		Confidence:   confidence,
		FallbackUsed: fallback,
		Attempts:     append([]string(nil), log.called...),
	}, nil
}

func (r *ScoringRouter) recordOutcome(
	ctx context.Context,
	providerID string,
	success, fallback bool,
	latency time.Duration,
) {
	if r.metrics == nil {
		return
	}
	r.metrics.ProviderOutcome(ctx, domain.OutcomeRecord{
		ProviderID: providerID,
		Success:    success,
		Fallback:   fallback,
		Latency:    latency,
		Timestamp:  r.clock.Now(),
	})
}

// isRateLimited reports whether an attempt was refused before dispatch.
func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
