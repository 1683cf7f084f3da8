package routing

import (
	"context"
	"slices"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

// fallback tries every remaining provider once, in fallback order, and
// returns the first success.
func (r *ScoringRouter) fallback(
	ctx context.Context,
	req *domain.Request,
	log *attemptLog,
) (*domain.Response, error) {
	logger := observability.FromContext(ctx)

	for _, candidate := range r.fallbackCandidates(r.registry.List(ctx), req) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if log.tried[candidate.ID] {
			continue
		}

		if !candidate.Available || !r.limiter.Allowed(candidate.ID) {
			continue
		}

		log.tried[candidate.ID] = true

		resp, err := r.execute(ctx, candidate, req, true, log)
		if err == nil {
			logger.Info("fallback succeeded",
				observability.String("provider_id", candidate.ID),
				observability.Strings("attempts", resp.Attempts))
			return resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if isRateLimited(err) {
			logger.Debug("fallback candidate rate limited at dispatch",
				observability.String("provider_id", candidate.ID))
		}
	}

	logger.Error("all providers failed",
		observability.Int("attempts", len(log.errs)))

	return nil, &domain.AllProvidersFailedError{Attempts: log.errs}
}

// fallbackCandidates orders providers by the configured fallback order, then
// registration order, with providers capable of the task type first.
func (r *ScoringRouter) fallbackCandidates(
	providers []domain.ProviderSnapshot,
	req *domain.Request,
) []domain.ProviderSnapshot {
	byID := make(map[string]domain.ProviderSnapshot, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}

	ordered := make([]domain.ProviderSnapshot, 0, len(providers))
	seen := make(map[string]bool, len(providers))
	for _, id := range r.fallbackOrder {
		if p, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, p)
			seen[id] = true
		}
	}
	for _, p := range providers {
		if !seen[p.ID] {
			ordered = append(ordered, p)
			seen[p.ID] = true
		}
	}

	slices.SortStableFunc(ordered, func(a, b domain.ProviderSnapshot) int {
		return capabilityRank(a, req) - capabilityRank(b, req)
	})

	return ordered
}

func capabilityRank(p domain.ProviderSnapshot, req *domain.Request) int {
	if p.Spec.Supports(req.TaskType) {
		return 0
	}
	return 1
}
