package routing

import (
	"time"

	"github.com/davidbz/relay/internal/domain"
)

const (
	baseScore     = 50.0
	healthyBonus  = 20.0
	degradedBonus = 5.0

	// epsilon stands in for zero response times and costs so the inverse
	// terms stay finite.
	epsilon = 1e-6
)

// Weights scale each scoring term for a priority.
type Weights struct {
	Reliability float64
	Speed       float64
	Cost        float64
}

// These constants are the compatibility baseline; they were never tuned.
var priorityWeights = map[domain.Priority]Weights{
	domain.PriorityCritical: {Reliability: 100, Speed: 10000, Cost: 0},
	domain.PriorityHigh:     {Reliability: 80, Speed: 5000, Cost: 0},
	domain.PriorityMedium:   {Reliability: 60, Speed: 0, Cost: 100},
	domain.PriorityLow:      {Reliability: 0, Speed: 0, Cost: 200},
}

// WeightsFor returns the weights of a priority. Unknown priorities score as medium.
func WeightsFor(priority domain.Priority) Weights {
	if w, ok := priorityWeights[priority]; ok {
		return w
	}
	return priorityWeights[domain.PriorityMedium]
}

// Score rates a provider for a request. Providers lacking the task type
// capability score 0.
func Score(provider domain.ProviderSnapshot, req *domain.Request) float64 {
	if !provider.Spec.Supports(req.TaskType) {
		return 0
	}

	w := WeightsFor(req.Priority)

	responseMs := float64(provider.ResponseTimeEWMA) / float64(time.Millisecond)
	if responseMs <= 0 {
		responseMs = epsilon
	}

	cost := provider.Spec.CostPerToken
	if cost <= 0 {
		cost = epsilon
	}

	score := baseScore +
		provider.Reliability*w.Reliability +
		w.Speed/responseMs +
		w.Cost/cost

	switch provider.Health.Status {
	case domain.HealthHealthy:
		score += healthyBonus
	case domain.HealthDegraded:
		score += degradedBonus
	case domain.HealthDown:
	}

	return score
}
