package domain

import (
	"fmt"
	"slices"
	"time"
)

// TaskType is the coarse category used for capability matching and cache scope.
type TaskType string

const (
	TaskGeneral   TaskType = "general"
	TaskCoding    TaskType = "coding"
	TaskAnalysis  TaskType = "analysis"
	TaskCreative  TaskType = "creative"
	TaskTechnical TaskType = "technical"
)

// TaskTypes lists every valid task type.
func TaskTypes() []TaskType {
	return []TaskType{TaskGeneral, TaskCoding, TaskAnalysis, TaskCreative, TaskTechnical}
}

// ParseTaskType validates a task type. Empty input defaults to general.
func ParseTaskType(s string) (TaskType, error) {
	if s == "" {
		return TaskGeneral, nil
	}
	t := TaskType(s)
	if !slices.Contains(TaskTypes(), t) {
		return "", fmt.Errorf("%w: unknown task type %q", ErrInvalidRequest, s)
	}
	return t, nil
}

// Priority selects the scoring policy for a request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority validates a priority. Empty input defaults to medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidRequest, s)
	}
}

// Request is a routing request. It is not modified once submitted.
type Request struct {
	ID          string            `json:"id,omitempty"`
	Prompt      string            `json:"prompt"`
	Model       string            `json:"model,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Priority    Priority          `json:"priority,omitempty"`
	TaskType    TaskType          `json:"task_type,omitempty"`
	UserID      string            `json:"user_id,omitempty"`
	SkipCache   bool              `json:"skip_cache,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Response is the single result produced for a Request.
type Response struct {
	ID           string        `json:"id"`
	Content      string        `json:"content"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	TokensUsed   int           `json:"tokens_used"`
	ResponseTime time.Duration `json:"response_time"`
	Cost         float64       `json:"cost"`
	Confidence   float64       `json:"confidence"`
	FallbackUsed bool          `json:"fallback_used"`
	CacheHit     bool          `json:"cache_hit"`
	Similarity   float64       `json:"similarity,omitempty"`
	Attempts     []string      `json:"attempts,omitempty"`
}

// CompletionRequest is the provider-level chat completion request.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// CompletionResponse is the provider-level chat completion result.
type CompletionResponse struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	Content    string    `json:"content"`
	Usage      Usage     `json:"usage"`
	FinishTime time.Time `json:"finish_time"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost,omitempty"`
}

// ProviderKind selects the adapter used to reach a provider.
type ProviderKind string

const (
	KindOpenAI ProviderKind = "openai"
	KindHTTP   ProviderKind = "http"
	KindEcho   ProviderKind = "echo"
)

// ProviderSpec is the static configuration of a provider.
type ProviderSpec struct {
	ID               string
	Name             string
	Kind             ProviderKind
	Endpoint         string
	Models           []string
	CostPerToken     float64
	MaxTokens        int
	Capabilities     []TaskType
	SeedResponseTime time.Duration
	SeedReliability  float64
	RateLimit        int
	Pricing          map[string]PricingConfig
}

// Supports reports whether the provider serves the task type.
func (s ProviderSpec) Supports(taskType TaskType) bool {
	return slices.Contains(s.Capabilities, taskType)
}

// SupportsModel reports whether the provider lists the model.
func (s ProviderSpec) SupportsModel(model string) bool {
	return slices.Contains(s.Models, model)
}

// DefaultModel returns the first listed model.
func (s ProviderSpec) DefaultModel() string {
	if len(s.Models) == 0 {
		return ""
	}
	return s.Models[0]
}

// HealthStatus is the probe-derived state of a provider.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
)

// HealthRecord is rewritten by the health monitor on every tick.
type HealthRecord struct {
	Status       HealthStatus  `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	SuccessRate  float64       `json:"success_rate"`
	LastCheck    time.Time     `json:"last_check"`
	LastError    string        `json:"last_error,omitempty"`
}

// ProviderSnapshot is a point-in-time copy of a provider's static and dynamic state.
type ProviderSnapshot struct {
	Spec             ProviderSpec  `json:"-"`
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Reliability      float64       `json:"reliability"`
	ResponseTimeEWMA time.Duration `json:"response_time_ewma"`
	Health           HealthRecord  `json:"health"`
	Available        bool          `json:"available"`
}

// CacheItem is a persisted question/answer pair with its embedding.
type CacheItem struct {
	ID         string            `json:"id"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Embedding  []float64         `json:"-"`
	Model      string            `json:"model"`
	Provider   string            `json:"provider"`
	TaskType   TaskType          `json:"task_type"`
	TokensUsed int               `json:"tokens_used"`
	CreatedAt  time.Time         `json:"created_at"`
	UserID     string            `json:"user_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// CacheEntry is the input to SemanticCacheService.CacheResponse.
type CacheEntry struct {
	Question   string
	Answer     string
	TaskType   TaskType
	Model      string
	Provider   string
	TokensUsed int
	UserID     string
	Metadata   map[string]string
}

// CacheMatch is a cache hit.
type CacheMatch struct {
	ID         string    `json:"id"`
	Answer     string    `json:"answer"`
	Similarity float64   `json:"similarity"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
}

// HitRecord is appended to the metrics sink on every cache hit.
type HitRecord struct {
	CacheItemID string
	UserID      string
	Timestamp   time.Time
}

// OutcomeRecord is appended to the metrics sink after every provider call.
type OutcomeRecord struct {
	ProviderID string
	Success    bool
	Fallback   bool
	Latency    time.Duration
	Timestamp  time.Time
}
