package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/http/middleware"
	"github.com/davidbz/relay/internal/metrics"
	"github.com/davidbz/relay/internal/observability"
)

const maxRequestBody = 1 << 20

// Submitter hands a request to the routing queue and waits for its result.
type Submitter interface {
	Submit(ctx context.Context, req *domain.Request) (*domain.Response, error)
}

// ProviderLister exposes provider snapshots.
type ProviderLister interface {
	List(ctx context.Context) []domain.ProviderSnapshot
}

// CacheAdmin is the maintenance surface of the semantic cache.
type CacheAdmin interface {
	CleanupExpiredCache(ctx context.Context) (int, error)
	InvalidateCacheItems(ctx context.Context, ids []string) (int, error)
	Stats() domain.CacheStats
}

// MetricsSource exposes recorder counters.
type MetricsSource interface {
	Snapshot() metrics.Snapshot
}

// Handler handles HTTP requests.
type Handler struct {
	submitter Submitter
	providers ProviderLister
	cache     CacheAdmin
	metrics   MetricsSource
}

// NewHandler creates a new HTTP handler (DI constructor). cache may be nil
// when semantic caching is disabled.
func NewHandler(submitter Submitter, providers ProviderLister, cache CacheAdmin, metricsSource MetricsSource) *Handler {
	return &Handler{
		submitter: submitter,
		providers: providers,
		cache:     cache,
		metrics:   metricsSource,
	}
}

type errorResponse struct {
	Error    string    `json:"error"`
	Attempts []attempt `json:"attempts,omitempty"`
}

type attempt struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

type invalidateRequest struct {
	IDs []string `json:"ids"`
}

type removedResponse struct {
	Removed int `json:"removed"`
}

type metricsResponse struct {
	Cache    *domain.CacheStats `json:"cache,omitempty"`
	Recorder metrics.Snapshot   `json:"recorder"`
}

// HandleRoute decodes a request, submits it through the queue and writes the
// response.
func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %w", domain.ErrInvalidRequest, err))
		return
	}

	if req.UserID == "" {
		req.UserID = r.Header.Get(middleware.UserIDHeader)
	}
	if req.ID == "" {
		req.ID = observability.GetRequestID(ctx)
	}

	if req.Model != "" {
		ctx = observability.WithModel(ctx, req.Model)
	}

	logger := observability.FromContext(ctx)
	logger.Info("route request received",
		observability.String("task_type", string(req.TaskType)),
		observability.String("priority", string(req.Priority)),
		observability.Bool("skip_cache", req.SkipCache),
	)

	response, err := h.submitter.Submit(ctx, &req)
	if err != nil {
		logger.Error("route failed", observability.Error(err))
		writeError(ctx, w, err)
		return
	}

	logger.Info("route succeeded",
		observability.String("provider", response.Provider),
		observability.Bool("cache_hit", response.CacheHit),
		observability.Bool("fallback_used", response.FallbackUsed),
		observability.Int("tokens", response.TokensUsed),
		observability.Float64("cost", response.Cost),
	)

	setRouteHeaders(w, response)
	writeJSON(ctx, w, http.StatusOK, response)
}

// HandleProviders lists providers with their health and reliability.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"providers": h.providers.List(r.Context()),
	})
}

// HandleCacheCleanup removes expired cache items.
func (h *Handler) HandleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cache == nil {
		writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: "semantic cache disabled"})
		return
	}

	removed, err := h.cache.CleanupExpiredCache(ctx)
	if err != nil {
		observability.FromContext(ctx).Error("cache cleanup failed", observability.Error(err))
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(ctx, w, http.StatusOK, removedResponse{Removed: removed})
}

// HandleCacheInvalidate removes the given cache items.
func (h *Handler) HandleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cache == nil {
		writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: "semantic cache disabled"})
		return
	}

	var body invalidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&body); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	removed, err := h.cache.InvalidateCacheItems(ctx, body.IDs)
	if err != nil {
		observability.FromContext(ctx).Error("cache invalidation failed", observability.Error(err))
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(ctx, w, http.StatusOK, removedResponse{Removed: removed})
}

// HandleMetrics returns cache and provider counters.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := metricsResponse{Recorder: h.metrics.Snapshot()}
	if h.cache != nil {
		stats := h.cache.Stats()
		resp.Cache = &stats
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func setRouteHeaders(w http.ResponseWriter, resp *domain.Response) {
	w.Header().Set("X-Relay-Provider", resp.Provider)
	if resp.CacheHit {
		w.Header().Set("X-Relay-Cache", "HIT")
		w.Header().Set("X-Relay-Cache-Similarity", strconv.FormatFloat(resp.Similarity, 'f', 4, 64))
		return
	}
	w.Header().Set("X-Relay-Cache", "MISS")
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAllProvidersFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrQueueFull),
		errors.Is(err, domain.ErrQueueClosed),
		errors.Is(err, domain.ErrNoProvidersConfigured),
		errors.Is(err, domain.ErrNoAvailableProvider):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	body := errorResponse{Error: err.Error()}

	var failed *domain.AllProvidersFailedError
	if errors.As(err, &failed) {
		for _, a := range failed.Attempts {
			body.Attempts = append(body.Attempts, attempt{Provider: a.ProviderID, Error: a.Err.Error()})
		}
	}

	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(ctx, w, status, body)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}
