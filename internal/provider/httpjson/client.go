// Package httpjson adapts providers that expose a minimal JSON chat endpoint:
// POST {endpoint} {model, messages, prompt, temperature, max_tokens} returning
// {content, tokensUsed}.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

const maxErrorBody = 512

// Config describes one JSON chat endpoint.
type Config struct {
	ID             string
	Endpoint       string
	HealthEndpoint string
	APIKey         string
}

// Provider implements domain.Provider over plain HTTP.
type Provider struct {
	cfg        Config
	httpClient *http.Client
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Prompt      string           `json:"prompt,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID         string `json:"id,omitempty"`
	Model      string `json:"model,omitempty"`
	Content    string `json:"content"`
	TokensUsed int    `json:"tokensUsed"`
}

// NewProvider creates an HTTP JSON provider. httpClient is shared across
// providers; per-call deadlines come from the request context.
func NewProvider(cfg Config, httpClient *http.Client) (*Provider, error) {
	if cfg.ID == "" {
		return nil, errors.New("provider id cannot be empty")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Provider{
		cfg:        cfg,
		httpClient: httpClient,
	}, nil
}

// Complete posts the chat request. Any transport error or non-2xx status is
// a provider failure.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)

	reqBody, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Prompt:      lastUserMessage(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	p.decorate(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: request failed: %w", domain.ErrProviderCallFailed, p.cfg.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn("provider returned error status",
			observability.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s: status %d: %s",
			domain.ErrProviderCallFailed, p.cfg.ID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded chatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode response: %w", domain.ErrProviderCallFailed, p.cfg.ID, decodeErr)
	}

	model := decoded.Model
	if model == "" {
		model = req.Model
	}

	return &domain.CompletionResponse{
		ID:       decoded.ID,
		Model:    model,
		Provider: p.cfg.ID,
		Content:  decoded.Content,
		Usage: domain.Usage{
			CompletionTokens: decoded.TokensUsed,
			TotalTokens:      decoded.TokensUsed,
		},
		FinishTime: time.Now(),
	}, nil
}

// Probe issues a GET against the health endpoint, or the chat endpoint when
// none is configured. Any status below 500 means the provider is reachable.
func (p *Provider) Probe(ctx context.Context) error {
	target := p.cfg.HealthEndpoint
	if target == "" {
		target = p.cfg.Endpoint
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	p.decorate(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s: probe failed: %w", domain.ErrProviderCallFailed, p.cfg.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s: probe status %d", domain.ErrProviderCallFailed, p.cfg.ID, resp.StatusCode)
	}
	return nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.cfg.ID
}

// decorate adds credentials and propagates the caller's trace.
func (p *Provider) decorate(req *http.Request) {
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
	if tp := observability.Traceparent(req.Context()); tp != "" {
		req.Header.Set("traceparent", tp)
	}
	if id := observability.GetRequestID(req.Context()); id != "" {
		req.Header.Set("X-Request-Id", id)
	}
}

func lastUserMessage(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
