// Package openai adapts OpenAI-compatible chat APIs to domain.Provider using
// the official SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

// Provider implements domain.Provider for one catalog entry.
type Provider struct {
	client openai.Client
	id     string
}

// NewProvider creates a provider registered under id. httpClient may be nil.
func NewProvider(id string, config Config, httpClient *http.Client) (*Provider, error) {
	if id == "" {
		return nil, errors.New("provider id cannot be empty")
	}
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// Zero disables SDK retries; fallback happens in the router.
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Organization != "" {
		opts = append(opts, option.WithOrganization(config.Organization))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Provider{
		client: openai.NewClient(opts...),
		id:     id,
	}, nil
}

// Complete runs a chat completion. A response without choices is a failure
// so the router can fall back.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	ctx = observability.WithProvider(ctx, p.id)
	logger := observability.FromContext(ctx)

	resp, err := p.client.Chat.Completions.New(ctx, chatParams(req))
	if err != nil {
		return nil, p.callError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s: response has no choices", domain.ErrProviderCallFailed, p.id)
	}

	logger.Debug("chat completion finished",
		observability.String("finish_reason", string(resp.Choices[0].FinishReason)),
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return &domain.CompletionResponse{
		ID:       resp.ID,
		Model:    string(resp.Model),
		Provider: p.id,
		Content:  resp.Choices[0].Message.Content,
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishTime: time.Now(),
	}, nil
}

// Probe lists models. It needs valid credentials and costs no tokens.
func (p *Provider) Probe(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return p.callError("model list", err)
	}
	return nil
}

// Name returns the provider id.
func (p *Provider) Name() string {
	return p.id
}

// callError wraps err with ErrProviderCallFailed and, for API errors, the
// HTTP status.
func (p *Provider) callError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %s returned status %d: %w",
			domain.ErrProviderCallFailed, p.id, op, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: %s: %s: %w", domain.ErrProviderCallFailed, p.id, op, err)
}

func chatParams(req *domain.CompletionRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}
