// Package echo is an offline provider that answers with the conversation it
// was sent. It never leaves the process, so it works as a last-resort
// fallback and as a deterministic stand-in during development.
package echo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

const defaultModel = "echo4"

// Provider implements domain.Provider.
type Provider struct {
	id     string
	models map[string]struct{}
}

// NewProvider creates an echo provider serving models. An empty model
// list serves "echo4".
func NewProvider(id string, models []string) *Provider {
	if len(models) == 0 {
		models = []string{defaultModel}
	}

	served := make(map[string]struct{}, len(models))
	for _, model := range models {
		served[model] = struct{}{}
	}

	return &Provider{id: id, models: served}
}

// Complete renders every message as "[role]: content". MaxTokens, when set,
// truncates the reply to that many words.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderCallFailed, err)
	}
	if _, ok := p.models[req.Model]; !ok {
		return nil, fmt.Errorf("%w: model %s is not supported by echo provider %s",
			domain.ErrProviderCallFailed, req.Model, p.id)
	}

	transcript := render(req.Messages)
	promptTokens := wordCount(transcript)

	reply := transcript
	if req.MaxTokens > 0 && promptTokens > req.MaxTokens {
		reply = strings.Join(strings.Fields(transcript)[:req.MaxTokens], " ")
	}
	completionTokens := wordCount(reply)

	observability.FromContext(ctx).Debug("echo reply",
		observability.String("provider_id", p.id),
		observability.Int("completion_tokens", completionTokens))

	return &domain.CompletionResponse{
		ID:       "echo-" + uuid.NewString(),
		Model:    req.Model,
		Provider: p.id,
		Content:  reply,
		Usage: domain.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		FinishTime: time.Now(),
	}, nil
}

// Probe always succeeds.
func (p *Provider) Probe(context.Context) error { return nil }

// Name returns the provider id.
func (p *Provider) Name() string { return p.id }

// Models returns the served model names, sorted.
func (p *Provider) Models() []string {
	models := make([]string, 0, len(p.models))
	for model := range p.models {
		models = append(models, model)
	}
	slices.Sort(models)
	return models
}

func render(messages []domain.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&b, "[%s]: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

// wordCount stands in for a tokenizer.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
