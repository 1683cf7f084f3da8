package echo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/provider/echo"
)

func TestNewProvider(t *testing.T) {
	provider := echo.NewProvider("echo", nil)

	require.NotNil(t, provider)
	require.Equal(t, "echo", provider.Name())
	require.NoError(t, provider.Probe(context.Background()))
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name            string
		messages        []domain.Message
		expectedContent string
		expectedPrompt  int
		expectedTotal   int
	}{
		{
			name:            "should echo a single message",
			messages:        []domain.Message{{Role: "user", Content: "Hello world"}},
			expectedContent: "[user]: Hello world\n",
			expectedPrompt:  3, // "[user]:" "Hello" "world"
			expectedTotal:   6,
		},
		{
			name: "should echo every message in order",
			messages: []domain.Message{
				{Role: "system", Content: "You are helpful"},
				{Role: "user", Content: "Hello world"},
				{Role: "assistant", Content: "Hi there"},
			},
			expectedContent: "[system]: You are helpful\n[user]: Hello world\n[assistant]: Hi there\n",
			expectedPrompt:  10,
			expectedTotal:   20,
		},
		{
			name:            "should return empty content for no messages",
			messages:        []domain.Message{},
			expectedContent: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := echo.NewProvider("echo", []string{"echo4"})

			resp, err := provider.Complete(context.Background(), &domain.CompletionRequest{
				Model:    "echo4",
				Messages: tt.messages,
			})
			require.NoError(t, err)
			require.Equal(t, "echo", resp.Provider)
			require.Equal(t, "echo4", resp.Model)
			require.Equal(t, tt.expectedContent, resp.Content)
			require.Equal(t, tt.expectedPrompt, resp.Usage.PromptTokens)
			require.Equal(t, tt.expectedTotal, resp.Usage.TotalTokens)
			require.NotEmpty(t, resp.ID)
		})
	}

	t.Run("should reject a nil request", func(t *testing.T) {
		_, err := echo.NewProvider("echo", nil).Complete(context.Background(), nil)
		require.ErrorContains(t, err, "request cannot be nil")
	})

	t.Run("should reject unsupported models", func(t *testing.T) {
		_, err := echo.NewProvider("echo", nil).Complete(context.Background(), &domain.CompletionRequest{Model: "gpt-4"})
		require.ErrorIs(t, err, domain.ErrProviderCallFailed)
		require.ErrorContains(t, err, "not supported")
	})

	t.Run("should honour cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := echo.NewProvider("echo", nil).Complete(ctx, &domain.CompletionRequest{Model: "echo4"})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("should serve custom model names", func(t *testing.T) {
		provider := echo.NewProvider("mirror", []string{"mirror-small", "mirror-large"})

		resp, err := provider.Complete(context.Background(), &domain.CompletionRequest{Model: "mirror-large"})
		require.NoError(t, err)
		require.Equal(t, "mirror", resp.Provider)
		require.Equal(t, []string{"mirror-large", "mirror-small"}, provider.Models())
	})

	t.Run("should truncate the reply to max tokens", func(t *testing.T) {
		resp, err := echo.NewProvider("echo", nil).Complete(context.Background(), &domain.CompletionRequest{
			Model:     "echo4",
			Messages:  []domain.Message{{Role: "user", Content: "one two three four"}},
			MaxTokens: 3,
		})
		require.NoError(t, err)
		require.Equal(t, "[user]: one two", resp.Content)
		require.Equal(t, 5, resp.Usage.PromptTokens)
		require.Equal(t, 3, resp.Usage.CompletionTokens)
	})
}

func TestRegisterPricing(t *testing.T) {
	t.Run("should register zero pricing for each model", func(t *testing.T) {
		registry := domain.NewInMemoryPricingRegistry()
		require.NoError(t, echo.RegisterPricing(context.Background(), registry, "echo", []string{"a", "b"}))

		pricing, err := registry.GetPricing(context.Background(), "echo", "b")
		require.NoError(t, err)
		require.Zero(t, pricing.InputCostPer1K)
	})
}
