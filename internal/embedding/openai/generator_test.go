package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/embedding/openai"
)

func embeddingServer(t *testing.T, vector []float64, status int) *httptest.Server {
	t.Helper()
	return embeddingServerWithBody(t, vector, status, func(map[string]any) {})
}

func embeddingServerWithBody(
	t *testing.T,
	vector []float64,
	status int,
	inspect func(body map[string]any),
) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "text-embedding-3-small", body["model"])
		inspect(body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vector},
			},
			"usage": map[string]any{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newGenerator(t *testing.T, baseURL string, dimension int) *openai.Generator {
	t.Helper()

	gen, err := openai.NewGenerator(openai.Config{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Model:     "text-embedding-3-small",
		Dimension: dimension,
	})
	require.NoError(t, err)
	return gen
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("should return the embedding", func(t *testing.T) {
		server := embeddingServer(t, []float64{0.1, 0.2, 0.3}, http.StatusOK)
		gen := newGenerator(t, server.URL, 3)

		embedding, err := gen.Generate(context.Background(), "hello")
		require.NoError(t, err)
		require.Equal(t, []float64{0.1, 0.2, 0.3}, embedding)
		require.Equal(t, 3, gen.Dimension())
		require.Equal(t, "openai", gen.Name())
	})

	t.Run("should request a shortened vector and trim the input", func(t *testing.T) {
		var seen map[string]any
		server := embeddingServerWithBody(t, []float64{0.1, 0.2, 0.3}, http.StatusOK, func(body map[string]any) {
			seen = body
		})
		gen := newGenerator(t, server.URL, 3)

		_, err := gen.Generate(context.Background(), "  hello \n")
		require.NoError(t, err)
		require.InDelta(t, 3, seen["dimensions"], 0)
		require.Equal(t, []any{"hello"}, seen["input"])
	})

	t.Run("should omit dimensions at the native size", func(t *testing.T) {
		var seen map[string]any
		vector := make([]float64, 1536)
		server := embeddingServerWithBody(t, vector, http.StatusOK, func(body map[string]any) {
			seen = body
		})
		gen := newGenerator(t, server.URL, 1536)

		_, err := gen.Generate(context.Background(), "hello")
		require.NoError(t, err)
		require.NotContains(t, seen, "dimensions")
	})

	t.Run("should reject a dimension mismatch", func(t *testing.T) {
		server := embeddingServer(t, []float64{0.1, 0.2}, http.StatusOK)
		gen := newGenerator(t, server.URL, 3)

		_, err := gen.Generate(context.Background(), "hello")
		require.ErrorIs(t, err, domain.ErrEmbeddingFailed)
		require.ErrorContains(t, err, "dimension 2")
	})

	t.Run("should wrap API errors", func(t *testing.T) {
		server := embeddingServer(t, nil, http.StatusBadRequest)
		gen := newGenerator(t, server.URL, 3)

		_, err := gen.Generate(context.Background(), "hello")
		require.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	})

	t.Run("should reject empty text", func(t *testing.T) {
		gen := newGenerator(t, "http://127.0.0.1:1", 3)

		_, err := gen.Generate(context.Background(), "")
		require.EqualError(t, err, "text cannot be empty")

		_, err = gen.Generate(context.Background(), " \t ")
		require.EqualError(t, err, "text cannot be empty")
	})
}

func TestNewGenerator(t *testing.T) {
	t.Run("should require an API key", func(t *testing.T) {
		_, err := openai.NewGenerator(openai.Config{})
		require.Error(t, err)
	})

	t.Run("should derive the dimension from the model", func(t *testing.T) {
		gen, err := openai.NewGenerator(openai.Config{APIKey: "k", Model: "text-embedding-3-large"})
		require.NoError(t, err)
		require.Equal(t, 3072, gen.Dimension())
	})

	t.Run("should reject a size the model cannot produce", func(t *testing.T) {
		_, err := openai.NewGenerator(openai.Config{
			APIKey: "k", Model: "text-embedding-ada-002", Dimension: 256,
		})
		require.ErrorContains(t, err, "cannot produce 256 dimensions")

		_, err = openai.NewGenerator(openai.Config{
			APIKey: "k", Model: "text-embedding-3-small", Dimension: 4096,
		})
		require.Error(t, err)
	})

	t.Run("should accept any size for unknown models", func(t *testing.T) {
		gen, err := openai.NewGenerator(openai.Config{
			APIKey: "k", Model: "custom-embedder", Dimension: 768, Timeout: time.Second,
		})
		require.NoError(t, err)
		require.Equal(t, 768, gen.Dimension())
	})
}
