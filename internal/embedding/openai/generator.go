package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/relay/internal/domain"
)

const defaultDimension = 1536

// model describes an embedding model's output size and whether the API can
// shorten it on request.
type model struct {
	dimension int
	shortens  bool
}

//nolint:gochecknoglobals // read-only table
var knownModels = map[openai.EmbeddingModel]model{
	openai.EmbeddingModelTextEmbeddingAda002: {dimension: 1536},
	openai.EmbeddingModelTextEmbedding3Small: {dimension: 1536, shortens: true},
	openai.EmbeddingModelTextEmbedding3Large: {dimension: 3072, shortens: true},
}

// Generator turns questions into vectors for the semantic cache.
type Generator struct {
	client    openai.Client
	model     string
	dimension int
	// shorten asks the API for dimension instead of the model's native size.
	shorten bool
}

// NewGenerator creates a generator. A zero Dimension uses the model's
// native size; a smaller one is requested from models that support it.
func NewGenerator(config Config) (*Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = string(openai.EmbeddingModelTextEmbedding3Small)
	}

	info, known := knownModels[openai.EmbeddingModel(config.Model)]
	dimension := config.Dimension
	shorten := false
	switch {
	case dimension <= 0 && known:
		dimension = info.dimension
	case dimension <= 0:
		dimension = defaultDimension
	case known && dimension != info.dimension:
		if !info.shortens || dimension > info.dimension {
			return nil, fmt.Errorf("model %s cannot produce %d dimensions", config.Model, dimension)
		}
		shorten = true
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &Generator{
		client:    openai.NewClient(opts...),
		model:     config.Model,
		dimension: dimension,
		shorten:   shorten,
	}, nil
}

// Generate embeds text. A vector of any other length than Dimension is an
// error; a degraded vector is never returned.
func (g *Generator) Generate(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: openai.EmbeddingModel(g.model),
	}
	if g.shorten {
		params.Dimensions = openai.Int(int64(g.dimension))
	}

	resp, err := g.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create embeddings: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", domain.ErrEmbeddingFailed)
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != g.dimension {
		return nil, fmt.Errorf("%w: model %s returned dimension %d, want %d",
			domain.ErrEmbeddingFailed, g.model, len(embedding), g.dimension)
	}
	return embedding, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "openai"
}

// Dimension returns the vector dimension.
func (g *Generator) Dimension() int {
	return g.dimension
}
