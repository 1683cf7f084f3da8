// Package provider builds provider adapters from catalog entries and keeps
// the registry in step with the catalog.
package provider

import (
	"fmt"
	"net/http"

	"github.com/davidbz/relay/internal/catalog"
	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/provider/echo"
	"github.com/davidbz/relay/internal/provider/httpjson"
	"github.com/davidbz/relay/internal/provider/openai"
)

// Factory maps a catalog entry's kind to its adapter.
type Factory struct {
	httpClient *http.Client
	openai     openai.Config
}

// NewFactory creates a factory. openaiDefaults supplies the API key, base
// URL and timeouts for openai entries that do not override them.
func NewFactory(httpClient *http.Client, openaiDefaults openai.Config) *Factory {
	return &Factory{
		httpClient: httpClient,
		openai:     openaiDefaults,
	}
}

// New builds the adapter for entry.
func (f *Factory) New(entry catalog.Entry) (domain.Provider, error) {
	switch domain.ProviderKind(entry.Kind) {
	case domain.KindOpenAI:
		cfg := f.openai
		if key := entry.APIKey(); key != "" {
			cfg.APIKey = key
		}
		if entry.Endpoint != "" {
			cfg.BaseURL = entry.Endpoint
		}
		return openai.NewProvider(entry.ID, cfg, f.httpClient)

	case domain.KindHTTP:
		return httpjson.NewProvider(httpjson.Config{
			ID:             entry.ID,
			Endpoint:       entry.Endpoint,
			HealthEndpoint: entry.HealthEndpoint,
			APIKey:         entry.APIKey(),
		}, f.httpClient)

	case domain.KindEcho:
		return echo.NewProvider(entry.ID, entry.Models), nil

	default:
		return nil, fmt.Errorf("unknown provider kind %q", entry.Kind)
	}
}
