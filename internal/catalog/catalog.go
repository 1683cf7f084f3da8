// Package catalog loads static provider configuration from TOML or YAML
// files and watches them for changes.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/davidbz/relay/internal/domain"
)

// Config contains catalog loading settings.
type Config struct {
	Path         string        `env:"PROVIDER_CATALOG"`
	Watch        bool          `env:"PROVIDER_CATALOG_WATCH"    envDefault:"false"`
	Debounce     time.Duration `env:"PROVIDER_CATALOG_DEBOUNCE" envDefault:"500ms"`
	EchoEnabled  bool          `env:"ECHO_PROVIDER_ENABLED"     envDefault:"false"`
	OpenAIModels []string      `env:"OPENAI_MODELS"             envDefault:"gpt-4o-mini,gpt-4o" envSeparator:","`
}

// Catalog is the set of providers declared in a catalog file.
type Catalog struct {
	Providers []Entry `toml:"providers" yaml:"providers"`
}

// Entry declares one provider.
type Entry struct {
	ID             string                          `toml:"id"               yaml:"id"`
	Name           string                          `toml:"name"             yaml:"name"`
	Kind           string                          `toml:"kind"             yaml:"kind"`
	Endpoint       string                          `toml:"endpoint"         yaml:"endpoint"`
	HealthEndpoint string                          `toml:"health_endpoint"  yaml:"health_endpoint"`
	APIKeyEnv      string                          `toml:"api_key_env"      yaml:"api_key_env"`
	Models         []string                        `toml:"models"           yaml:"models"`
	CostPerToken   float64                         `toml:"cost_per_token"   yaml:"cost_per_token"`
	MaxTokens      int                             `toml:"max_tokens"       yaml:"max_tokens"`
	Capabilities   []string                        `toml:"capabilities"     yaml:"capabilities"`
	ResponseTimeMs int                             `toml:"response_time_ms" yaml:"response_time_ms"`
	Reliability    float64                         `toml:"reliability"      yaml:"reliability"`
	RateLimit      int                             `toml:"rate_limit"       yaml:"rate_limit"`
	Pricing        map[string]domain.PricingConfig `toml:"pricing"          yaml:"pricing"`
}

// APIKey resolves the entry's API key from the environment.
func (e Entry) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// Spec converts the entry to the registry's static provider metadata.
// The entry must have passed Validate.
func (e Entry) Spec() domain.ProviderSpec {
	name := e.Name
	if name == "" {
		name = e.ID
	}

	capabilities := make([]domain.TaskType, 0, len(e.Capabilities))
	for _, c := range e.Capabilities {
		capabilities = append(capabilities, domain.TaskType(c))
	}
	if len(capabilities) == 0 {
		capabilities = []domain.TaskType{domain.TaskGeneral}
	}

	return domain.ProviderSpec{
		ID:               e.ID,
		Name:             name,
		Kind:             domain.ProviderKind(e.Kind),
		Endpoint:         e.Endpoint,
		Models:           e.Models,
		CostPerToken:     e.CostPerToken,
		MaxTokens:        e.MaxTokens,
		Capabilities:     capabilities,
		SeedResponseTime: time.Duration(e.ResponseTimeMs) * time.Millisecond,
		SeedReliability:  e.Reliability,
		RateLimit:        e.RateLimit,
		Pricing:          e.Pricing,
	}
}

// Load reads and validates a catalog file. The format is chosen by extension.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var cat Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cat); err != nil {
			return nil, fmt.Errorf("failed to parse TOML catalog %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("failed to parse YAML catalog %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &cat, nil
}

// Validate checks every entry and reports all problems at once.
func (c *Catalog) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("catalog declares no providers")
	}

	var errs []error
	seen := make(map[string]bool, len(c.Providers))
	for i, entry := range c.Providers {
		if entry.ID == "" {
			errs = append(errs, fmt.Errorf("provider #%d: id is required", i+1))
			continue
		}
		if seen[entry.ID] {
			errs = append(errs, fmt.Errorf("provider %s: duplicate id", entry.ID))
		}
		seen[entry.ID] = true

		if err := entry.validate(); err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", entry.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (e Entry) validate() error {
	var errs []error

	switch domain.ProviderKind(e.Kind) {
	case domain.KindOpenAI, domain.KindEcho:
	case domain.KindHTTP:
		if e.Endpoint == "" {
			errs = append(errs, errors.New("http providers require an endpoint"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", e.Kind))
	}

	if len(e.Models) == 0 {
		errs = append(errs, errors.New("at least one model is required"))
	}

	for _, c := range e.Capabilities {
		if c == "" {
			errs = append(errs, errors.New("empty capability"))
			continue
		}
		if _, err := domain.ParseTaskType(c); err != nil {
			errs = append(errs, fmt.Errorf("capability: %w", err))
		}
	}

	if e.CostPerToken < 0 {
		errs = append(errs, errors.New("cost_per_token cannot be negative"))
	}
	if e.MaxTokens < 0 {
		errs = append(errs, errors.New("max_tokens cannot be negative"))
	}
	if e.ResponseTimeMs < 0 {
		errs = append(errs, errors.New("response_time_ms cannot be negative"))
	}
	if e.Reliability < 0 || e.Reliability > 1 {
		errs = append(errs, fmt.Errorf("reliability %.2f outside [0, 1]", e.Reliability))
	}
	if e.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit cannot be negative"))
	}

	return errors.Join(errs...)
}

// Default builds a catalog from the environment when no file is configured:
// an OpenAI provider when an API key is present and the echo provider when
// enabled.
func Default(cfg *Config, openAIEnabled bool) *Catalog {
	cat := &Catalog{}

	if openAIEnabled {
		cat.Providers = append(cat.Providers, Entry{
			ID:             "openai",
			Name:           "OpenAI",
			Kind:           string(domain.KindOpenAI),
			APIKeyEnv:      "OPENAI_API_KEY",
			Models:         cfg.OpenAIModels,
			CostPerToken:   0.00001,
			MaxTokens:      4096,
			Capabilities:   allCapabilities(),
			ResponseTimeMs: 1500,
			Reliability:    0.95,
		})
	}

	if cfg.EchoEnabled {
		cat.Providers = append(cat.Providers, Entry{
			ID:             "echo",
			Name:           "Echo",
			Kind:           string(domain.KindEcho),
			Models:         []string{"echo4"},
			CostPerToken:   0.001,
			MaxTokens:      1024,
			Capabilities:   allCapabilities(),
			ResponseTimeMs: 10,
			Reliability:    1,
		})
	}

	return cat
}

func allCapabilities() []string {
	types := domain.TaskTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
