package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/catalog"
	"github.com/davidbz/relay/internal/domain"
)

const tomlCatalog = `
[[providers]]
id = "openai"
kind = "openai"
api_key_env = "RELAY_TEST_OPENAI_KEY"
models = ["gpt-4o-mini", "gpt-4o"]
cost_per_token = 0.00001
max_tokens = 4096
capabilities = ["general", "coding"]
response_time_ms = 1200
reliability = 0.95
rate_limit = 60

[providers.pricing.gpt-4o-mini]
input_cost_per_1k = 0.00015
output_cost_per_1k = 0.0006

[[providers]]
id = "local"
name = "Local LLM"
kind = "http"
endpoint = "http://localhost:8081/chat"
models = ["llama3"]
capabilities = ["general"]
`

const yamlCatalog = `
providers:
  - id: echo
    kind: echo
    models: [echo4]
    capabilities: [general, creative]
    response_time_ms: 10
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should load a TOML catalog", func(t *testing.T) {
		t.Setenv("RELAY_TEST_OPENAI_KEY", "sk-test")
		path := writeFile(t, t.TempDir(), "providers.toml", tomlCatalog)

		cat, err := catalog.Load(path)
		require.NoError(t, err)
		require.Len(t, cat.Providers, 2)

		openai := cat.Providers[0]
		require.Equal(t, "sk-test", openai.APIKey())
		require.InDelta(t, 0.00015, openai.Pricing["gpt-4o-mini"].InputCostPer1K, 1e-12)

		spec := openai.Spec()
		require.Equal(t, "openai", spec.Name)
		require.Equal(t, domain.KindOpenAI, spec.Kind)
		require.Equal(t, "gpt-4o-mini", spec.DefaultModel())
		require.Equal(t, 1200*time.Millisecond, spec.SeedResponseTime)
		require.Equal(t, []domain.TaskType{domain.TaskGeneral, domain.TaskCoding}, spec.Capabilities)
		require.Equal(t, 60, spec.RateLimit)

		local := cat.Providers[1].Spec()
		require.Equal(t, "Local LLM", local.Name)
		require.Equal(t, "http://localhost:8081/chat", local.Endpoint)
	})

	t.Run("should load a YAML catalog", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "providers.yml", yamlCatalog)

		cat, err := catalog.Load(path)
		require.NoError(t, err)
		require.Len(t, cat.Providers, 1)
		require.Equal(t, domain.KindEcho, cat.Providers[0].Spec().Kind)
		require.Empty(t, cat.Providers[0].APIKey())
	})

	t.Run("should reject unknown extensions", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "providers.json", "{}")

		_, err := catalog.Load(path)
		require.ErrorContains(t, err, "unsupported catalog format")
	})

	t.Run("should reject malformed files", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "providers.toml", "[[providers]\nid =")

		_, err := catalog.Load(path)
		require.ErrorContains(t, err, "failed to parse TOML catalog")
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		_, err := catalog.Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.ErrorContains(t, err, "failed to read catalog")
	})
}

func TestCatalog_Validate(t *testing.T) {
	valid := catalog.Entry{ID: "a", Kind: "echo", Models: []string{"echo4"}}

	tests := []struct {
		name    string
		entries []catalog.Entry
		wantErr string
	}{
		{
			name:    "should accept a minimal entry",
			entries: []catalog.Entry{valid},
		},
		{
			name:    "should reject an empty catalog",
			wantErr: "no providers",
		},
		{
			name:    "should reject duplicate ids",
			entries: []catalog.Entry{valid, valid},
			wantErr: "duplicate id",
		},
		{
			name:    "should reject a missing id",
			entries: []catalog.Entry{{Kind: "echo", Models: []string{"m"}}},
			wantErr: "id is required",
		},
		{
			name:    "should reject an unknown kind",
			entries: []catalog.Entry{{ID: "a", Kind: "grpc", Models: []string{"m"}}},
			wantErr: `unknown kind "grpc"`,
		},
		{
			name:    "should require an endpoint for http providers",
			entries: []catalog.Entry{{ID: "a", Kind: "http", Models: []string{"m"}}},
			wantErr: "require an endpoint",
		},
		{
			name:    "should require a model",
			entries: []catalog.Entry{{ID: "a", Kind: "echo"}},
			wantErr: "at least one model",
		},
		{
			name:    "should reject unknown capabilities",
			entries: []catalog.Entry{{ID: "a", Kind: "echo", Models: []string{"m"}, Capabilities: []string{"poetry"}}},
			wantErr: `unknown task type "poetry"`,
		},
		{
			name:    "should reject reliability above one",
			entries: []catalog.Entry{{ID: "a", Kind: "echo", Models: []string{"m"}, Reliability: 1.5}},
			wantErr: "outside [0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&catalog.Catalog{Providers: tt.entries}).Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}

	t.Run("should default capabilities to general", func(t *testing.T) {
		require.Equal(t, []domain.TaskType{domain.TaskGeneral}, valid.Spec().Capabilities)
	})
}

func TestDefault(t *testing.T) {
	cfg := &catalog.Config{EchoEnabled: true, OpenAIModels: []string{"gpt-4o-mini"}}

	t.Run("should include openai and echo when enabled", func(t *testing.T) {
		cat := catalog.Default(cfg, true)
		require.Len(t, cat.Providers, 2)
		require.Equal(t, "openai", cat.Providers[0].ID)
		require.Equal(t, []string{"gpt-4o-mini"}, cat.Providers[0].Models)
		require.Equal(t, "echo", cat.Providers[1].ID)
		require.NoError(t, cat.Validate())
	})

	t.Run("should be empty when nothing is configured", func(t *testing.T) {
		cat := catalog.Default(&catalog.Config{}, false)
		require.Empty(t, cat.Providers)
	})
}

func TestWatch(t *testing.T) {
	t.Run("should deliver reloaded catalogs and skip invalid ones", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "providers.yaml", yamlCatalog)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reloads := make(chan *catalog.Catalog, 4)
		err := catalog.Watch(ctx, path, 20*time.Millisecond, func(_ context.Context, cat *catalog.Catalog) {
			reloads <- cat
		})
		require.NoError(t, err)

		writeFile(t, dir, "providers.yaml", "providers: [")
		writeFile(t, dir, "unrelated.yaml", yamlCatalog)

		select {
		case <-reloads:
			t.Fatal("invalid or unrelated files must not trigger a reload")
		case <-time.After(200 * time.Millisecond):
		}

		writeFile(t, dir, "providers.yaml", `
providers:
  - id: echo
    kind: echo
    models: [echo4]
  - id: echo-2
    kind: echo
    models: [echo4]
`)

		select {
		case cat := <-reloads:
			require.Len(t, cat.Providers, 2)
			require.Equal(t, "echo-2", cat.Providers[1].ID)
		case <-time.After(5 * time.Second):
			t.Fatal("catalog was not reloaded")
		}
	})

	t.Run("should fail when the directory does not exist", func(t *testing.T) {
		err := catalog.Watch(context.Background(), "/nonexistent/relay/providers.toml", time.Millisecond,
			func(context.Context, *catalog.Catalog) {})
		require.Error(t, err)
	})
}
