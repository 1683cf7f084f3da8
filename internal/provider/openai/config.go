package openai

import "time"

// Config holds the SDK client settings shared by every openai catalog
// entry. Entries may override APIKey and BaseURL.
type Config struct {
	APIKey       string        `env:"OPENAI_API_KEY"`
	BaseURL      string        `env:"OPENAI_BASE_URL"         envDefault:"https://api.openai.com/v1"`
	Organization string        `env:"OPENAI_ORGANIZATION"`
	Timeout      time.Duration `env:"OPENAI_TIMEOUT"          envDefault:"60s"`
	MaxRetries   int           `env:"OPENAI_CHAT_MAX_RETRIES" envDefault:"0"`
}
