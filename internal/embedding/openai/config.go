package openai

import "time"

// Config holds configuration for the OpenAI embedding generator.
type Config struct {
	APIKey     string        `env:"OPENAI_API_KEY"`
	BaseURL    string        `env:"OPENAI_BASE_URL"           envDefault:"https://api.openai.com/v1"`
	Model      string        `env:"CACHE_EMBEDDING_MODEL"     envDefault:"text-embedding-3-small"`
	Dimension  int           `env:"CACHE_EMBEDDING_DIMENSION" envDefault:"1536"`
	Timeout    time.Duration `env:"CACHE_EMBEDDING_TIMEOUT"   envDefault:"10s"`
	MaxRetries int           `env:"OPENAI_MAX_RETRIES"        envDefault:"3"`
}
