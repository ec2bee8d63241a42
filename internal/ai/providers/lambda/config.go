package lambda

import (
	"strings"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/ai"
)

// Config holds the API Gateway endpoint settings for the Lambda-backed
// analysis chatbot.
type Config struct {
	// Endpoint is the API Gateway invoke URL
	Endpoint string `json:"endpoint"`

	// APIKey authenticates requests via the x-api-key header
	APIKey string `json:"api_key"`

	// Timeout for requests
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a config with the default timeout. Endpoint and
// key must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 120 * time.Second,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ai.NewConfigurationError("lambda", "endpoint", "API endpoint is required")
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return ai.NewConfigurationError("lambda", "endpoint", "API endpoint must be an HTTP(S) URL")
	}
	if c.APIKey == "" {
		return ai.NewConfigurationError("lambda", "api_key", "API key is required")
	}
	if c.Timeout <= 0 {
		return ai.NewConfigurationError("lambda", "timeout", "timeout must be positive")
	}
	return nil
}
