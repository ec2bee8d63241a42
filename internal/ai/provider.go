package ai

import "context"

// Provider defines the interface for AI analysis backends
type Provider interface {
	// Name returns the provider name (e.g., "lambda")
	Name() string

	// Complete performs text completion/analysis
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// ValidateConfig validates the provider configuration
	ValidateConfig() error

	// HealthCheck verifies provider connectivity and status
	HealthCheck(ctx context.Context) error

	// Close cleans up provider resources
	Close() error
}
