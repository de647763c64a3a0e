package ai

import (
	"context"
)

// Provider is a generative model backend able to answer structured-output requests
type Provider interface {
	// Name returns the provider name (e.g., "gemini")
	Name() string

	// Generate performs exactly one request; it never retries
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// ValidateConfig reports a ConfigurationError when the credential or
	// endpoint is unusable. It performs no network activity.
	ValidateConfig() error

	// Close cleans up provider resources
	Close() error
}

// ProviderFactory creates provider instances
type ProviderFactory interface {
	// Create creates a new provider instance with the given config.
	// An incomplete config is accepted so callers can report it through ValidateConfig.
	Create(config *ProviderConfig) (Provider, error)

	// Type returns the provider type this factory creates
	Type() string

	// DefaultConfig returns a default configuration
	DefaultConfig() *ProviderConfig
}
