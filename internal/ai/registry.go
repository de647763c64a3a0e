package ai

import (
	"sort"
	"sync"
)

// Registry maps provider names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory to the registry
func (r *Registry) Register(name string, factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return NewUpstreamError(ErrTypeInternal, "provider already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Create builds a provider by name. A nil config means the factory default.
func (r *Registry) Create(name string, config *ProviderConfig) (Provider, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, NewConfigurationError(name, "provider", "provider not registered")
	}

	if config == nil {
		config = factory.DefaultConfig()
	}

	return factory.Create(config)
}

// List returns all registered provider names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a provider is registered
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Global registry instance
var globalRegistry = NewRegistry()

// GlobalRegistry returns the global provider registry
func GlobalRegistry() *Registry {
	return globalRegistry
}

// RegisterProvider registers a provider in the global registry
func RegisterProvider(name string, factory ProviderFactory) error {
	return globalRegistry.Register(name, factory)
}

// CreateProvider builds a provider from the global registry
func CreateProvider(name string, config *ProviderConfig) (Provider, error) {
	return globalRegistry.Create(name, config)
}
