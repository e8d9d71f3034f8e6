package inference

import (
	"fmt"

	"go.uber.org/zap"

	"foodsafe/internal/config"
	"foodsafe/internal/domain"
	"foodsafe/internal/port"
)

// ProviderFactory is a function that creates a ChatCompleter from an inference config.
type ProviderFactory func(cfg *config.InferenceConfig) (port.ChatCompleter, error)

// registry of chat-completion provider factories, populated via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter creates a ChatCompleter using the registered factory for cfg.Provider.
// An empty API key fails with domain.ErrMissingCredential.
func NewCompleter(cfg *config.InferenceConfig) (port.ChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, &domain.RemoteServiceError{Provider: cfg.Provider, Err: domain.ErrMissingCredential}
	}
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown inference provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewCompleterWithFallback creates the completer for cfg. When fallback API
// keys are configured, requests that hit a rate limit are retried with the
// next key through a FallbackCompleter.
func NewCompleterWithFallback(cfg *config.InferenceConfig, logger *zap.Logger) (port.ChatCompleter, error) {
	primary, err := NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	if len(cfg.FallbackAPIKeys) == 0 {
		return primary, nil
	}

	completers := []port.ChatCompleter{primary}
	names := []string{cfg.Provider}
	for i, key := range cfg.FallbackAPIKeys {
		alt := *cfg
		alt.APIKey = key
		alt.FallbackAPIKeys = nil
		c, err := NewCompleter(&alt)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i+1, err)
		}
		completers = append(completers, c)
		names = append(names, fmt.Sprintf("%s#%d", cfg.Provider, i+1))
	}
	return NewFallbackCompleter(completers, names, logger), nil
}
