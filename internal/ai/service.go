package ai

import (
	"context"
	"fmt"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Service handles suggestion generation through the configured provider,
// with circuit breaker protection around every call.
type Service struct {
	Provider SuggestionProvider // Exported for access from server package
	breaker  *SuggestCircuitBreaker
	config   *config.SuggestConfig
	logger   *errors.Logger
}

// NewService creates a suggestion service for the configured provider
func NewService(cfg *config.SuggestConfig, logger *errors.Logger) (*Service, error) {
	var provider SuggestionProvider
	var err error

	logger.Debug("Initializing suggestion service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	switch cfg.Provider {
	case config.ProviderStatic:
		provider = NewStaticProvider(logger)
	case config.ProviderHTTP:
		provider, err = NewHTTPProvider(cfg, logger)
	case config.ProviderGemini:
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported suggestion provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed,
			"Failed to create suggestion provider", err)
	}

	return &Service{
		Provider: provider,
		breaker:  NewSuggestCircuitBreaker(cfg, logger),
		config:   cfg,
		logger:   logger,
	}, nil
}

// Suggest runs one suggestion request through the circuit breaker
func (s *Service) Suggest(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, *TokenUsage, error) {
	var usage *TokenUsage
	output, err := s.breaker.Execute(func() (types.SuggestOutput, error) {
		out, u, err := s.Provider.Suggest(ctx, input)
		usage = u
		return out, err
	})
	return output, usage, err
}

// ProviderName returns the configured provider name
func (s *Service) ProviderName() string {
	return s.config.Provider
}

// GetModelInfo returns information about the backing model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (s *Service) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"suggest_operations": s.breaker.GetStats(),
	}
	stats["overall_healthy"] = s.breaker.IsHealthy()
	return stats
}

// Close releases provider resources
func (s *Service) Close() error {
	return s.Provider.Close()
}
