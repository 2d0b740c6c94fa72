package ai

import (
	"context"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/suggest"
	"resumeforge/internal/types"
)

// StaticProvider serves rule-based suggestions locally. It backs the default
// configuration and is the fallback path when an external provider fails.
type StaticProvider struct {
	logger *errors.Logger
}

// Ensure StaticProvider implements SuggestionProvider
var _ SuggestionProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a static suggestion provider
func NewStaticProvider(logger *errors.Logger) *StaticProvider {
	return &StaticProvider{logger: logger}
}

// Suggest implements SuggestionProvider using the deterministic rule engine.
// It never fails and uses no tokens.
func (p *StaticProvider) Suggest(_ context.Context, input types.SuggestInput) (types.SuggestOutput, *TokenUsage, error) {
	return types.SuggestOutput{
		Suggestions: suggest.Generate(&input.Resume),
		Provider:    config.ProviderStatic,
	}, nil, nil
}

// GetModelInfo reports the static engine as always available
func (p *StaticProvider) GetModelInfo(_ context.Context) *ModelInfo {
	return &ModelInfo{
		Name:        config.ProviderStatic,
		DisplayName: "Rule-based suggestion engine",
		Available:   true,
	}
}

// Close implements SuggestionProvider
func (p *StaticProvider) Close() error {
	return nil
}
