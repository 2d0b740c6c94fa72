package ai

import (
	"context"

	"resumeforge/internal/types"
)

// SuggestionProvider interface for different suggestion backends
// All methods return token usage information - callers can ignore it if not needed
type SuggestionProvider interface {
	Suggest(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from provider responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the backing model or service
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
