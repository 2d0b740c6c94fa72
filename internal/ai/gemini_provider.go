package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resumeforge/internal/config"
	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiProvider implements SuggestionProvider for Google Gemini
type GeminiProvider struct {
	client       *genai.Client
	config       *config.SuggestConfig
	modelBreaker *ModelCircuitBreaker
	logger       *appErrors.Logger
}

// Ensure GeminiProvider implements SuggestionProvider
var _ SuggestionProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini suggestion provider
func NewGeminiProvider(cfg *config.SuggestConfig, logger *appErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, appErrors.NewProviderError(appErrors.ErrCodeProviderFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:       client,
		config:       cfg,
		modelBreaker: NewModelCircuitBreaker(cfg, logger),
		logger:       logger,
	}, nil
}

// geminiSuggestResponse is the structured response shape requested from the
// model.
type geminiSuggestResponse struct {
	Suggestions []types.Suggestion `json:"suggestions"`
}

// Suggest implements SuggestionProvider by asking Gemini for structured
// suggestions.
func (g *GeminiProvider) Suggest(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, *TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.suggest")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", config.ProviderGemini),
		attribute.String("model", g.config.Model),
		attribute.Float64("temperature", float64(g.config.Temperature)),
	)

	resumeJSON, err := json.Marshal(input.Resume)
	if err != nil {
		span.RecordError(err)
		return types.SuggestOutput{}, nil, appErrors.NewInternalError(appErrors.ErrCodeInvalidFormat,
			"Failed to serialize resume for provider", err)
	}
	span.SetAttributes(attribute.Int("input.resume_bytes", len(resumeJSON)))

	userPrompt := fmt.Sprintf(DefaultUserPromptTemplate, string(resumeJSON))
	genConfig := g.buildSuggestSchema()
	genConfig.SystemInstruction = genai.NewContentFromText(DefaultSystemPrompt, genai.RoleUser)

	result, err := executeWithRetry(ctx, "suggest", g.config.MaxRetries, g.logger, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.SuggestOutput{}, nil, appErrors.NewProviderError(appErrors.ErrCodeProviderFailed,
			"Failed to generate suggestions", err)
	}

	var parsed geminiSuggestResponse
	if err := json.Unmarshal([]byte(result.Text()), &parsed); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.SuggestOutput{}, nil, appErrors.NewProviderError("PROVIDER_RESPONSE_PARSE_FAILED",
			"Failed to parse provider response", err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("tokens.input", tokenUsage.InputTokens),
			attribute.Int64("tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.suggestion_count", len(parsed.Suggestions)),
	)

	return types.SuggestOutput{
		Suggestions: sanitizeSuggestions(parsed.Suggestions),
		Provider:    config.ProviderGemini,
	}, tokenUsage, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// Close implements SuggestionProvider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildSuggestSchema creates the structured-output schema for suggestion
// requests
func (g *GeminiProvider) buildSuggestSchema() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"suggestions": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"type":        {Type: genai.TypeString},
							"title":       {Type: genai.TypeString},
							"description": {Type: genai.TypeString},
							"impact":      {Type: genai.TypeString},
							"keywords": {
								Type:  genai.TypeArray,
								Items: &genai.Schema{Type: genai.TypeString},
							},
						},
						Required: []string{"type", "title", "description", "impact"},
					},
				},
			},
			Required: []string{"suggestions"},
		},
	}

	if g.config.Temperature > 0 {
		temp := g.config.Temperature
		cfg.Temperature = &temp
	}

	return cfg
}

// sanitizeSuggestions normalizes provider output: unknown types and impacts
// are mapped to safe defaults and empty entries are dropped.
func sanitizeSuggestions(in []types.Suggestion) []types.Suggestion {
	out := make([]types.Suggestion, 0, len(in))
	for _, s := range in {
		if s.Title == "" {
			continue
		}
		switch s.Type {
		case types.SuggestionImprovement, types.SuggestionKeyword, types.SuggestionFormat, types.SuggestionContent:
		default:
			s.Type = types.SuggestionImprovement
		}
		switch s.Impact {
		case types.ImpactHigh, types.ImpactMedium, types.ImpactLow:
		default:
			s.Impact = types.ImpactMedium
		}
		out = append(out, s)
	}
	return out
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
