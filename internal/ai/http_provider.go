package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"resumeforge/internal/config"
	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// HTTPProvider implements SuggestionProvider against a remote suggestion
// service speaking the /suggest wire contract.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	config   *config.SuggestConfig
	logger   *appErrors.Logger
}

// Ensure HTTPProvider implements SuggestionProvider
var _ SuggestionProvider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider backed by a remote suggestion service
func NewHTTPProvider(cfg *config.SuggestConfig, logger *appErrors.Logger) (*HTTPProvider, error) {
	if cfg.Endpoint == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			"HTTP provider requires an endpoint", nil)
	}

	return &HTTPProvider{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: cfg.Endpoint,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Suggest implements SuggestionProvider by POSTing the resume to the remote
// service.
func (p *HTTPProvider) Suggest(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, *TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.ai.http")
	ctx, span := tracer.Start(ctx, "http.suggest")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", config.ProviderHTTP),
		attribute.String("endpoint", p.endpoint),
	)

	body, err := json.Marshal(input.Resume)
	if err != nil {
		span.RecordError(err)
		return types.SuggestOutput{}, nil, appErrors.NewInternalError(appErrors.ErrCodeInvalidFormat,
			"Failed to serialize resume for provider", err)
	}

	output, err := executeWithRetry(ctx, "suggest", p.config.MaxRetries, p.logger, func() (types.SuggestOutput, error) {
		return p.doRequest(ctx, body)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.SuggestOutput{}, nil, appErrors.NewProviderError(appErrors.ErrCodeProviderFailed,
			"Remote suggestion service failed", err)
	}

	// The remote service sets its own provider tag; make sure it is never
	// mistaken for a local result.
	if output.Provider == "" || output.Provider == config.ProviderStatic {
		output.Provider = config.ProviderHTTP
	}
	output.Suggestions = sanitizeSuggestions(output.Suggestions)

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.suggestion_count", len(output.Suggestions)),
		attribute.Bool("output.cached", output.Cached),
	)

	return output, nil, nil
}

// doRequest performs a single request against the remote service
func (p *HTTPProvider) doRequest(ctx context.Context, body []byte) (types.SuggestOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.SuggestOutput{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("X-API-Key", p.config.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return types.SuggestOutput{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Bounded read so a misbehaving service cannot balloon error logs
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.SuggestOutput{}, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}

	var output types.SuggestOutput
	if err := json.NewDecoder(resp.Body).Decode(&output); err != nil {
		return types.SuggestOutput{}, fmt.Errorf("failed to decode provider response: %w", err)
	}

	return output, nil
}

// GetModelInfo reports the remote endpoint as the backing service
func (p *HTTPProvider) GetModelInfo(_ context.Context) *ModelInfo {
	return &ModelInfo{
		Name:        config.ProviderHTTP,
		DisplayName: p.endpoint,
		Available:   true,
	}
}

// Close implements SuggestionProvider
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
