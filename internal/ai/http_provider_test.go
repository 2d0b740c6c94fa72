package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/types"
)

func httpProviderConfig(endpoint string) *config.SuggestConfig {
	return &config.SuggestConfig{
		Provider:   config.ProviderHTTP,
		Endpoint:   endpoint,
		APIKey:     "secret",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	}
}

func TestHTTPProviderSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("Expected API key header, got %q", got)
		}

		var resume types.Resume
		if err := json.NewDecoder(r.Body).Decode(&resume); err != nil {
			t.Errorf("Failed to decode resume: %v", err)
		}
		if resume.ID != "r1" {
			t.Errorf("Expected resume r1, got %q", resume.ID)
		}

		_ = json.NewEncoder(w).Encode(types.SuggestOutput{
			Suggestions: []types.Suggestion{{
				Type:   types.SuggestionKeyword,
				Title:  "Add in-demand keywords",
				Impact: types.ImpactMedium,
			}},
			Provider: config.ProviderGemini,
			Cached:   true,
		})
	}))
	defer server.Close()

	provider, err := NewHTTPProvider(httpProviderConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = provider.Close() }()

	out, usage, err := provider.Suggest(context.Background(), types.SuggestInput{Resume: *orchestratorResume("")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if usage != nil {
		t.Errorf("Remote provider reports no token usage locally")
	}
	if len(out.Suggestions) != 1 || out.Suggestions[0].Title != "Add in-demand keywords" {
		t.Errorf("Unexpected suggestions: %+v", out.Suggestions)
	}
	// The remote service's own provider tag is preserved
	if out.Provider != config.ProviderGemini {
		t.Errorf("Expected upstream provider tag, got %q", out.Provider)
	}
	if !out.Cached {
		t.Errorf("Cached flag should pass through")
	}
}

func TestHTTPProviderRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(types.SuggestOutput{Provider: config.ProviderHTTP})
	}))
	defer server.Close()

	provider, err := NewHTTPProvider(httpProviderConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = provider.Close() }()

	if _, _, err := provider.Suggest(context.Background(), types.SuggestInput{Resume: *orchestratorResume("")}); err != nil {
		t.Fatalf("Expected success after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestHTTPProviderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	provider, err := NewHTTPProvider(httpProviderConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = provider.Close() }()

	if _, _, err := provider.Suggest(context.Background(), types.SuggestInput{Resume: *orchestratorResume("")}); err == nil {
		t.Fatalf("Expected error for client failure")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Client errors must not be retried, got %d attempts", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"transient status", &httpStatusError{StatusCode: http.StatusServiceUnavailable}, true},
		{"rate limited", &httpStatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"client error", &httpStatusError{StatusCode: http.StatusBadRequest}, false},
		{"auth error", &httpStatusError{StatusCode: http.StatusUnauthorized}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.retryable {
				t.Errorf("Expected retryable=%v for %v", tt.retryable, tt.err)
			}
		})
	}
}
