package ai

import (
	"context"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/types"
)

func TestNewServiceStaticProvider(t *testing.T) {
	cfg := &config.SuggestConfig{
		Provider: config.ProviderStatic,
		Timeout:  time.Second,
	}
	svc, err := NewService(cfg, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	r := orchestratorResume("")
	out, usage, err := svc.Suggest(context.Background(), types.SuggestInput{Resume: *r})
	if err != nil {
		t.Fatalf("Static provider must not fail: %v", err)
	}
	if usage != nil {
		t.Errorf("Static provider uses no tokens, got %+v", usage)
	}
	if out.Provider != config.ProviderStatic {
		t.Errorf("Expected static provider tag, got %q", out.Provider)
	}
	if len(out.Suggestions) == 0 {
		t.Errorf("Expected suggestions for an empty resume")
	}

	info := svc.GetModelInfo(context.Background())
	if !info.Available || info.Name != config.ProviderStatic {
		t.Errorf("Unexpected model info: %+v", info)
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	cfg := &config.SuggestConfig{Provider: "oracle", Timeout: time.Second}
	if _, err := NewService(cfg, testLogger()); err == nil {
		t.Fatalf("Expected error for unsupported provider")
	}
}

func TestNewServiceHTTPRequiresEndpoint(t *testing.T) {
	cfg := &config.SuggestConfig{Provider: config.ProviderHTTP, Timeout: time.Second}
	if _, err := NewService(cfg, testLogger()); err == nil {
		t.Fatalf("Expected error for http provider without endpoint")
	}
}

func TestServiceCircuitBreakerStats(t *testing.T) {
	cfg := &config.SuggestConfig{
		Provider: config.ProviderStatic,
		Timeout:  time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}
	svc, err := NewService(cfg, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	stats := svc.GetCircuitBreakerStats()
	if healthy, _ := stats["overall_healthy"].(bool); !healthy {
		t.Errorf("Fresh service should be healthy: %+v", stats)
	}
}
