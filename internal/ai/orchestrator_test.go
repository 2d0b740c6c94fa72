package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"resumeforge/internal/config"
	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// fakeProvider lets tests script provider behavior per call
type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	handler func(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, error)
}

func (f *fakeProvider) Suggest(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, *TokenUsage, error) {
	f.mu.Lock()
	f.calls++
	handler := f.handler
	f.mu.Unlock()
	out, err := handler(ctx, input)
	return out, nil, err
}

func (f *fakeProvider) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLogger() *appErrors.Logger {
	return appErrors.NewLogger(slog.LevelError)
}

func newTestOrchestrator(provider SuggestionProvider, providerName string, debounce time.Duration) (*Orchestrator, *Service) {
	cfg := &config.SuggestConfig{
		Provider:   providerName,
		Timeout:    2 * time.Second,
		Debounce:   debounce,
		MaxRetries: 0,
	}
	svc := &Service{
		Provider: provider,
		config:   cfg,
		logger:   testLogger(),
	}
	return NewOrchestrator(svc, cfg, testLogger()), svc
}

func orchestratorResume(summary string) *types.Resume {
	r := &types.Resume{ID: "r1", Name: "Test"}
	r.Summary = summary
	r.Normalize()
	return r
}

// waitFor polls until the condition holds or the test deadline passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestOrchestratorStaticProviderIsSynchronous(t *testing.T) {
	provider := NewStaticProvider(testLogger())
	o, _ := newTestOrchestrator(provider, config.ProviderStatic, 10*time.Millisecond)
	defer o.Close()

	o.Update(orchestratorResume(""))

	if o.IsLoading() {
		t.Errorf("Static provider should not leave the orchestrator loading")
	}
	if len(o.CurrentSuggestions()) == 0 {
		t.Errorf("Expected immediate static suggestions")
	}
	if o.IsAIPowered() {
		t.Errorf("Static result must not report as provider-powered")
	}
}

func TestOrchestratorAsyncResultReplacesStatic(t *testing.T) {
	provider := &fakeProvider{
		handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
			return types.SuggestOutput{
				Suggestions: []types.Suggestion{{
					Type:   types.SuggestionContent,
					Title:  "Provider suggestion",
					Impact: types.ImpactHigh,
				}},
				Provider: config.ProviderHTTP,
			}, nil
		},
	}
	o, _ := newTestOrchestrator(provider, config.ProviderHTTP, 10*time.Millisecond)
	defer o.Close()

	o.Update(orchestratorResume(""))

	// Static suggestions are visible immediately while the request is pending
	if !o.IsLoading() {
		t.Errorf("Expected loading state right after an edit")
	}
	if len(o.CurrentSuggestions()) == 0 {
		t.Errorf("Expected static suggestions while loading")
	}
	if o.Current().Provider != config.ProviderStatic {
		t.Errorf("Interim result should be static, got %q", o.Current().Provider)
	}

	waitFor(t, "provider result", func() bool { return !o.IsLoading() })

	current := o.Current()
	if current.Provider != config.ProviderHTTP {
		t.Errorf("Expected provider result, got %q", current.Provider)
	}
	if len(current.Suggestions) != 1 || current.Suggestions[0].Title != "Provider suggestion" {
		t.Errorf("Unexpected suggestions: %+v", current.Suggestions)
	}
	if !o.IsAIPowered() {
		t.Errorf("Provider result should report as provider-powered")
	}
	if o.LastError() != nil {
		t.Errorf("Unexpected error: %v", o.LastError())
	}
}

func TestOrchestratorFallbackOnProviderError(t *testing.T) {
	provider := &fakeProvider{
		handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
			return types.SuggestOutput{}, errors.New("provider exploded")
		},
	}
	o, _ := newTestOrchestrator(provider, config.ProviderHTTP, 10*time.Millisecond)
	defer o.Close()

	o.Update(orchestratorResume(""))
	waitFor(t, "fallback result", func() bool { return !o.IsLoading() })

	current := o.Current()
	if !current.Fallback {
		t.Errorf("Expected fallback flag after provider failure")
	}
	if len(current.Suggestions) == 0 {
		t.Errorf("Fallback must still carry static suggestions")
	}
	if o.IsAIPowered() {
		t.Errorf("Fallback result must not report as provider-powered")
	}
	if o.LastError() == nil {
		t.Errorf("Expected LastError after provider failure")
	}
}

func TestOrchestratorDebounceCollapsesEdits(t *testing.T) {
	provider := &fakeProvider{
		handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
			return types.SuggestOutput{Provider: config.ProviderHTTP}, nil
		},
	}
	o, _ := newTestOrchestrator(provider, config.ProviderHTTP, 50*time.Millisecond)
	defer o.Close()

	// Rapid edits inside the quiet period collapse into one request
	for i := 0; i < 5; i++ {
		o.Update(orchestratorResume(fmt.Sprintf("edit %d", i)))
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, "debounced request", func() bool { return !o.IsLoading() })

	if got := provider.callCount(); got != 1 {
		t.Errorf("Expected exactly 1 provider call after rapid edits, got %d", got)
	}
}

func TestOrchestratorSkipsUnchangedContent(t *testing.T) {
	provider := &fakeProvider{
		handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
			return types.SuggestOutput{Provider: config.ProviderHTTP}, nil
		},
	}
	o, _ := newTestOrchestrator(provider, config.ProviderHTTP, 10*time.Millisecond)
	defer o.Close()

	o.Update(orchestratorResume("stable"))
	waitFor(t, "first request", func() bool { return !o.IsLoading() })

	// Same content again, and an edit to a field suggestions ignore
	o.Update(orchestratorResume("stable"))
	renamed := orchestratorResume("stable")
	renamed.Name = "Renamed"
	o.Update(renamed)

	time.Sleep(50 * time.Millisecond)
	if got := provider.callCount(); got != 1 {
		t.Errorf("Expected unchanged content to skip provider calls, got %d", got)
	}
}

func TestOrchestratorLastWriteWins(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	provider := &fakeProvider{}
	provider.handler = func(ctx context.Context, input types.SuggestInput) (types.SuggestOutput, error) {
		if input.Resume.Summary == "first" {
			once.Do(func() { close(firstStarted) })
			select {
			case <-release:
			case <-ctx.Done():
				return types.SuggestOutput{}, ctx.Err()
			}
			return types.SuggestOutput{
				Suggestions: []types.Suggestion{{Title: "stale", Type: types.SuggestionContent, Impact: types.ImpactLow}},
				Provider:    config.ProviderHTTP,
			}, nil
		}
		return types.SuggestOutput{
			Suggestions: []types.Suggestion{{Title: "fresh", Type: types.SuggestionContent, Impact: types.ImpactLow}},
			Provider:    config.ProviderHTTP,
		}, nil
	}

	o, _ := newTestOrchestrator(provider, config.ProviderHTTP, time.Millisecond)
	defer o.Close()

	o.Update(orchestratorResume("first"))
	<-firstStarted

	// Second edit supersedes the in-flight first request
	o.Update(orchestratorResume("second"))
	close(release)

	waitFor(t, "fresh result", func() bool {
		current := o.Current()
		return !o.IsLoading() && current.Provider == config.ProviderHTTP
	})

	current := o.Current()
	if len(current.Suggestions) != 1 || current.Suggestions[0].Title != "fresh" {
		t.Errorf("Stale response must be dropped, got %+v", current.Suggestions)
	}
}

func TestOrchestratorCloseStopsPendingWork(t *testing.T) {
	provider := &fakeProvider{
		handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
			return types.SuggestOutput{Provider: config.ProviderHTTP}, nil
		},
	}
	o, _ := newTestOrchestrator(provider, config.ProviderHTTP, time.Hour)

	o.Update(orchestratorResume(""))
	o.Close()
	o.Close() // idempotent

	// The pending timer was stopped, so no request ever fires
	time.Sleep(20 * time.Millisecond)
	if got := provider.callCount(); got != 0 {
		t.Errorf("Expected no provider calls after Close, got %d", got)
	}

	// Updates after Close are ignored
	o.Update(orchestratorResume("after close"))
	if o.IsLoading() {
		t.Errorf("Closed orchestrator must ignore updates")
	}
}

func TestOrchestratorAnalyzeSynchronous(t *testing.T) {
	t.Run("provider success", func(t *testing.T) {
		provider := &fakeProvider{
			handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
				return types.SuggestOutput{
					Suggestions: []types.Suggestion{{Title: "from provider", Type: types.SuggestionContent, Impact: types.ImpactHigh}},
					Provider:    config.ProviderHTTP,
				}, nil
			},
		}
		o, _ := newTestOrchestrator(provider, config.ProviderHTTP, time.Hour)
		defer o.Close()

		out, err := o.Analyze(context.Background(), orchestratorResume(""))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if out.Provider != config.ProviderHTTP || len(out.Suggestions) != 1 {
			t.Errorf("Unexpected output: %+v", out)
		}
	})

	t.Run("provider failure returns fallback and error", func(t *testing.T) {
		provider := &fakeProvider{
			handler: func(_ context.Context, _ types.SuggestInput) (types.SuggestOutput, error) {
				return types.SuggestOutput{}, errors.New("down")
			},
		}
		o, _ := newTestOrchestrator(provider, config.ProviderHTTP, time.Hour)
		defer o.Close()

		out, err := o.Analyze(context.Background(), orchestratorResume(""))
		if err == nil {
			t.Fatalf("Expected provider error to surface")
		}
		if !out.Fallback || len(out.Suggestions) == 0 {
			t.Errorf("Expected populated static fallback, got %+v", out)
		}
	})

	t.Run("static provider", func(t *testing.T) {
		o, _ := newTestOrchestrator(NewStaticProvider(testLogger()), config.ProviderStatic, time.Hour)
		defer o.Close()

		out, err := o.Analyze(context.Background(), orchestratorResume(""))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if out.Provider != config.ProviderStatic || out.Fallback {
			t.Errorf("Unexpected output: %+v", out)
		}
	})
}
