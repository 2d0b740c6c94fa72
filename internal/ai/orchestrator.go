package ai

import (
	"context"
	"slices"
	"sync"
	"time"

	"resumeforge/internal/ats"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/suggest"
	"resumeforge/internal/types"
)

// Orchestrator coordinates suggestion generation around resume edits. Every
// edit immediately refreshes the deterministic static suggestions, and a
// provider request is scheduled after a debounce quiet period. Responses are
// tagged with the generation current when they were scheduled; a response
// arriving after a newer edit is dropped, so the newest edit always wins.
// When the provider fails or times out the static suggestions are kept and
// marked as a fallback.
type Orchestrator struct {
	service  *Service
	logger   *errors.Logger
	debounce time.Duration
	timeout  time.Duration

	mu         sync.Mutex
	generation uint64
	lastKey    string
	timer      *time.Timer
	cancel     context.CancelFunc
	current    types.SuggestOutput
	loading    bool
	lastErr    error
	closed     bool
	onUpdate   func(types.SuggestOutput, bool)
}

// NewOrchestrator creates an orchestrator over the given suggestion service
func NewOrchestrator(service *Service, cfg *config.SuggestConfig, logger *errors.Logger) *Orchestrator {
	return &Orchestrator{
		service:  service,
		logger:   logger,
		debounce: cfg.Debounce,
		timeout:  cfg.Timeout,
	}
}

// SetOnUpdate registers a callback invoked whenever the suggestion state
// changes. It receives the new output and whether a provider request is
// still pending. Must be set before the first Update call.
func (o *Orchestrator) SetOnUpdate(fn func(output types.SuggestOutput, loading bool)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onUpdate = fn
}

// Update notifies the orchestrator of a resume edit. Static suggestions are
// regenerated synchronously; a provider request is (re)scheduled after the
// debounce period. Any earlier pending or in-flight request is superseded.
func (o *Orchestrator) Update(r *types.Resume) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}

	// Edits to fields suggestions don't depend on (resume name, template)
	// leave the current state untouched.
	key := ats.DependencyKey(r)
	if key != "" && key == o.lastKey {
		o.mu.Unlock()
		return
	}
	o.lastKey = key

	o.generation++
	gen := o.generation

	// Snapshot the content so background analysis never races with edits
	analyzed := *r
	analyzed.ResumeContent = r.ResumeContent.Clone()
	analyzed.Versions = nil

	o.current = types.SuggestOutput{
		Suggestions: suggest.Generate(&analyzed),
		Provider:    config.ProviderStatic,
	}
	o.lastErr = nil

	// Supersede whatever was pending for an older generation
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}

	async := o.service != nil && o.service.ProviderName() != config.ProviderStatic
	o.loading = async
	if async {
		o.timer = time.AfterFunc(o.debounce, func() {
			o.fire(analyzed, gen)
		})
	}

	o.notifyLocked()
	o.mu.Unlock()
}

// fire runs the provider request for one generation after the debounce
// period elapses.
func (o *Orchestrator) fire(analyzed types.Resume, gen uint64) {
	o.mu.Lock()
	if o.closed || gen != o.generation {
		o.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	o.cancel = cancel
	o.mu.Unlock()

	output, _, err := o.service.Suggest(ctx, types.SuggestInput{Resume: analyzed})
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()

	// A newer edit superseded this request while it was in flight
	if o.closed || gen != o.generation {
		return
	}

	o.loading = false
	o.cancel = nil

	if err != nil {
		o.lastErr = err
		o.current = types.SuggestOutput{
			Suggestions: suggest.Generate(&analyzed),
			Fallback:    true,
			Provider:    o.service.ProviderName(),
		}
		o.logger.Warn("Suggestion provider failed, serving static fallback",
			"provider", o.service.ProviderName(),
			"error", err.Error())
	} else {
		o.lastErr = nil
		o.current = output
	}

	o.notifyLocked()
}

// Analyze runs one synchronous provider request, bypassing the debounce. On
// provider failure it returns the static fallback instead of an error; the
// error is still reported for logging.
func (o *Orchestrator) Analyze(ctx context.Context, r *types.Resume) (types.SuggestOutput, error) {
	analyzed := *r
	analyzed.ResumeContent = r.ResumeContent.Clone()
	analyzed.Versions = nil

	if o.service == nil || o.service.ProviderName() == config.ProviderStatic {
		return types.SuggestOutput{
			Suggestions: suggest.Generate(&analyzed),
			Provider:    config.ProviderStatic,
		}, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	output, _, err := o.service.Suggest(reqCtx, types.SuggestInput{Resume: analyzed})
	if err != nil {
		o.logger.Warn("Suggestion provider failed, serving static fallback",
			"provider", o.service.ProviderName(),
			"error", err.Error())
		return types.SuggestOutput{
			Suggestions: suggest.Generate(&analyzed),
			Fallback:    true,
			Provider:    o.service.ProviderName(),
		}, err
	}
	return output, nil
}

// Current returns the latest suggestion output
func (o *Orchestrator) Current() types.SuggestOutput {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.current
	out.Suggestions = slices.Clone(out.Suggestions)
	return out
}

// CurrentSuggestions returns a copy of the latest suggestion list
func (o *Orchestrator) CurrentSuggestions() []types.Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.current.Suggestions)
}

// IsLoading reports whether a provider request is pending or in flight
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// IsAIPowered reports whether the current suggestions came from an external
// provider rather than the local rule engine or its fallback.
func (o *Orchestrator) IsAIPowered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current.Provider != config.ProviderStatic && !o.current.Fallback
}

// LastError returns the most recent provider error, cleared on the next
// successful response or edit.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Close stops pending work. Safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// notifyLocked invokes the update callback with the current state. Callers
// must hold o.mu. The callback runs on a fresh goroutine so it can call back
// into the orchestrator without deadlocking.
func (o *Orchestrator) notifyLocked() {
	if o.onUpdate == nil {
		return
	}
	out := o.current
	out.Suggestions = slices.Clone(out.Suggestions)
	loading := o.loading
	fn := o.onUpdate
	go fn(out, loading)
}
