package server

import (
	"context"
	"net/http"
	"time"

	"resumeforge/internal/ats"
	resumeforgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/suggest"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createScoreHandler wraps the ATS score handler with observability
func (s *Server) createScoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.score")
		defer span.End()

		var req ScoreRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		req.Resume.Normalize()

		report := ats.Explain(&req.Resume)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "score_computed", true, om,
			attribute.Int("ats.score", report.Score))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("ats.score", report.Score),
			attribute.Int("ats.bonus_count", len(report.Bonuses)),
		)

		writeJSONResponse(w, http.StatusOK, report)
	}
}

// createSuggestHandler serves the deterministic rule-based suggestions
func (s *Server) createSuggestHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.suggest")
		defer span.End()

		var req SuggestRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		req.Resume.Normalize()

		result := types.SuggestOutput{
			Suggestions: suggest.Generate(&req.Resume),
			Provider:    "static",
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "suggestions_generated", true, om,
			attribute.String("source", "static"),
			attribute.Int("suggestion_count", len(result.Suggestions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("suggestion_count", len(result.Suggestions)),
		)

		writeJSONResponse(w, http.StatusOK, result)
	}
}

// createSuggestAIHandler serves provider-backed suggestions, falling back to
// the rule-based generator when the provider fails
func (s *Server) createSuggestAIHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.suggest_ai")
		defer span.End()

		var req SuggestRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		req.Resume.Normalize()

		span.SetAttributes(attribute.String("provider", s.Suggest.ProviderName()))

		input := types.SuggestInput{Resume: req.Resume}

		// Track the provider call with observability and token usage
		metrics := om.GetMetrics()
		var result types.SuggestOutput
		err := metrics.TrackProviderCallWithTokens(ctx, "suggest", func(ctx context.Context) *observability.ProviderCallResult {
			output, tokenUsage, callErr := s.Suggest.Suggest(ctx, input)
			result = output
			return &observability.ProviderCallResult{
				Error:      callErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			// Provider failure is absorbed: serve the rule-based suggestions
			// flagged as a fallback.
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("fallback", true))
			s.Logger.LogError(err, "Suggestion provider failed, serving static fallback",
				"provider", s.Suggest.ProviderName())

			result = types.SuggestOutput{
				Suggestions: suggest.Generate(&req.Resume),
				Fallback:    true,
				Provider:    s.Suggest.ProviderName(),
			}

			metrics.RecordBusinessMetric(ctx, "suggestions_generated", false, om,
				attribute.String("source", "fallback"),
				attribute.Int("suggestion_count", len(result.Suggestions)))

			writeJSONResponse(w, http.StatusOK, result)
			return
		}

		metrics.RecordBusinessMetric(ctx, "suggestions_generated", true, om,
			attribute.String("source", s.Suggest.ProviderName()),
			attribute.Int("suggestion_count", len(result.Suggestions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("suggestion_count", len(result.Suggestions)),
		)

		writeJSONResponse(w, http.StatusOK, result)
	}
}

// listResumesHandler returns all stored resumes
func (s *Server) listResumesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, s.Store.List())
}

// getResumeHandler returns one stored resume by ID
func (s *Server) getResumeHandler(w http.ResponseWriter, r *http.Request) {
	resume, err := s.Store.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, resume)
}

// upsertResumeHandler stores a resume, recomputing its ATS score on the way in
func (s *Server) upsertResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.resume_upsert")
		defer span.End()

		var resume types.Resume
		if err := parseJSONRequest(r, &resume); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		resume.Normalize()
		resume.ATSScore = ats.ComputeScore(&resume)

		created := resume.ID == ""
		stored, err := s.Store.Put(&resume)
		if err != nil {
			span.RecordError(err)
			writeStoreError(w, err)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "score_computed", true, om,
			attribute.Int("ats.score", stored.ATSScore))

		span.SetAttributes(
			attribute.Bool("created", created),
			attribute.Int("ats.score", stored.ATSScore),
		)

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSONResponse(w, status, stored)
	}
}

// deleteResumeHandler removes a stored resume
func (s *Server) deleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.Store.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.appliedMu.Lock()
	delete(s.applied, id)
	s.appliedMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// listVersionsHandler returns a resume's version history, newest first
func (s *Server) listVersionsHandler(w http.ResponseWriter, r *http.Request) {
	resume, err := s.Store.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, s.History.List(resume))
}

// createSaveVersionHandler snapshots a resume's current content
func (s *Server) createSaveVersionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.version_save")
		defer span.End()

		resume, err := s.Store.Get(r.PathValue("id"))
		if err != nil {
			span.RecordError(err)
			writeStoreError(w, err)
			return
		}

		var req SaveVersionRequest
		if r.ContentLength > 0 {
			if err := parseJSONRequest(r, &req); err != nil {
				span.RecordError(err)
				writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
				return
			}
		}

		versionID := s.History.SaveVersion(resume, req.Label)
		stored, err := s.Store.Put(resume)
		if err != nil {
			span.RecordError(err)
			writeStoreError(w, err)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "version_saved", true, om,
			attribute.Int("version_count", len(stored.Versions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("version.id", versionID),
			attribute.Int("version_count", len(stored.Versions)),
		)

		writeJSONResponse(w, http.StatusCreated, map[string]any{
			"versionId": versionID,
			"versions":  s.History.List(stored),
		})
	}
}

// createRestoreVersionHandler restores a resume to a saved snapshot
func (s *Server) createRestoreVersionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.version_restore")
		defer span.End()

		resume, err := s.Store.Get(r.PathValue("id"))
		if err != nil {
			span.RecordError(err)
			writeStoreError(w, err)
			return
		}

		versionID := r.PathValue("versionID")
		if !s.History.RestoreVersion(resume, versionID) {
			om.GetMetrics().RecordBusinessMetric(ctx, "version_restored", false, om)
			writeErrorResponse(w, "Version not found", "No version with id "+versionID, http.StatusNotFound)
			return
		}

		resume.ATSScore = ats.ComputeScore(resume)
		stored, err := s.Store.Put(resume)
		if err != nil {
			span.RecordError(err)
			writeStoreError(w, err)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "version_restored", true, om)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("version.id", versionID),
		)

		writeJSONResponse(w, http.StatusOK, stored)
	}
}

// createApplySuggestionHandler applies one suggestion to a stored resume.
// Mutating applications persist the change and recompute the score; the
// response always carries the regenerated suggestion list so clients can
// refresh in one round trip.
func (s *Server) createApplySuggestionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.suggestion_apply")
		defer span.End()

		var req ApplySuggestionRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		id := r.PathValue("id")
		resume, err := s.Store.Get(id)
		if err != nil {
			span.RecordError(err)
			writeStoreError(w, err)
			return
		}

		if req.Auto && !s.markAutoApplied(id, req.Suggestion) {
			// Already auto-applied to this resume; skip silently.
			writeJSONResponse(w, http.StatusOK, ApplySuggestionResponse{
				Action:      string(suggest.ActionDismissed),
				ATSScore:    resume.ATSScore,
				Suggestions: suggest.Generate(resume),
			})
			return
		}

		result := suggest.Apply(resume, req.Suggestion, req.Chosen, time.Now())
		if result.Mutated {
			resume.ATSScore = ats.ComputeScore(resume)
			if resume, err = s.Store.Put(resume); err != nil {
				span.RecordError(err)
				writeStoreError(w, err)
				return
			}
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "suggestions_generated", true, om,
			attribute.String("apply.action", string(result.Action)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("apply.action", string(result.Action)),
			attribute.Bool("apply.mutated", result.Mutated),
		)

		writeJSONResponse(w, http.StatusOK, ApplySuggestionResponse{
			Action:      string(result.Action),
			Mutated:     result.Mutated,
			AddedSkills: result.AddedSkills,
			SeedSummary: result.SeedSummary,
			ATSScore:    resume.ATSScore,
			Suggestions: suggest.Generate(resume),
		})
	}
}

// markAutoApplied records an auto-application for a resume and reports
// whether it was newly recorded.
func (s *Server) markAutoApplied(resumeID string, sg types.Suggestion) bool {
	s.appliedMu.Lock()
	defer s.appliedMu.Unlock()
	tracker := s.applied[resumeID]
	if tracker == nil {
		tracker = suggest.NewAppliedTracker()
		s.applied[resumeID] = tracker
	}
	return tracker.MarkApplied(sg)
}

// writeStoreError maps store errors to HTTP status codes
func writeStoreError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*resumeforgeErrors.AppError); ok {
		switch appErr.Code {
		case resumeforgeErrors.ErrCodeResumeNotFound, resumeforgeErrors.ErrCodeVersionNotFound:
			writeErrorResponse(w, "Not found", appErr.Message, http.StatusNotFound)
			return
		case resumeforgeErrors.ErrCodeInvalidRequest:
			writeErrorResponse(w, "Invalid request", appErr.Message, http.StatusBadRequest)
			return
		}
	}
	writeErrorResponse(w, "Store error", err.Error(), http.StatusInternalServerError)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
