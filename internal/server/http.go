package server

import (
	"sync"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	resumeforgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/history"
	"resumeforge/internal/store"
	"resumeforge/internal/suggest"
	"resumeforge/internal/types"
)

// ScoreRequest represents the request body for the score endpoint
type ScoreRequest struct {
	Resume types.Resume `json:"resume"`
}

// SuggestRequest represents the request body for the suggest endpoints
type SuggestRequest struct {
	Resume types.Resume `json:"resume"`
}

// SaveVersionRequest represents the request body for saving a version
type SaveVersionRequest struct {
	Label string `json:"label,omitempty"`
}

// ApplySuggestionRequest represents the request body for applying a
// suggestion to a stored resume. Chosen narrows keyword suggestions to a
// subset of their keywords; nil applies all of them. Auto marks the request
// as an automatic application, which is skipped if the same suggestion was
// auto-applied to this resume before.
type ApplySuggestionRequest struct {
	Suggestion types.Suggestion `json:"suggestion"`
	Chosen     []string         `json:"chosen,omitempty"`
	Auto       bool             `json:"auto,omitempty"`
}

// ApplySuggestionResponse reports what applying a suggestion did
type ApplySuggestionResponse struct {
	Action      string             `json:"action"`
	Mutated     bool               `json:"mutated"`
	AddedSkills []string           `json:"addedSkills,omitempty"`
	SeedSummary string             `json:"seedSummary,omitempty"`
	ATSScore    int                `json:"atsScore"`
	Suggestions []types.Suggestion `json:"suggestions"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Domain services
	Store   *store.FileStore
	Suggest *ai.Service
	History *history.Manager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Auto-apply bookkeeping, per resume id
	appliedMu sync.Mutex
	applied   map[string]*suggest.AppliedTracker

	// Logger
	Logger *resumeforgeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, resumeStore *store.FileStore, suggestService *ai.Service, historyManager *history.Manager, logger *resumeforgeErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		Store:          resumeStore,
		Suggest:        suggestService,
		History:        historyManager,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		applied:        make(map[string]*suggest.AppliedTracker),
		Logger:         logger,
	}
}
