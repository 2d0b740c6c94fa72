package cli

import (
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	"resumeforge/internal/history"
	"resumeforge/internal/server"
	"resumeforge/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume scoring, suggestions and versioning",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis.

Available endpoints:
- POST /score: Compute the ATS score report for a resume
- POST /suggest: Generate rule-based suggestions for a resume
- POST /suggest/ai: Generate provider-backed suggestions with rule-based fallback
- GET/POST /resumes: List or upsert stored resumes
- GET/DELETE /resumes/{id}: Fetch or delete a stored resume
- POST /resumes/{id}/suggestions/apply: Apply a suggestion to a stored resume
- GET/POST /resumes/{id}/versions: List or save version snapshots
- POST /resumes/{id}/versions/{versionID}/restore: Restore a snapshot
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --cert-file and --key-file to serve TLS
- Use server.tls.minVersion in config to require TLS 1.3`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("store-path", "", "Resume store file path (overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.certFile", "cert-file")
	bindFlag("server.tls.keyFile", "key-file")
	bindFlag("store.path", "store-path")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: cfg.Server}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	resumeStore, err := store.NewFileStore(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open resume store: %w", err)
	}

	suggestService, err := ai.NewService(&cfg.Suggest, logger)
	if err != nil {
		return fmt.Errorf("failed to create suggestion service: %w", err)
	}

	historyManager := history.NewManager(logger, history.WithMaxVersions(cfg.History.MaxVersions))

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
	return server.NewServer(cfg, serverCfg, resumeStore, suggestService, historyManager, logger).Start()
}
