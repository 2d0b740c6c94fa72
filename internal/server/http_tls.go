package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS applies static TLS settings to the HTTP server when enabled
func (s *Server) configureTLS(httpServer *http.Server) error {
	addr := httpServer.Addr

	if !s.TLSConfig.Enabled {
		fmt.Printf("Starting server on http://%s\n", addr)
		fmt.Println("TLS: Disabled (HTTP only)")
		return nil
	}

	if s.TLSConfig.CertFile == "" || s.TLSConfig.KeyFile == "" {
		return fmt.Errorf("TLS enabled but certFile or keyFile not configured")
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig

	fmt.Printf("Starting server with HTTPS on https://%s\n", addr)
	return nil
}

// buildTLSConfig loads the certificate pair and applies the minimum version
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate pair: %w", err)
	}

	minVersion, err := parseTLSVersion(s.TLSConfig.MinVersion)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}, nil
}

// parseTLSVersion maps a configured version string to the crypto/tls constant
func parseTLSVersion(version string) (uint16, error) {
	switch version {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("invalid TLS minimum version: %s (must be '1.2' or '1.3')", version)
	}
}
