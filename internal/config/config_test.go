package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("Failed to unmarshal defaults: %v", err)
	}
	cfg.applyFallbacks()
	return &cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default configuration should validate: %v", err)
	}

	if cfg.Suggest.Provider != ProviderStatic {
		t.Errorf("Expected default provider %q, got %q", ProviderStatic, cfg.Suggest.Provider)
	}
	if cfg.Suggest.Timeout != 30*time.Second {
		t.Errorf("Expected 30s provider timeout, got %s", cfg.Suggest.Timeout)
	}
	if cfg.Suggest.Debounce != time.Second {
		t.Errorf("Expected 1s debounce, got %s", cfg.Suggest.Debounce)
	}
	if cfg.History.MaxVersions != 10 {
		t.Errorf("Expected 10 retained versions, got %d", cfg.History.MaxVersions)
	}
	if cfg.Store.Path != "resumes.json" {
		t.Errorf("Expected default store path, got %q", cfg.Store.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errContains string
	}{
		{
			name:        "defaults pass",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "gemini provider requires api key",
			mutate:      func(c *Config) { c.Suggest.Provider = ProviderGemini },
			expectError: true,
			errContains: "API key",
		},
		{
			name: "gemini provider with api key passes",
			mutate: func(c *Config) {
				c.Suggest.Provider = ProviderGemini
				c.Suggest.APIKey = "test-key"
			},
			expectError: false,
		},
		{
			name:        "http provider requires endpoint",
			mutate:      func(c *Config) { c.Suggest.Provider = ProviderHTTP },
			expectError: true,
			errContains: "endpoint",
		},
		{
			name: "http provider with endpoint passes",
			mutate: func(c *Config) {
				c.Suggest.Provider = ProviderHTTP
				c.Suggest.Endpoint = "https://suggest.example.com"
			},
			expectError: false,
		},
		{
			name:        "unknown provider rejected",
			mutate:      func(c *Config) { c.Suggest.Provider = "oracle" },
			expectError: true,
			errContains: "invalid suggest provider",
		},
		{
			name:        "non-positive timeout rejected",
			mutate:      func(c *Config) { c.Suggest.Timeout = 0 },
			expectError: true,
			errContains: "timeout",
		},
		{
			name:        "zero max versions rejected",
			mutate:      func(c *Config) { c.History.MaxVersions = 0 },
			expectError: true,
			errContains: "maxVersions",
		},
		{
			name:        "empty store path rejected",
			mutate:      func(c *Config) { c.Store.Path = "" },
			expectError: true,
			errContains: "store path",
		},
		{
			name:        "empty server port rejected",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: true,
			errContains: "port",
		},
		{
			name:        "unsupported default format rejected",
			mutate:      func(c *Config) { c.App.DefaultFormat = "xml" },
			expectError: true,
			errContains: "format",
		},
		{
			name:        "tls enabled without certs rejected",
			mutate:      func(c *Config) { c.Server.TLS.Enabled = true },
			expectError: true,
			errContains: "TLS",
		},
		{
			name: "tls enabled with certs passes",
			mutate: func(c *Config) {
				c.Server.TLS.Enabled = true
				c.Server.TLS.CertFile = "server.crt"
				c.Server.TLS.KeyFile = "server.key"
			},
			expectError: false,
		},
		{
			name:        "bad tls version rejected",
			mutate:      func(c *Config) { c.Server.TLS.MinVersion = "1.0" },
			expectError: true,
			errContains: "minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected validation error")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Expected error containing %q, got %v", tt.errContains, err)
				}
			} else if err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	t.Setenv("RESUMEFORGE_SERVER_APIKEYS", "key-one, key-two ,key-three")

	cfg := defaultConfig(t)
	cfg.Server.APIKeys = nil
	cfg.applyServerAPIKeyFallbacks()

	expected := []string{"key-one", "key-two", "key-three"}
	if len(cfg.Server.APIKeys) != len(expected) {
		t.Fatalf("Expected %d keys, got %v", len(expected), cfg.Server.APIKeys)
	}
	for i, key := range expected {
		if cfg.Server.APIKeys[i] != key {
			t.Errorf("Expected key %q at %d, got %q", key, i, cfg.Server.APIKeys[i])
		}
	}
}

func TestApplyObservabilityDefaults(t *testing.T) {
	cfg := defaultConfig(t)
	if cfg.Observability.ServiceInstance == "" {
		t.Errorf("Expected a generated service instance id")
	}
	if !strings.HasPrefix(cfg.Observability.ServiceInstance, cfg.Observability.ServiceName) {
		t.Errorf("Instance id should be derived from the service name: %q", cfg.Observability.ServiceInstance)
	}

	debug := defaultConfig(t)
	debug.App.LogLevel = "debug"
	debug.Observability.ConsoleOutput = false
	debug.applyObservabilityDefaults()
	if !debug.Observability.ConsoleOutput {
		t.Errorf("Debug log level should enable console output")
	}
}
