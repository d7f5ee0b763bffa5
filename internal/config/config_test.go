package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 60 * time.Second,
		},
		Storage: StorageConfig{
			Mode:    "memory",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing backend base URL",
			mutate:      func(c *Config) { c.Backend.BaseURL = "" },
			expectError: true,
			errorMsg:    "backend base URL is required",
		},
		{
			name:        "non-positive backend timeout",
			mutate:      func(c *Config) { c.Backend.Timeout = 0 },
			expectError: true,
			errorMsg:    "backend timeout must be positive",
		},
		{
			name:        "missing server port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: true,
			errorMsg:    "server port is required",
		},
		{
			name:        "invalid storage mode",
			mutate:      func(c *Config) { c.Storage.Mode = "postgres" },
			expectError: true,
			errorMsg:    "invalid storage mode",
		},
		{
			name: "mongo mode without URI",
			mutate: func(c *Config) {
				c.Storage.Mode = "mongo"
				c.Storage.MongoURI = ""
			},
			expectError: true,
			errorMsg:    "MongoDB URI is required",
		},
		{
			name: "mongo mode with URI",
			mutate: func(c *Config) {
				c.Storage.Mode = "mongo"
				c.Storage.MongoURI = "mongodb://localhost:27017"
			},
		},
		{
			name:        "invalid TLS mode surfaces",
			mutate:      func(c *Config) { c.Server.TLS.Mode = "mutual" },
			expectError: true,
			errorMsg:    "TLS configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.expectError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetPreviewConfigFallback(t *testing.T) {
	t.Run("explicit timeout wins", func(t *testing.T) {
		cfg := validConfig()
		previewTimeout := 30 * time.Second
		cfg.Backend.Preview.Timeout = &previewTimeout

		opCfg := cfg.GetPreviewConfig()
		assert.NotNil(t, opCfg.Timeout)
		assert.Equal(t, 30*time.Second, *opCfg.Timeout)
	})

	t.Run("falls back to global timeout", func(t *testing.T) {
		cfg := validConfig()

		opCfg := cfg.GetPreviewConfig()
		assert.NotNil(t, opCfg.Timeout)
		assert.Equal(t, cfg.Backend.Timeout, *opCfg.Timeout)
	})
}

func TestGetTailorConfigFallback(t *testing.T) {
	t.Run("explicit timeout wins", func(t *testing.T) {
		cfg := validConfig()
		tailorTimeout := 120 * time.Second
		cfg.Backend.Tailor.Timeout = &tailorTimeout

		opCfg := cfg.GetTailorConfig()
		assert.NotNil(t, opCfg.Timeout)
		assert.Equal(t, 120*time.Second, *opCfg.Timeout)
	})

	t.Run("falls back to global timeout", func(t *testing.T) {
		cfg := validConfig()

		opCfg := cfg.GetTailorConfig()
		assert.NotNil(t, opCfg.Timeout)
		assert.Equal(t, cfg.Backend.Timeout, *opCfg.Timeout)
	})
}

func TestOperationConfigsAreIndependent(t *testing.T) {
	cfg := validConfig()
	previewTimeout := 15 * time.Second
	cfg.Backend.Preview.Timeout = &previewTimeout
	cfg.Backend.Preview.CircuitBreaker = CircuitBreakerConfig{
		Enabled:     true,
		MinRequests: 3,
	}

	previewCfg := cfg.GetPreviewConfig()
	tailorCfg := cfg.GetTailorConfig()

	assert.Equal(t, 15*time.Second, *previewCfg.Timeout)
	assert.Equal(t, cfg.Backend.Timeout, *tailorCfg.Timeout)
	assert.True(t, previewCfg.CircuitBreaker.Enabled)
	assert.False(t, tailorCfg.CircuitBreaker.Enabled)
}
