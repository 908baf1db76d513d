package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	base := Config{
		Port:      "8375",
		JWTSecret: "a-development-secret-long-enough-to-pass",
		StoreURL:  "http://localhost:8090/_api",
		Env:       "development",
	}

	t.Run("valid development config", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := base
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing store url", func(t *testing.T) {
		cfg := base
		cfg.StoreURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("default jwt secret rejected in production", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.JWTSecret = "your-secret-key-change-in-production"
		cfg.StoreToken = "token"
		assert.Error(t, cfg.Validate())
	})

	t.Run("short jwt secret rejected in production", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.JWTSecret = "short"
		cfg.StoreToken = "token"
		assert.Error(t, cfg.Validate())
	})

	t.Run("store token required in production", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.StoreToken = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("production config with token", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.StoreToken = "token"
		assert.NoError(t, cfg.Validate())
	})
}
