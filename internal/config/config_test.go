package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("duration helpers convert units", func(t *testing.T) {
		cfg := &Config{
			SessionTTLMinutes:   30,
			DedupeTTLSeconds:    300,
			QueueBackoffBaseMs:  2000,
			TemplateWindowHours: 24,
			IdleLockHours:       168,
		}
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
		assert.Equal(t, 5*time.Minute, cfg.DedupeTTL())
		assert.Equal(t, 2*time.Second, cfg.QueueBackoffBase())
		assert.Equal(t, 24*time.Hour, cfg.TemplateWindow())
		assert.Equal(t, 7*24*time.Hour, cfg.IdleLockAfter())
	})

	t.Run("twilio is enabled only with all credentials", func(t *testing.T) {
		cfg := &Config{TwilioAccountSID: "AC1", TwilioAuthToken: "tok"}
		assert.False(t, cfg.TwilioEnabled())
		cfg.TwilioVerifyServiceSID = "VA1"
		assert.True(t, cfg.TwilioEnabled())
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, "redis", cfg.SessionBackend)
		assert.Equal(t, 5, cfg.QueueMaxAttempts)
		assert.Equal(t, 5, cfg.QueueConcurrency)
		assert.Equal(t, 2, cfg.AIShortcutMinFields)
		assert.Equal(t, 24, cfg.TemplateWindowHours)
		assert.Equal(t, "v21.0", cfg.WhatsAppAPIVersion)
		assert.True(t, cfg.WorkerEnabled)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("PORT", "3000")
		t.Setenv("SESSION_BACKEND", "memory")
		t.Setenv("QUEUE_MAX_ATTEMPTS", "3")
		t.Setenv("WORKER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "memory", cfg.SessionBackend)
		assert.Equal(t, 3, cfg.QueueMaxAttempts)
		assert.False(t, cfg.WorkerEnabled)
	})

	t.Run("fails without required variables", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("REDIS_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SessionBackend:      SessionBackendRedis,
			QueueMaxAttempts:    5,
			QueueConcurrency:    5,
			AIShortcutMinFields: 2,
			RedisURL:            "rediss://localhost:6379",
			PairingSecret:       "0123456789abcdef0123456789abcdef",
		}
	}

	tests := []struct {
		name         string
		mutate       func(c *Config)
		isProduction bool
		wantErr      bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "rejects plain admin hash", mutate: func(c *Config) { c.AdminTokenHash = "plaintext" }, wantErr: true},
		{name: "accepts bcrypt admin hash", mutate: func(c *Config) { c.AdminTokenHash = "$2a$12$abcdefghijklmnopqrstuv" }},
		{name: "rejects unknown session backend", mutate: func(c *Config) { c.SessionBackend = "etcd" }, wantErr: true},
		{name: "rejects zero attempts", mutate: func(c *Config) { c.QueueMaxAttempts = 0 }, wantErr: true},
		{name: "rejects zero concurrency", mutate: func(c *Config) { c.QueueConcurrency = 0 }, wantErr: true},
		{name: "rejects zero shortcut threshold", mutate: func(c *Config) { c.AIShortcutMinFields = 0 }, wantErr: true},
		{name: "rejects short pairing secret in production", mutate: func(c *Config) { c.PairingSecret = "short" }, isProduction: true, wantErr: true},
		{name: "rejects weak pairing secret in production", mutate: func(c *Config) { c.PairingSecret = "secret" }, isProduction: true, wantErr: true},
		{name: "accepts strong pairing secret in production", mutate: func(c *Config) {}, isProduction: true},
		{name: "ignores short pairing secret outside production", mutate: func(c *Config) { c.PairingSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate(tt.isProduction)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
