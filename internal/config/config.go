package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	WhatsAppToken         string `env:"WHATSAPP_TOKEN"`
	WhatsAppPhoneNumberID string `env:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppAPIVersion    string `env:"WHATSAPP_API_VERSION" envDefault:"v21.0"`
	WhatsAppAPIBaseURL    string `env:"WHATSAPP_API_BASE_URL" envDefault:"https://graph.facebook.com"`
	WhatsAppAppSecret     string `env:"WHATSAPP_APP_SECRET"`
	WhatsAppVerifyToken   string `env:"WHATSAPP_VERIFY_TOKEN"`

	AdminTokenHash string `env:"ADMIN_TOKEN_HASH"`
	PairingSecret  string `env:"PAIRING_SECRET"`
	EncryptionKey  string `env:"ENCRYPTION_KEY"`

	SessionBackend    string `env:"SESSION_BACKEND" envDefault:"redis"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"30"`
	DedupeTTLSeconds  int    `env:"DEDUPE_TTL_SECONDS" envDefault:"300"`

	QueueConcurrency   int  `env:"QUEUE_CONCURRENCY" envDefault:"5"`
	QueueMaxAttempts   int  `env:"QUEUE_MAX_ATTEMPTS" envDefault:"5"`
	QueueBackoffBaseMs int  `env:"QUEUE_BACKOFF_BASE_MS" envDefault:"2000"`
	QueueKeepCompleted int  `env:"QUEUE_KEEP_COMPLETED" envDefault:"1000"`
	QueueKeepFailed    int  `env:"QUEUE_KEEP_FAILED" envDefault:"5000"`
	WorkerEnabled      bool `env:"WORKER_ENABLED" envDefault:"true"`

	TemplateWindowHours int `env:"TEMPLATE_WINDOW_HOURS" envDefault:"24"`
	AIShortcutMinFields int `env:"AI_SHORTCUT_MIN_FIELDS" envDefault:"2"`
	IdleLockHours       int `env:"IDLE_LOCK_HOURS" envDefault:"168"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	TwilioAccountSID       string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken        string `env:"TWILIO_AUTH_TOKEN"`
	TwilioVerifyServiceSID string `env:"TWILIO_VERIFY_SERVICE_SID"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) DedupeTTL() time.Duration {
	return time.Duration(c.DedupeTTLSeconds) * time.Second
}

func (c *Config) QueueBackoffBase() time.Duration {
	return time.Duration(c.QueueBackoffBaseMs) * time.Millisecond
}

func (c *Config) TemplateWindow() time.Duration {
	return time.Duration(c.TemplateWindowHours) * time.Hour
}

func (c *Config) IdleLockAfter() time.Duration {
	return time.Duration(c.IdleLockHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioVerifyServiceSID != ""
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminTokenHash != "" {
		if !strings.HasPrefix(c.AdminTokenHash, "$2a$") &&
			!strings.HasPrefix(c.AdminTokenHash, "$2b$") &&
			!strings.HasPrefix(c.AdminTokenHash, "$2y$") {
			return fmt.Errorf("ADMIN_TOKEN_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <secret>)")
		}
	}

	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendMemory, SessionBackendRedis)
	}

	if c.QueueMaxAttempts < 1 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1")
	}
	if c.QueueConcurrency < 1 {
		return fmt.Errorf("QUEUE_CONCURRENCY must be at least 1")
	}
	if c.AIShortcutMinFields < 1 {
		return fmt.Errorf("AI_SHORTCUT_MIN_FIELDS must be at least 1")
	}

	if isProduction {
		if err := validateSecret("PAIRING_SECRET", c.PairingSecret); err != nil {
			return err
		}
		if c.WhatsAppAppSecret == "" {
			log.Warn().Msg("WHATSAPP_APP_SECRET is empty in production: webhook signature verification disabled")
		}
		if c.SessionBackend == SessionBackendMemory {
			log.Warn().Msg("SESSION_BACKEND=memory in production: sessions are not shared across instances")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.EncryptionKey == "" {
			log.Warn().Msg("ENCRYPTION_KEY is empty in production: session snapshots will not be encrypted at rest")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
