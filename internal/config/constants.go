package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Session store backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Background job intervals
const (
	CleanupJobInterval   = 5 * time.Minute
	DeliveryLogRetention = 30 * 24 * time.Hour
)

// Outbound queue polling
const (
	QueuePollInterval   = 500 * time.Millisecond
	QueueStalledTimeout = 2 * time.Minute
	UpstreamHTTPTimeout = 20 * time.Second
)

// OTP policy
const (
	OTPMaxAttempts  = 5
	OTPSendLimit    = 3
	OTPSendWindow   = 15 * time.Minute
	OTPCodeTTL      = 10 * time.Minute
	WebhookIPLimit  = 600
	WebhookIPWindow = time.Minute
)
