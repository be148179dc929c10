package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Required: issuer label for provisioning URIs and assertion tokens

	DatabaseFile  string // Optional: path to SQLite database file (default: ./twofa.db)
	MasterKeyPath string // Optional: path to master encryption key file

	Period          int           // Optional: TOTP time-window length in seconds (default: 30)
	Tolerance       int           // Optional: accepted clock drift in windows either side (default: 1, max: 2)
	SessionTTL      time.Duration // Optional: how long an unconfirmed enrollment stays live (default: 10m)
	BackupCodeCount int           // Optional: backup codes issued per enrollment (default: 10)
	AssertionTTL    time.Duration // Optional: lifetime of minted assertion tokens (default: 5m)

	MaxAttempts   int           // Optional: failed verifications before lockout (default: 5)
	LockoutWindow time.Duration // Optional: lockout duration once tripped (default: 15m)

	RemoteVerifyURL     string        // Optional: fallback verification endpoint (default: disabled)
	RemoteVerifyTimeout time.Duration // Optional: remote verification timeout (default: 5s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 5m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:        os.Getenv("TWOFA_ISSUER"),
		DatabaseFile:  getEnvOrDefault("TWOFA_DATABASE_FILE", "twofa.db"),
		MasterKeyPath: os.Getenv("TWOFA_MASTER_KEY_PATH"), // Optional

		Period:          getEnvIntOrDefault("TWOFA_PERIOD", 30),
		Tolerance:       getEnvIntOrDefault("TWOFA_TOLERANCE", 1),
		SessionTTL:      getEnvDurationOrDefault("TWOFA_SESSION_TTL", 10*time.Minute),
		BackupCodeCount: getEnvIntOrDefault("TWOFA_BACKUP_CODE_COUNT", 10),
		AssertionTTL:    getEnvDurationOrDefault("TWOFA_ASSERTION_TTL", 5*time.Minute),

		MaxAttempts:   getEnvIntOrDefault("TWOFA_MAX_ATTEMPTS", 5),
		LockoutWindow: getEnvDurationOrDefault("TWOFA_LOCKOUT_WINDOW", 15*time.Minute),

		RemoteVerifyURL:     os.Getenv("TWOFA_REMOTE_VERIFY_URL"), // Optional
		RemoteVerifyTimeout: getEnvDurationOrDefault("TWOFA_REMOTE_VERIFY_TIMEOUT", 5*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "twofa-service" // Default issuer shown in authenticator apps
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
