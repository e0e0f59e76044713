// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Advisory engine settings
	AuditLogCap   int    // Maximum audit entries kept in memory
	EngineVersion string // Reported in audit entries and health responses

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (empty disables tracing)

	// Security
	RateLimitPerMin int
	AllowedOrigins  string // Comma-separated CORS origins, "*" for all
}

// Defaults for local development.
const (
	DefaultPort          = "8090"
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultAuditLogCap   = 10000
	DefaultRateLimit     = 100
	DefaultEngineVersion = "1.0.0"
)

// Load reads configuration from environment variables.
// It loads a .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", DefaultPort),
		Env:             getEnv("ENV", DefaultEnv),
		LogLevel:        getEnv("LOG_LEVEL", DefaultLogLevel),
		AuditLogCap:     getEnvInt("AUDIT_LOG_CAP", DefaultAuditLogCap),
		EngineVersion:   getEnv("ENGINE_VERSION", DefaultEngineVersion),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimit),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.AuditLogCap <= 0 {
		return fmt.Errorf("AUDIT_LOG_CAP must be positive, got %d", c.AuditLogCap)
	}
	if c.RateLimitPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMin)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
