// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Storage driver names.
const (
	StorageDriverDisk = "disk"
	StorageDriverS3   = "s3"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL       string        `env:"DATABASE_URL,required"`
	DBConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"10"`
	DBConnectDelay    time.Duration `env:"DB_CONNECT_DELAY" envDefault:"1s"`
	DBAutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// Cache (Redis)
	RedisURL             string        `env:"REDIS_URL,required"`
	RedisConnectAttempts int           `env:"REDIS_CONNECT_ATTEMPTS" envDefault:"5"`
	RedisConnectDelay    time.Duration `env:"REDIS_CONNECT_DELAY" envDefault:"1s"`

	// Base URL for absolute links in responses (e.g., https://api.recipebox.dev)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. WriteTimeout must leave headroom for image uploads.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Token issuance. Zero TTL means issued tokens never expire.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"0"`

	// Rate limiting: per-user buckets on authenticated API routes, per-IP
	// buckets on the public signup/token endpoints.
	RateLimitAPIEnabled    bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitAPIRPM        int  `env:"RATE_LIMIT_API_RPM" envDefault:"300"`
	RateLimitAPIBurst      int  `env:"RATE_LIMIT_API_BURST" envDefault:"30"`
	RateLimitPublicEnabled bool `env:"RATE_LIMIT_PUBLIC_ENABLED" envDefault:"true"`
	RateLimitPublicRPS     int  `env:"RATE_LIMIT_PUBLIC_RPS" envDefault:"5"`
	RateLimitPublicBurst   int  `env:"RATE_LIMIT_PUBLIC_BURST" envDefault:"10"`

	// Image storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"disk"`
	MediaRoot     string `env:"MEDIA_ROOT" envDefault:"media"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"` // 5MB

	// S3-compatible storage (used when STORAGE_DRIVER=s3; endpoint empty
	// means AWS, set it for MinIO and friends)
	S3Endpoint        string `env:"S3_ENDPOINT" envDefault:""`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket          string `env:"S3_BUCKET" envDefault:""`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" envDefault:""`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" envDefault:""`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" envDefault:"true"`

	// Prometheus exposition on /metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes for JSON endpoints (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// A local .env file is applied first when present, so development setups
// work without exporting anything. Returns an error if required variables
// are missing.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
