// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration tree.
type Config struct {
	Environment string
	LogLevel    string

	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled bool
	URL     string
}

type AuthConfig struct {
	// JWTSecret verifies bearer tokens issued by the external auth service
	// and signs impersonation grants.
	JWTSecret        string
	Issuer           string
	ImpersonationTTL time.Duration
}

type StorageConfig struct {
	// GatewayURL is the base URL of the object storage gateway holding
	// uploaded documents.
	GatewayURL    string
	SigningSecret string
	SignTTL       time.Duration
}

type EmailConfig struct {
	Enabled   bool
	APIKey    string
	FromEmail string
	FromName  string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	FailOpen          bool
}

type TracingConfig struct {
	Enabled      bool
	CollectorURL string
	SampleRate   float64
}

// Load reads configuration from the environment. A .env file is honored when
// present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")

	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")

	v.SetDefault("AUTH_ISSUER", "vantage-auth")
	v.SetDefault("AUTH_IMPERSONATION_TTL", "15m")

	v.SetDefault("STORAGE_SIGN_TTL", "60s")

	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("EMAIL_FROM_EMAIL", "no-reply@vantage.example")
	v.SetDefault("EMAIL_FROM_NAME", "Vantage")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_MINUTE", 120)
	v.SetDefault("RATE_LIMIT_FAIL_OPEN", true)

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_COLLECTOR_URL", "localhost:4317")
	v.SetDefault("TRACING_SAMPLE_RATE", 0.1)

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:           v.GetInt("SERVER_PORT"),
			ReadTimeout:    v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("SERVER_WRITE_TIMEOUT"),
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Enabled: v.GetBool("REDIS_ENABLED"),
			URL:     v.GetString("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			Issuer:           v.GetString("AUTH_ISSUER"),
			ImpersonationTTL: v.GetDuration("AUTH_IMPERSONATION_TTL"),
		},
		Storage: StorageConfig{
			GatewayURL:    v.GetString("STORAGE_GATEWAY_URL"),
			SigningSecret: v.GetString("STORAGE_SIGNING_SECRET"),
			SignTTL:       v.GetDuration("STORAGE_SIGN_TTL"),
		},
		Email: EmailConfig{
			Enabled:   v.GetBool("EMAIL_ENABLED"),
			APIKey:    v.GetString("EMAIL_API_KEY"),
			FromEmail: v.GetString("EMAIL_FROM_EMAIL"),
			FromName:  v.GetString("EMAIL_FROM_NAME"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerMinute: v.GetInt("RATE_LIMIT_REQUESTS_PER_MINUTE"),
			FailOpen:          v.GetBool("RATE_LIMIT_FAIL_OPEN"),
		},
		Tracing: TracingConfig{
			Enabled:      v.GetBool("TRACING_ENABLED"),
			CollectorURL: v.GetString("TRACING_COLLECTOR_URL"),
			SampleRate:   v.GetFloat64("TRACING_SAMPLE_RATE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.Storage.SigningSecret == "" {
		return fmt.Errorf("STORAGE_SIGNING_SECRET is required")
	}
	if c.Storage.SignTTL <= 0 {
		return fmt.Errorf("STORAGE_SIGN_TTL must be positive")
	}
	return nil
}
