package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultCookieKey is only acceptable outside production.
const DefaultCookieKey = "ampu-signing-secret"

type Config struct {
	// Application
	AppName    string `env:"APP_NAME" envDefault:"Momager"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"` // 'development' or 'production'
	AppURL     string `env:"APP_URL" envDefault:"http://localhost:8086"`
	Port       string `env:"PORT" envDefault:"8086"`
	ClientPath string `env:"CLIENT_PATH" envDefault:"client"`

	// Database (sqlite for local development, mysql in production, pgx optional)
	DBDriver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBConnection string `env:"DB_CONNECTION" envDefault:"./data/momager.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"`
	SQLTrace     bool   `env:"SQL_TRACE" envDefault:"false"`

	// Sessions
	CookieKey              string        `env:"COOKIE_KEY" envDefault:"ampu-signing-secret"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"15m"`
	PasswordResetExpiry    time.Duration `env:"PASSWORD_RESET_EXPIRY" envDefault:"1h"`

	// Email
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"noreply@example.com"`
	ResendAPIKey string `env:"RESEND_API_KEY"`

	// Weather
	WeatherAPIURL   string        `env:"WEATHER_API_URL" envDefault:"https://api.open-meteo.com/v1/forecast?latitude=%s&longitude=%s&current_weather=true&daily=temperature_2m_max,temperature_2m_min,weathercode&timezone=auto"`
	WeatherCacheTTL time.Duration `env:"WEATHER_CACHE_TTL" envDefault:"1h"`

	// Content: "fs" reads CONTENT_PATH, "s3" reads the S3 bucket under S3_PREFIX
	ContentSource string `env:"CONTENT_SOURCE" envDefault:"fs"`
	ContentPath   string `env:"CONTENT_PATH" envDefault:"content/topics"`

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Endpoint  string `env:"S3_ENDPOINT"` // Optional: for non-AWS providers
	S3Prefix    string `env:"S3_PREFIX" envDefault:"topics"`

	// Rate limiting (optional shared store, in-memory when empty)
	RedisURL string `env:"REDIS_URL"`
	// Proxies (CIDRs or addresses) whose X-Forwarded-For is believed
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Observability (optional)
	SentryDSN string `env:"SENTRY_DSN"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{}
	err = env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppEnv != "development" && c.AppEnv != "production" {
		return fmt.Errorf("APP_ENV must be 'development' or 'production', got %q", c.AppEnv)
	}

	switch c.DBDriver {
	case "sqlite", "pgx", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.ContentSource {
	case "fs":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("CONTENT_SOURCE=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported CONTENT_SOURCE %q", c.ContentSource)
	}

	if c.IsProduction() {
		return validateProduction(c)
	}
	return nil
}

// validateProduction ensures secrets and required services are configured for production deployments.
// Development allows email to log instead of sending.
func validateProduction(c *Config) error {
	if c.ResendAPIKey == "" {
		return errors.New("production deployment requires RESEND_API_KEY")
	}
	if c.CookieKey == "" || c.CookieKey == DefaultCookieKey {
		return errors.New("production deployment requires a non-default COOKIE_KEY")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:       c.AppName,
		AppEnv:        c.AppEnv,
		AppURL:        c.AppURL,
		Port:          c.Port,
		EmailFrom:     c.EmailFrom,
		ContentSource: c.ContentSource,
		S3Endpoint:    c.S3Endpoint,
	}
}
