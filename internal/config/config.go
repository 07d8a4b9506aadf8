package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Bobby-coder/CodeNation/pkg/config"
	"github.com/Bobby-coder/CodeNation/pkg/database"
)

// defaultSecret marks a secret that was not explicitly configured. Rejected
// outside development.
const defaultSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"codenation"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"codenation_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"codenation_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis session cache
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Token signing secrets; one per signing domain
	AccessSecret     string `env:"ACCESS_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	RefreshSecret    string `env:"REFRESH_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	ActivationSecret string `env:"ACTIVATION_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	ResetSecret      string `env:"RESET_PASSWORD_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Token lifetimes
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"5m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"72h"`
	ActivationTokenTTL time.Duration `env:"ACTIVATION_TOKEN_TTL" envDefault:"5m"`
	ResetTokenTTL      time.Duration `env:"RESET_PASSWORD_TOKEN_TTL" envDefault:"5m"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST" envDefault:""`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_MAIL" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@codenation.dev"`

	// Password reset link base; token is appended as the last path segment
	ResetLinkBase string `env:"RESET_PASSWORD_LINK_BASE" envDefault:"http://localhost:8000/reset-password"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Notification cleanup job
	CleanupInterval  time.Duration `env:"NOTIFICATION_CLEANUP_INTERVAL" envDefault:"1h"`
	CleanupRetention time.Duration `env:"NOTIFICATION_RETENTION" envDefault:"720h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require explicitly set, strong secrets.
	if cfg.Environment != "development" {
		secrets := map[string]string{
			"ACCESS_TOKEN_SECRET":     cfg.AccessSecret,
			"REFRESH_TOKEN_SECRET":    cfg.RefreshSecret,
			"ACTIVATION_TOKEN_SECRET": cfg.ActivationSecret,
			"RESET_PASSWORD_SECRET":   cfg.ResetSecret,
		}
		for name, value := range secrets {
			if value == defaultSecret {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(value) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(value))
			}
		}
	}

	return cfg, nil
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPass,
		DBName:   c.PostgresDB,
		SSLMode:  c.PostgresSSL,
	}
}

// Redis returns the session cache configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
