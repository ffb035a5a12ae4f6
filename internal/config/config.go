package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // REPORT_TIMEZONE must resolve in minimal images

	"github.com/joho/godotenv"
)

// Minimum session secret length
const minJWTSecretLength = 12

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL   string
	RunMigrations bool

	// Auth
	JWTSecret  string
	CookieName string

	// Server
	Port        string
	CORSOrigins []string
	Env         string
	AppURL      string

	// Billing
	RequireSubscription bool

	// Reports
	ReportTimezone string

	SMTP  SMTPConfig
	Redis RedisConfig
	AMQP  AMQPConfig

	// S3 Storage
	S3 S3Config
}

// SMTPConfig holds outgoing mail configuration. Mail is disabled without a host.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether an SMTP server is configured
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

// RedisConfig holds the optional shared rate-limit store
type RedisConfig struct {
	Addr     string
	Password string
}

// Enabled reports whether Redis is configured
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// AMQPConfig holds the optional event broker
type AMQPConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether a broker is configured
func (c AMQPConfig) Enabled() bool { return c.URL != "" }

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether export archiving is configured
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		CookieName:          getEnv("COOKIE_NAME", "growlify_session"),
		Port:                getEnv("PORT", "8080"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Env:                 getEnv("ENV", "development"),
		AppURL:              strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/"),
		RequireSubscription: getEnvBool("REQUIRE_SUBSCRIPTION", false),
		ReportTimezone:      getEnv("REPORT_TIMEZONE", "America/Sao_Paulo"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("MAIL_FROM", "Growlify <no-reply@growlify.app>"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "growlify.events"),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ReportLocation resolves ReportTimezone, falling back to UTC
func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
