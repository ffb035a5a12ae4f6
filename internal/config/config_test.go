package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/growlify")
	t.Setenv("JWT_SECRET", "a-very-long-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "growlify_session", cfg.CookieName)
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.RequireSubscription)
	assert.Equal(t, "America/Sao_Paulo", cfg.ReportTimezone)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "growlify.events", cfg.AMQP.Exchange)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.AMQP.Enabled())
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REQUIRE_SUBSCRIPTION", "true")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_URL", "https://app.growlify.example/")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("S3_BUCKET", "exports")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.RequireSubscription)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "https://app.growlify.example", cfg.AppURL)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Validation(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "a-very-long-secret")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("short secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/growlify")
		t.Setenv("JWT_SECRET", "short")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bad timezone", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "REPORT_TIMEZONE")
	})
}

func TestReportLocation(t *testing.T) {
	cfg := &Config{ReportTimezone: "America/Sao_Paulo"}
	assert.Equal(t, "America/Sao_Paulo", cfg.ReportLocation().String())

	cfg.ReportTimezone = "nope"
	assert.Equal(t, "UTC", cfg.ReportLocation().String())
}
