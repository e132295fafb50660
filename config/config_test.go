package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "bank-payment-notifications", cfg.GatewayChannel)
	assert.Equal(t, 15*time.Minute, cfg.PaymentTimeout)
	assert.Equal(t, 24*time.Hour, cfg.TicketHoldTTL)
	assert.Equal(t, time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 30, cfg.BookingRateLimit)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("PAYMENT_TIMEOUT", "30m")

	cfg := LoadConfig()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 30*time.Minute, cfg.PaymentTimeout)
}
