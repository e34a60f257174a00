package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "RUN_LOCAL", "BASE_URL", "STRIPE_SECRET_KEY", "PAYMENTS_SANDBOX", "IDEMPOTENCY_TTL_HOURS", "CART_TTL_HOURS", "TRACKING_WINDOW", "WORKER_MAX_ATTEMPTS", "ORDERS_TABLE", "IDEMPOTENCY_TABLE", "ORDERS_QUEUE_URL"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Server.RunLocal)
	assert.Equal(t, "http://localhost:3000", cfg.Server.BaseURL)
	assert.Equal(t, 48*time.Hour, cfg.Dynamo.IdempotencyTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Redis.CartTTL)
	assert.Equal(t, 100, cfg.Tracking.Window)
	assert.Equal(t, 10, cfg.Worker.MaxAttempts)
	assert.False(t, cfg.UseSandbox())
	assert.ErrorIs(t, cfg.Validate(), ErrMissingStripeKey)
	assert.False(t, cfg.AWSEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RUN_LOCAL", "true")
	t.Setenv("BASE_URL", "https://carpets.example/")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("PAYMENTS_SANDBOX", "")
	t.Setenv("ORDERS_TABLE", "orders")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TRACKING_WINDOW", "not-a-number")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.RunLocal)
	assert.Equal(t, "https://carpets.example", cfg.Server.BaseURL)
	assert.False(t, cfg.UseSandbox())
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.AWSEnabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 100, cfg.Tracking.Window)
}

func TestValidate_SandboxIsOptIn(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("PAYMENTS_SANDBOX", "true")

	cfg := Load()
	assert.True(t, cfg.UseSandbox())
	assert.NoError(t, cfg.Validate())

	cfg.Payments.Sandbox = false
	assert.False(t, cfg.UseSandbox())
	assert.ErrorIs(t, cfg.Validate(), ErrMissingStripeKey)
}
