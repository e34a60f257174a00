// Package config reads service settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Payments    PaymentsConfig
	Dynamo      DynamoConfig
	Queue       QueueConfig
	Redis       RedisConfig
	AWS         AWSConfig
	PricingFile string
	Tracking    TrackingConfig
	Worker      WorkerConfig
}

type ServerConfig struct {
	Port     int
	RunLocal bool
	BaseURL  string // storefront origin for checkout redirects
}

type PaymentsConfig struct {
	StripeSecretKey string
	Sandbox         bool
}

type DynamoConfig struct {
	IdempotencyTable string
	OrdersTable      string
	IdempotencyTTL   time.Duration
}

type QueueConfig struct {
	OrdersQueueURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

// AWSConfig holds AWS settings not already read by the SDK loader
// (AWS_REGION and AWS_ENDPOINT_OVERRIDE are read in internal/aws).
type AWSConfig struct {
	MetricsNamespace string
}

type TrackingConfig struct {
	Window int
}

type WorkerConfig struct {
	MaxAttempts int
}

// Load reads the configuration, falling back to development defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnvInt("PORT", 8080),
			RunLocal: getEnvBool("RUN_LOCAL", false),
			BaseURL:  strings.TrimRight(getEnvString("BASE_URL", "http://localhost:3000"), "/"),
		},
		Payments: PaymentsConfig{
			StripeSecretKey: getEnvString("STRIPE_SECRET_KEY", ""),
			Sandbox:         getEnvBool("PAYMENTS_SANDBOX", false),
		},
		Dynamo: DynamoConfig{
			IdempotencyTable: getEnvString("IDEMPOTENCY_TABLE", ""),
			OrdersTable:      getEnvString("ORDERS_TABLE", ""),
			IdempotencyTTL:   time.Duration(getEnvInt("IDEMPOTENCY_TTL_HOURS", 48)) * time.Hour,
		},
		Queue: QueueConfig{
			OrdersQueueURL: getEnvString("ORDERS_QUEUE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", ""),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CartTTL:  time.Duration(getEnvInt("CART_TTL_HOURS", 30*24)) * time.Hour,
		},
		AWS: AWSConfig{
			MetricsNamespace: getEnvString("METRICS_NAMESPACE", "storefront"),
		},
		PricingFile: getEnvString("PRICING_FILE", ""),
		Tracking: TrackingConfig{
			Window: getEnvInt("TRACKING_WINDOW", 100),
		},
		Worker: WorkerConfig{
			MaxAttempts: getEnvInt("WORKER_MAX_ATTEMPTS", 10),
		},
	}
}

// ErrMissingStripeKey is returned by Validate when no payment provider is
// configured.
var ErrMissingStripeKey = errors.New("STRIPE_SECRET_KEY is required unless PAYMENTS_SANDBOX=true")

// UseSandbox reports whether the in-memory payment gateway was asked for.
func (c *Config) UseSandbox() bool {
	return c.Payments.Sandbox
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if !c.Payments.Sandbox && c.Payments.StripeSecretKey == "" {
		return ErrMissingStripeKey
	}
	return nil
}

// AWSEnabled reports whether any AWS-backed component is configured.
func (c *Config) AWSEnabled() bool {
	return c.Dynamo.IdempotencyTable != "" || c.Dynamo.OrdersTable != "" || c.Queue.OrdersQueueURL != ""
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
