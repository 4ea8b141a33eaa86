package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"scentwise-server/internal/domain"
)

const (
	defaultLemonSqueezyAPIURL = "https://api.lemonsqueezy.com/v1"
	defaultGCPLocation        = "us-central1"
	defaultGeminiModel        = "gemini-2.0-flash-001"
	defaultRedisTimeoutMS     = 500
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort string
	LogLevel   string
	Production bool

	OwnerKey           string
	SubscriptionSecret string
	UsageSecret        string

	RedisURL     string
	RedisTimeout time.Duration

	LemonSqueezyAPIKey        string
	LemonSqueezyAPIURL        string
	LemonSqueezyStoreID       string
	LemonSqueezyProductID     string
	LemonSqueezyVariantID     string
	LemonSqueezyWebhookSecret string

	GCPProjectID string
	GCPLocation  string
	GeminiModel  string

	SupabaseURL string
	SupabaseKey string

	CORSAllowedOrigins []string
}

// NewConfig creates a new configuration instance from the environment.
// Missing secrets are left empty; the endpoints that need them refuse to serve.
func NewConfig() domain.Config {
	subscriptionSecret := getEnvOrDefault("SUBSCRIPTION_SECRET", "")

	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort: getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		Production: isProductionEnv(),

		OwnerKey:           getEnvOrDefault("OWNER_KEY", ""),
		SubscriptionSecret: subscriptionSecret,
		UsageSecret:        getEnvOrDefault("USAGE_SECRET", subscriptionSecret),

		RedisURL:     getEnvOrDefault("REDIS_URL", ""),
		RedisTimeout: time.Duration(getEnvInt64OrDefault("REDIS_TIMEOUT_MS", defaultRedisTimeoutMS)) * time.Millisecond,

		LemonSqueezyAPIKey:        getEnvOrDefault("LEMONSQUEEZY_API_KEY", ""),
		LemonSqueezyAPIURL:        getEnvOrDefault("LEMONSQUEEZY_API_URL", defaultLemonSqueezyAPIURL),
		LemonSqueezyStoreID:       getEnvOrDefault("LEMONSQUEEZY_STORE_ID", ""),
		LemonSqueezyProductID:     getEnvOrDefault("LEMONSQUEEZY_PRODUCT_ID", ""),
		LemonSqueezyVariantID:     getEnvOrDefault("LEMONSQUEEZY_VARIANT_ID", ""),
		LemonSqueezyWebhookSecret: getEnvOrDefault("LEMONSQUEEZY_WEBHOOK_SECRET", ""),

		GCPProjectID: getEnvOrDefault("GCP_PROJECT_ID", ""),
		GCPLocation:  getEnvOrDefault("GCP_LOCATION", defaultGCPLocation),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", defaultGeminiModel),

		SupabaseURL: getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey: getEnvOrDefault("SUPABASE_SERVICE_KEY", ""),

		CORSAllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", nil),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// IsProduction reports whether cookies must carry the Secure attribute
func (c *AppConfig) IsProduction() bool {
	return c.Production
}

func (c *AppConfig) GetOwnerKey() string {
	return c.OwnerKey
}

func (c *AppConfig) GetSubscriptionSecret() string {
	return c.SubscriptionSecret
}

// GetUsageSecret returns the key usage counters are signed with. An empty value
// disables the free trial.
func (c *AppConfig) GetUsageSecret() string {
	return c.UsageSecret
}

func (c *AppConfig) GetRedisURL() string {
	return c.RedisURL
}

func (c *AppConfig) GetRedisTimeout() time.Duration {
	return c.RedisTimeout
}

func (c *AppConfig) GetLemonSqueezyAPIKey() string {
	return c.LemonSqueezyAPIKey
}

func (c *AppConfig) GetLemonSqueezyAPIURL() string {
	return c.LemonSqueezyAPIURL
}

func (c *AppConfig) GetLemonSqueezyStoreID() string {
	return c.LemonSqueezyStoreID
}

func (c *AppConfig) GetLemonSqueezyProductID() string {
	return c.LemonSqueezyProductID
}

func (c *AppConfig) GetLemonSqueezyVariantID() string {
	return c.LemonSqueezyVariantID
}

func (c *AppConfig) GetLemonSqueezyWebhookSecret() string {
	return c.LemonSqueezyWebhookSecret
}

func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

func (c *AppConfig) GetGeminiModel() string {
	return c.GeminiModel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetCORSAllowedOrigins returns the browser origins allowed to call the API
func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func isProductionEnv() bool {
	for _, key := range []string{"APP_ENV", "NODE_ENV", "VERCEL_ENV"} {
		if strings.EqualFold(os.Getenv(key), "production") {
			return true
		}
	}
	return false
}
