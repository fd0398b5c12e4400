package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	Port string
	Env  string

	// Realtime store: channel directory, tokens, unread counters and the
	// message-created event stream.
	RedisURL string

	// Delivery log
	DatabaseURL string // Postgres; preferred when set
	SQLitePath  string // development fallback

	// Event source: "stream" (Redis Streams) or "amqp"
	EventSource string
	AMQPURL     string

	// FCM service account. Push sends are disabled when unset.
	FCMProjectID   string
	FCMClientEmail string
	FCMPrivateKey  string

	// false reproduces the mobile client's constant badge; true sets the
	// badge from the recipient's live unread count.
	LiveBadge bool

	// Authorized backend callers, callerID -> base64 Ed25519 public key.
	CallerKeys map[string]string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/deliveries.db"),
		EventSource:    getEnv("EVENT_SOURCE", "stream"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		FCMProjectID:   os.Getenv("FCM_PROJECT_ID"),
		FCMClientEmail: os.Getenv("FCM_CLIENT_EMAIL"),
		FCMPrivateKey:  os.Getenv("FCM_PRIVATE_KEY"),
		LiveBadge:      getEnv("PUSH_LIVE_BADGE", "false") == "true",
		CallerKeys:     make(map[string]string),
	}

	// Parse caller keys (comma-separated id=base64 entries)
	if keys := os.Getenv("CALLER_KEYS"); keys != "" {
		for _, entry := range strings.Split(keys, ",") {
			id, key, ok := strings.Cut(strings.TrimSpace(entry), "=")
			if ok && id != "" && key != "" {
				cfg.CallerKeys[id] = key
			}
		}
	}

	// In production, require the realtime store, push credentials and callers
	if cfg.Env == "production" {
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
		if !cfg.PushEnabled() {
			panic("FCM_PROJECT_ID, FCM_CLIENT_EMAIL and FCM_PRIVATE_KEY are required in production")
		}
		if len(cfg.CallerKeys) == 0 {
			panic("CALLER_KEYS is required in production")
		}
	}

	if cfg.EventSource == "amqp" && cfg.AMQPURL == "" {
		panic("AMQP_URL is required when EVENT_SOURCE=amqp")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// PushEnabled reports whether FCM credentials are fully configured.
func (c *Config) PushEnabled() bool {
	return c.FCMProjectID != "" && c.FCMClientEmail != "" && c.FCMPrivateKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
