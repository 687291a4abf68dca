package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseDSN      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Health-platform aggregator API (change feed + record reads).
	HealthAPIBaseURL   string
	HealthClientID     string
	HealthClientSecret string
	HealthTokenURL     string

	// Cloud remote store (PostgREST-style REST over the shared database).
	RemoteStoreURL    string
	RemoteStoreAPIKey string

	// Google Cloud push channel for "new data available" pings.
	GoogleProjectID     string
	GooglePubSubTopic   string
	GoogleCredentials   string
	FirebaseCredentials string

	// Sync tuning.
	SyncInterval     time.Duration
	SyncBatchSize    int
	SyncMaxPollPages int
	SyncRetryCeiling int
	SyncRetention    time.Duration

	// Risk alert tuning.
	RiskAlertInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=migralog port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),

		HealthAPIBaseURL:   getEnv("HEALTH_API_BASE_URL", ""),
		HealthClientID:     getEnv("HEALTH_CLIENT_ID", ""),
		HealthClientSecret: getEnv("HEALTH_CLIENT_SECRET", ""),
		HealthTokenURL:     getEnv("HEALTH_TOKEN_URL", ""),

		RemoteStoreURL:    getEnv("REMOTE_STORE_URL", ""),
		RemoteStoreAPIKey: getEnv("REMOTE_STORE_API_KEY", ""),

		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic:   getEnv("GOOGLE_PUBSUB_TOPIC", "health-data-updates"),
		GoogleCredentials:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		SyncInterval:     getDuration("SYNC_INTERVAL", 15*time.Minute),
		SyncBatchSize:    getInt("SYNC_BATCH_SIZE", 200),
		SyncMaxPollPages: getInt("SYNC_MAX_POLL_PAGES", 50),
		SyncRetryCeiling: getInt("SYNC_RETRY_CEILING", 8),
		SyncRetention:    getDuration("SYNC_RETENTION", 30*24*time.Hour),

		RiskAlertInterval: getDuration("RISK_ALERT_INTERVAL", 6*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
