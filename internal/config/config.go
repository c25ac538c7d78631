package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                   string
	DBPath                 string
	LegacyPath             string
	LogLevel               string
	QuotaBytes             int64
	MaintenanceWorkerCount int
	MaintenanceQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                   envOr("ADDR", ":8080"),
		DBPath:                 envOr("DB_PATH", "file:bibliart.db"),
		LegacyPath:             envOr("LEGACY_PATH", "bibliart-artists.json"),
		LogLevel:               envOr("LOG_LEVEL", "INFO"),
		QuotaBytes:             envInt64Or("QUOTA_BYTES", 256<<20),
		MaintenanceWorkerCount: envIntOr("MAINTENANCE_WORKER_COUNT", 1),
		MaintenanceQueueSize:   envIntOr("MAINTENANCE_QUEUE_SIZE", 8),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envInt64Or(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
