package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the configuration API server.
type Config struct {
	ServerPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string // empty disables the catalog cache
	RedisPassword string
	RedisDB       int
	CatalogTTL    time.Duration

	NatsURL string // empty disables job event publishing

	SchedulerEnabled     bool
	LauncherPollInterval time.Duration
}

// Load reads configuration from the environment, falling back to defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8090"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "airbyte_config"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CatalogTTL:    getEnvDuration("CATALOG_CACHE_TTL", 15*time.Minute),

		NatsURL: getEnv("NATS_URL", ""),

		SchedulerEnabled:     getEnvBool("SCHEDULER_ENABLED", true),
		LauncherPollInterval: getEnvDuration("LAUNCHER_POLL_INTERVAL", 2*time.Second),
	}

	log.Printf("Configuration:")
	log.Printf("  SERVER_PORT: %s", cfg.ServerPort)
	log.Printf("  DB_HOST: %s, DB_NAME: %s", cfg.DBHost, cfg.DBName)
	log.Printf("  REDIS_ADDR: %q (catalog cache %s)", cfg.RedisAddr, enabledWord(cfg.RedisAddr != ""))
	log.Printf("  NATS_URL: %q (job events %s)", cfg.NatsURL, enabledWord(cfg.NatsURL != ""))
	log.Printf("  SCHEDULER_ENABLED: %v", cfg.SchedulerEnabled)

	return cfg
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Invalid boolean for %s: %q, using default %v", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s: %q, using default %s", key, value, fallback)
	}
	return fallback
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
