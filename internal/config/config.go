package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	SuggestBaseURL    string
	IngestWorkerCount int
	IngestQueueSize   int
	LeaderboardLimit  int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:studytrack.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		SuggestBaseURL:    envOr("SUGGEST_BASE_URL", ""),
		IngestWorkerCount: envIntOr("INGEST_WORKER_COUNT", 2),
		IngestQueueSize:   envIntOr("INGEST_QUEUE_SIZE", 32),
		LeaderboardLimit:  envIntOr("LEADERBOARD_LIMIT", 25),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.IngestWorkerCount < 1 {
		problems = append(problems, "INGEST_WORKER_COUNT must be at least 1")
	}
	if c.IngestQueueSize < 1 {
		problems = append(problems, "INGEST_QUEUE_SIZE must be at least 1")
	}
	if c.LeaderboardLimit < 1 {
		problems = append(problems, "LEADERBOARD_LIMIT must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
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
