package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	StorageDriver          string
	DatabaseURL            string
	AutoMigrate            bool
	RedisURL               string // optional; events are not published to Redis when empty
	TelegramToken          string // optional; the staff bot is disabled when empty
	StaffTelegramIDs       []int64
	ManagerTelegramID      int64
	LogLevel               string
	Environment            string
	MetricsAddr            string
	CronSpecDeadlineDigest string
	CronSpecReviewBacklog  string
	DigestHorizonDays      int
	ReviewBacklogDays      int
	DefaultScholarshipType string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.StorageDriver = strings.ToLower(getOr("STORAGE_DRIVER", StoragePostgres))
	switch cfg.StorageDriver {
	case StoragePostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", cfg.StorageDriver, StoragePostgres, StorageMemory)
	}

	cfg.AutoMigrate, err = strconv.ParseBool(getOr("AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_MIGRATE: %w", err)
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	cfg.StaffTelegramIDs, err = parseIDList(os.Getenv("STAFF_TELEGRAM_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid STAFF_TELEGRAM_IDS: %w", err)
	}
	if cfg.TelegramToken != "" && len(cfg.StaffTelegramIDs) == 0 {
		return nil, fmt.Errorf("STAFF_TELEGRAM_IDS is not set")
	}

	if managerIDStr := os.Getenv("MANAGER_TELEGRAM_ID"); managerIDStr != "" {
		cfg.ManagerTelegramID, err = strconv.ParseInt(managerIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MANAGER_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(getOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getOr("ENVIRONMENT", "development"))
	cfg.MetricsAddr = getOr("METRICS_ADDR", ":9102")

	cfg.CronSpecDeadlineDigest = getOr("CRON_SPEC_DEADLINE_DIGEST", "0 9 * * *") // Default: 9 AM daily
	cfg.CronSpecReviewBacklog = getOr("CRON_SPEC_REVIEW_BACKLOG", "0 10 * * 1")  // Default: 10 AM on Mondays

	if cfg.DigestHorizonDays, err = positiveInt("DIGEST_HORIZON_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.ReviewBacklogDays, err = positiveInt("REVIEW_BACKLOG_DAYS", 14); err != nil {
		return nil, err
	}

	cfg.DefaultScholarshipType = strings.TrimSpace(getOr("DEFAULT_SCHOLARSHIP_TYPE", "GENERAL"))

	return cfg, nil
}

func getOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

// parseIDList reads a comma separated list of Telegram IDs.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
