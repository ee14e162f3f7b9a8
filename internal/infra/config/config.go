package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	SignalNumber    string
	HortproEmail    string
	HortproPassword string
	HortproBaseURL  string

	CheckInterval     time.Duration // poll cadence inside a window
	KeepAliveInterval time.Duration
	SelfTestPause     time.Duration // pause between synthetic check-in and check-out

	CookiePath     string
	SignalCLIPath  string
	RecipientsPath string
	StatePath      string
	SchedulePath   string
	SelfTestPath   string

	LogLevel    string
	Environment string
	LogPath     string
}

// Load reads configuration from environment variables and the given env
// file (if present). Missing required keys are reported as errors and are
// startup-fatal for the caller; everything else falls back to a default.
func Load(envFile string) (*AppConfig, error) {
	// Attempt to load the env file. Errors are ignored if the file doesn't
	// exist. godotenv.Load will not override existing env variables.
	_ = godotenv.Load(envFile)

	cfg := &AppConfig{}

	cfg.SignalNumber = os.Getenv("SIGNAL_NUMBER")
	if cfg.SignalNumber == "" {
		return nil, fmt.Errorf("SIGNAL_NUMBER is not set")
	}

	cfg.HortproEmail = os.Getenv("HORTPRO_EMAIL")
	if cfg.HortproEmail == "" {
		return nil, fmt.Errorf("HORTPRO_EMAIL is not set")
	}

	cfg.HortproPassword = os.Getenv("HORTPRO_PASSWORD")
	if cfg.HortproPassword == "" {
		return nil, fmt.Errorf("HORTPRO_PASSWORD is not set")
	}

	cfg.HortproBaseURL = stringEnv("HORTPRO_BASE_URL", "https://elternportal.hortpro.de/api")

	checkSeconds, err := intEnv("CHECK_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.CheckInterval = time.Duration(checkSeconds) * time.Second

	keepAliveMinutes, err := intEnv("KEEP_ALIVE_INTERVAL_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	cfg.KeepAliveInterval = time.Duration(keepAliveMinutes) * time.Minute

	pauseSeconds, err := intEnv("SELF_TEST_PAUSE_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.SelfTestPause = time.Duration(pauseSeconds) * time.Second

	cfg.CookiePath = stringEnv("COOKIE_PATH", "cookie.txt")
	cfg.SignalCLIPath = stringEnv("SIGNAL_CLI_PATH", "bin/signal-cli")
	cfg.RecipientsPath = stringEnv("RECIPIENTS_PATH", "chat_ids.json")
	cfg.StatePath = stringEnv("STATE_PATH", "presences_per_users.json")
	cfg.SchedulePath = stringEnv("SCHEDULE_PATH", "scheduler.csv")
	cfg.SelfTestPath = stringEnv("SELF_TEST_PATH", "test")

	cfg.LogLevel = strings.ToLower(stringEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(stringEnv("ENVIRONMENT", "development"))
	cfg.LogPath = stringEnv("LOG_PATH", "app.log")

	return cfg, nil
}

func stringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, value)
	}
	return value, nil
}
