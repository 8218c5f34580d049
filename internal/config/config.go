// Package config provides configuration management for the reclamos service.
//
// This package handles loading configuration from environment variables,
// validating settings, and providing sensible defaults for optional
// parameters. Configuration is loaded once at startup and remains immutable
// during runtime.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. External .env file in the working directory
//  3. Embedded defaults.env file (fallback, included in binary)
//  4. Hard-coded defaults (lowest priority)
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// embeddedEnv contains defaults.env embedded at build time.
//
// It only fills variables that are not already set, so real deployments
// override it through the environment or an external .env file.
//
//go:embed defaults.env
var embeddedEnv string

// Config holds all application configuration.
type Config struct {
	// Listening ports
	HTTPPort        string // Complaint intake API
	BotPort         string // Messaging-bot surface (/v1/messages)
	HealthCheckPort string // /health and /metrics

	// Record store
	StoreBackend  string // "file" or "redis"
	DataDir       string // Directory holding the JSON collection
	DataFile      string // File name of the JSON collection
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string // Key holding the JSON collection

	// Telegram (optional, bot disabled if token is missing)
	TelegramBotToken string
	TelegramChatID   string // Ops chat receiving intake notifications
	TelegramAPIURL   string

	// Bot behaviour
	BotKeyword string
	BotWorkers int

	// HTTP
	HTTPTimeout        time.Duration
	CORSAllowedOrigins []string

	// Debug mode - simulates Telegram API calls
	DebugMode bool
}

// LoadConfig loads configuration from environment variables with defaults.
//
// Loading process:
//  1. Try to load external .env file (does not override the environment)
//  2. Parse embedded defaults.env and set anything still missing
//  3. Read environment variables, applying hard-coded defaults
//  4. Validate
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	envMap, err := godotenv.Unmarshal(embeddedEnv)
	if err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	cfg := &Config{
		HTTPPort: getEnvOrDefault("HTTP_PORT", "3000"),
		// PORT is what the original bot deployment used for its port
		BotPort:         getEnvOrDefault("BOT_PORT", getEnvOrDefault("PORT", "3008")),
		HealthCheckPort: getEnvOrDefault("HEALTH_CHECK_PORT", "8080"),

		StoreBackend:  strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendFile)),
		DataDir:       getEnvOrDefault("DATA_DIR", "data"),
		DataFile:      getEnvOrDefault("DATA_FILE", "reclamo.json"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisKey:      getEnvOrDefault("REDIS_KEY", "reclamos:complaints"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramAPIURL:   strings.TrimRight(getEnvOrDefault("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),

		BotKeyword: getEnvOrDefault("BOT_KEYWORD", "reclamo"),
		BotWorkers: getEnvInt("BOT_WORKERS", 4),

		HTTPTimeout:        getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DebugMode: getEnvOrDefault("DEBUG_MODE", "false") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that values are present and sensible.
func (c *Config) Validate() error {
	for name, port := range map[string]string{
		"HTTP_PORT":         c.HTTPPort,
		"BOT_PORT":          c.BotPort,
		"HEALTH_CHECK_PORT": c.HealthCheckPort,
	} {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("%s must be a port number, got %q", name, port)
		}
	}

	switch c.StoreBackend {
	case BackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE cannot be empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
		if c.RedisKey == "" {
			return fmt.Errorf("REDIS_KEY cannot be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendRedis, c.StoreBackend)
	}

	if strings.TrimSpace(c.BotKeyword) == "" {
		return fmt.Errorf("BOT_KEYWORD cannot be empty")
	}
	if c.BotWorkers < 1 {
		return fmt.Errorf("BOT_WORKERS must be at least 1, got %d", c.BotWorkers)
	}

	return nil
}

// DataPath returns the location of the JSON collection for the file backend.
func (c *Config) DataPath() string {
	return filepath.Join(c.DataDir, c.DataFile)
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string, defaultValue []string) []string {
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
