/*
Package config reads the service settings from the environment. A .env file in the
working directory is loaded first when present.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	DatasetSourceFile     = "file"
	DatasetSourcePostgres = "postgres"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds every setting the API needs at startup.
type Config struct {
	Port     int
	AppEnv   string
	LogLevel string

	// DatasetSource selects where foods, conditions and verdicts come from.
	DatasetSource string
	DatasetPath   string
	Database      DatabaseConfig

	SessionBackend  string
	SessionTTL      time.Duration
	SessionCapacity int
	SessionSecret   string
	Redis           RedisConfig

	GeminiAPIKey string
	GeminiModel  string
}

// DatabaseConfig uses the same BLUEPRINT_DB_* variables as the rest of the platform.
type DatabaseConfig struct {
	Database string
	Username string
	Password string
	Host     string
	Port     string
	Schema   string
}

// DSN builds the pgx connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.Username, d.Password, d.Host, d.Port, d.Database)
	if d.Schema != "" {
		dsn += "&search_path=" + d.Schema
	}
	return dsn
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DatasetSource:  strings.ToLower(getEnv("DATASET_SOURCE", DatasetSourceFile)),
		DatasetPath:    getEnv("DATASET_PATH", "food_data.json"),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		Database: DatabaseConfig{
			Database: os.Getenv("BLUEPRINT_DB_DATABASE"),
			Username: os.Getenv("BLUEPRINT_DB_USERNAME"),
			Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Host:     os.Getenv("BLUEPRINT_DB_HOST"),
			Port:     getEnv("BLUEPRINT_DB_PORT", "5432"),
			Schema:   os.Getenv("BLUEPRINT_DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SessionCapacity, err = getInt("SESSION_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.DatasetSource {
	case DatasetSourceFile, DatasetSourcePostgres:
	default:
		return fmt.Errorf("DATASET_SOURCE must be %q or %q, got %q", DatasetSourceFile, DatasetSourcePostgres, c.DatasetSource)
	}
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be positive, got %d", c.SessionCapacity)
	}
	if c.DatasetSource == DatasetSourcePostgres && c.Database.Host == "" {
		return fmt.Errorf("BLUEPRINT_DB_HOST must be set when DATASET_SOURCE=%s", DatasetSourcePostgres)
	}
	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return v, nil
}
