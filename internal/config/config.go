package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	Timezone  *time.Location

	DB       DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Session  SessionConfig
	Chat     ChatConfig
	Carriers CarrierSettings
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains object storage configuration for uploaded paperwork.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// SessionConfig controls bearer session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// ChatConfig controls the per-document chat websocket.
type ChatConfig struct {
	TicketTTL      time.Duration
	AllowedOrigins []string
}

// CarrierSettings maps a carrier name to the document fields it requires
// at intake beyond the common ones.
type CarrierSettings map[string][]string

// RequiredFields returns the extra intake fields for carrier.
func (s CarrierSettings) RequiredFields(carrier string) []string {
	return s[carrier]
}

// DefaultCarrierSettings is used when CARRIER_SETTINGS_FILE is not set.
func DefaultCarrierSettings() CarrierSettings {
	return CarrierSettings{
		"SKT":  {},
		"KT":   {},
		"LGU":  {"customerEmail"},
		"MVNO": {},
	}
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 (document scans)
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-northeast-2"),
		Bucket:          getEnv("S3_BUCKET", "activation-documents"),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Chat.TicketTTL, err = parseDurationEnv("CHAT_TICKET_TTL", "60s"); err != nil {
		return nil, fmt.Errorf("invalid CHAT_TICKET_TTL: %w", err)
	}
	cfg.Chat.AllowedOrigins = splitList(getEnv("CHAT_ALLOWED_ORIGINS", ""))

	if cfg.Carriers, err = loadCarrierSettings(getEnv("CARRIER_SETTINGS_FILE", "")); err != nil {
		return nil, err
	}

	// DB parameters are required.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// JWT_SECRET signs chat tickets
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for chat tickets")
	}

	return cfg, nil
}

// loadCarrierSettings reads a JSON object of carrier -> required field names.
func loadCarrierSettings(path string) (CarrierSettings, error) {
	if path == "" {
		return DefaultCarrierSettings(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CARRIER_SETTINGS_FILE: %w", err)
	}
	settings := CarrierSettings{}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("parse CARRIER_SETTINGS_FILE: %w", err)
	}
	return settings, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
