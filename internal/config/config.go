package config

import (
	"errors"
	"os"
	"strconv"
)

// ErrMissingJWTSecret is returned by Load when no signing secret is
// configured in a production environment.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set when APP_ENV=production")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string
	JWTSecret  string
}

// Load builds Config from environment with development defaults.
// The JWT signing secret has no production fallback: a production process
// without JWT_SECRET must fail at startup rather than sign tokens with a
// well-known key.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
