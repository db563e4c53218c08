// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devSecretKey is only used when JWT_SECRET_KEY is unset.
const devSecretKey = "dev-secret-key-change-in-production"

// Config holds application configuration.
type Config struct {
	Port           string
	DBPath         string
	DBDebug        bool
	JWTSecretKey   string
	JWTIssuer      string
	TokenLifetime  time.Duration
	AllowedOrigins string
	RedisAddr      string
	RedisPassword  string
	RedisChannel   string
}

// Default returns the configuration used when no environment overrides are present.
func Default() Config {
	return Config{
		Port:           "3000",
		DBPath:         "tasks.db",
		JWTSecretKey:   devSecretKey,
		JWTIssuer:      "task-tracker",
		TokenLifetime:  30 * 24 * time.Hour,
		AllowedOrigins: "*",
		RedisChannel:   "task-notifications",
	}
}

// Load reads a .env file if one exists in the working directory or its parent,
// then applies environment variables on top of the defaults.
func Load() (Config, error) {
	loadDotenv()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	cfg.DBDebug = getenv("DB_DEBUG") == "true"
	if v := getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWTSecretKey = v
	}
	if v := getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := getenv("TOKEN_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOKEN_LIFETIME %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_LIFETIME %q: must be positive", v)
		}
		cfg.TokenLifetime = d
	}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = v
	}
	cfg.RedisAddr = strings.TrimSpace(getenv("REDIS_ADDR"))
	cfg.RedisPassword = getenv("REDIS_PASSWORD")
	if v := getenv("REDIS_CHANNEL"); v != "" {
		cfg.RedisChannel = v
	}

	return cfg, nil
}

// UsingDevSecret reports whether the built-in development signing key is in use.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecretKey == devSecretKey
}

// RelayEnabled reports whether cross-instance notification relay is configured.
func (c Config) RelayEnabled() bool {
	return c.RedisAddr != ""
}

func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}
