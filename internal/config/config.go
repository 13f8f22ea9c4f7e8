// Package config loads runtime configuration for the scouting report service.
// Values come from the environment, with an optional .env file loaded first
// for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. DATABASE_URL is the only required setting; everything
// else has a development default.
type Config struct {
	Env         string        // application environment ("development" or "production")
	Port        string        // HTTP port to listen on
	DatabaseURL string        // PostgreSQL connection string
	RedisAddr   string        // optional host:port of a Redis server for the groups cache
	BcryptCost  int           // bcrypt cost for password hashing
	SessionTTL  time.Duration // server-side session lifetime
}

// IsProduction reports whether the service runs with production hardening
// (secure cookies, SameSite=Strict).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
// Missing DATABASE_URL is fatal because nothing works without the store.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:         getenv("ENV", "development"),
		Port:        getenv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		BcryptCost:  getenvInt("BCRYPT_COST", 12),
		SessionTTL:  time.Duration(getenvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
