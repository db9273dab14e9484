package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port              int
	Database          DatabaseConfig
	RedisAddr         string
	AccessTokenSecret []byte
	CORSOrigins       []string
	ExportCacheTTL    time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Load reads the server configuration from the environment. A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           8080,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		CORSOrigins:    []string{"http://localhost:5173"},
		ExportCacheTTL: time.Hour,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	db, err := LoadDatabase()
	if err != nil {
		return nil, err
	}
	cfg.Database = *db

	secret := os.Getenv("ACCESS_TOKEN_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET environment variable is required")
	}
	cfg.AccessTokenSecret = []byte(secret)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if v := os.Getenv("EXPORT_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPORT_CACHE_TTL %q: %w", v, err)
		}
		cfg.ExportCacheTTL = ttl
	}

	return cfg, nil
}

// LoadDatabase reads the DB_* variables. Every one of them is required.
func LoadDatabase() (*DatabaseConfig, error) {
	db := &DatabaseConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_DATABASE"),
	}
	if db.Host == "" {
		return nil, fmt.Errorf("DB_HOST environment variable is required")
	}
	if db.Port == "" {
		return nil, fmt.Errorf("DB_PORT environment variable is required")
	}
	if db.User == "" {
		return nil, fmt.Errorf("DB_USERNAME environment variable is required")
	}
	if db.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if db.Name == "" {
		return nil, fmt.Errorf("DB_DATABASE environment variable is required")
	}
	return db, nil
}
