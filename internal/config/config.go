// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the simulator.
type Config struct {
	DBPath   string  `env:"WARSIM_DB_PATH" envDefault:"data/warmarch.db"`
	APIPort  int     `env:"WARSIM_API_PORT" envDefault:"8080"`
	AdminKey string  `env:"WARSIM_ADMIN_KEY"`
	Seed     int64   `env:"WARSIM_SEED" envDefault:"42"`
	Speed    float64 `env:"WARSIM_SPEED" envDefault:"1"`
	LogLevel string  `env:"WARSIM_LOG_LEVEL" envDefault:"info"`
}

// Load reads config from a .env file (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured log level string to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
