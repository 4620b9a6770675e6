// Package config loads configuration from the environment, with an optional
// .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	APIBaseURL string `env:"GROCER_API_URL" default:"http://localhost:8000/api"`
	DataDir    string `env:"GROCER_DATA_DIR"`
	LogLevel   string `env:"LOG_LEVEL" default:"warn"`
	LogFormat  string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".grocer")
	}
	return &cfg, nil
}
