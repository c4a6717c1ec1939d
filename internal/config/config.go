// Package config provides configuration for the context engine.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// App
	AppName    string `env:"APP_NAME" envDefault:"Context Engine API"`
	AppVersion string `env:"APP_VERSION" envDefault:"1.0.0"`

	// Server
	Port        int      `env:"PORT" envDefault:"8000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Uploads
	UploadDir         string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadSizeMB   int    `env:"MAX_UPLOAD_SIZE_MB" envDefault:"10"`
	MaxImageDimension int    `env:"MAX_IMAGE_DIMENSION" envDefault:"2048"`
	ImageQuality      int    `env:"IMAGE_QUALITY" envDefault:"85"`
	MaxCSVRows        int    `env:"MAX_CSV_ROWS" envDefault:"100000"`
	ParseWorkers      int    `env:"PARSE_WORKERS" envDefault:"4"`

	// LLM
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMBaseURL     string        `env:"LLM_BASE_URL"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Limits and retention
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	MaxHistoryMessages int           `env:"MAX_HISTORY_MESSAGES" envDefault:"50"`
	SessionTimeout     time.Duration `env:"SESSION_TIMEOUT" envDefault:"30m"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ParseWorkers < 1 {
		cfg.ParseWorkers = 1
	}
	return cfg, nil
}
