// Package config loads the fixed configuration surface: model selection,
// generation settings, stage timeout, retry budget and server port. Values
// come from an optional YAML file overridden by environment variables and
// are never mutated at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string
	Env             string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	StageTimeout    time.Duration
	MaxRetries      int
}

func defaults() *Config {
	return &Config{
		Port:            ":8080",
		Env:             "local",
		Model:           "gemini-2.5-flash",
		Temperature:     0.2,
		MaxOutputTokens: 8192,
		StageTimeout:    90 * time.Second,
		MaxRetries:      1,
	}
}

// fileConfig is the YAML shape; durations are written as strings ("90s").
type fileConfig struct {
	Port            string   `yaml:"port"`
	Env             string   `yaml:"env"`
	Model           string   `yaml:"model"`
	Temperature     *float64 `yaml:"temperature"`
	MaxOutputTokens *int     `yaml:"max_output_tokens"`
	StageTimeout    string   `yaml:"stage_timeout"`
	MaxRetries      *int     `yaml:"max_retries"`
}

// Load reads PRINCIPIA_CONFIG (YAML, optional), then applies environment
// overrides. A .env file is honored the same way as in production env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("PRINCIPIA_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		applyFile(cfg, fc)
	}
	applyEnv(cfg)

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if v := strings.TrimSpace(fc.Port); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(fc.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(fc.Model); v != "" {
		cfg.Model = v
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.MaxOutputTokens != nil && *fc.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = *fc.MaxOutputTokens
	}
	if v := strings.TrimSpace(fc.StageTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.StageTimeout = d
		}
	}
	if fc.MaxRetries != nil && *fc.MaxRetries >= 0 {
		cfg.MaxRetries = *fc.MaxRetries
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("PRINCIPIA_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("PRINCIPIA_TEMPERATURE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("PRINCIPIA_MAX_OUTPUT_TOKENS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxOutputTokens = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("PRINCIPIA_STAGE_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.StageTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("PRINCIPIA_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
}
