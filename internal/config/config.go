// Package config loads process configuration from an optional .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the full runtime configuration of the API process.
type Config struct {
	Port            string
	ShutdownTimeout time.Duration

	// Storage
	StoreBackend string
	DatabaseURL  string
	SeedDemoData bool

	Gemini  GeminiConfig
	Reorder ReorderConfig
	Log     LogConfig
}

// GeminiConfig holds the generative model endpoint settings.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ReorderConfig tunes the reorder suggestion flow.
type ReorderConfig struct {
	Timeout             time.Duration
	MaxRetries          int
	DefaultLeadTimeDays int
}

// LogConfig mirrors logger.Config without importing it.
type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("store_backend", BackendMemory)
	v.SetDefault("database_url", "")
	v.SetDefault("seed_demo_data", false)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini_model", "gemini-1.5-flash-latest")
	v.SetDefault("reorder_timeout", "30s")
	v.SetDefault("reorder_max_retries", 2)
	v.SetDefault("reorder_default_lead_time_days", 7)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_output", "stdout")
	v.SetDefault("log_file", "logs/stockroom.log")
}

// Load reads .env files (if present) into the environment and builds a Config.
// A missing .env is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:            v.GetString("app_port"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		StoreBackend:    strings.ToLower(v.GetString("store_backend")),
		DatabaseURL:     v.GetString("database_url"),
		SeedDemoData:    v.GetBool("seed_demo_data"),
		Gemini: GeminiConfig{
			APIKey:  v.GetString("gemini_api_key"),
			BaseURL: strings.TrimRight(v.GetString("gemini_base_url"), "/"),
			Model:   v.GetString("gemini_model"),
		},
		Reorder: ReorderConfig{
			Timeout:             v.GetDuration("reorder_timeout"),
			MaxRetries:          v.GetInt("reorder_max_retries"),
			DefaultLeadTimeDays: v.GetInt("reorder_default_lead_time_days"),
		},
		Log: LogConfig{
			Level:    v.GetString("log_level"),
			Format:   v.GetString("log_format"),
			Output:   v.GetString("log_output"),
			FilePath: v.GetString("log_file"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Reorder.Timeout <= 0 {
		return errors.New("REORDER_TIMEOUT must be positive")
	}
	if c.Reorder.MaxRetries < 0 {
		return errors.New("REORDER_MAX_RETRIES must not be negative")
	}
	if c.Reorder.DefaultLeadTimeDays <= 0 {
		return errors.New("REORDER_DEFAULT_LEAD_TIME_DAYS must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }
