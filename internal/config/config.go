package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the easydata CLI.
type Config struct {
	// APIKey authenticates against the EasyData service. Commands that
	// need one fail when it is empty and no -key flag was given.
	APIKey string `mapstructure:"api_key"`

	// BaseURL is the service root (configurable for testing)
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds each HTTP request
	Timeout time.Duration `mapstructure:"timeout"`

	// SaveDir, when set, receives a copy of every raw payload
	SaveDir string `mapstructure:"save_dir"`

	// DBPath, when set, is the SQLite file observations are archived in
	DBPath string `mapstructure:"db_path"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	// Env picks the log handler: a development value gets colored text,
	// anything else JSON
	Env string `mapstructure:"env"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file
// values.
//
// Expected environment variables:
//   - EASYDATA_API_KEY
//   - EASYDATA_BASE_URL (optional, defaults to production)
//   - EASYDATA_TIMEOUT (optional, defaults to 30s)
//   - EASYDATA_SAVE_DIR (optional, empty disables payload archiving)
//   - EASYDATA_DB_PATH (optional, empty disables the SQLite archive)
//   - EASYDATA_LOG_LEVEL (optional, defaults to info)
//   - EASYDATA_ENV (optional, defaults to development)
func Load() (*Config, error) {
	v := viper.New()

	// Set up environment variable support
	v.SetEnvPrefix("easydata")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("base_url", "https://easydata.sbp.org.pk")
	v.SetDefault("timeout", "30s")
	v.SetDefault("log_level", "info")
	v.SetDefault("env", "development")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.easydata")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	// Bind environment variables
	v.BindEnv("api_key", "EASYDATA_API_KEY")
	v.BindEnv("base_url", "EASYDATA_BASE_URL")
	v.BindEnv("timeout", "EASYDATA_TIMEOUT")
	v.BindEnv("save_dir", "EASYDATA_SAVE_DIR")
	v.BindEnv("db_path", "EASYDATA_DB_PATH")
	v.BindEnv("log_level", "EASYDATA_LOG_LEVEL")
	v.BindEnv("env", "EASYDATA_ENV")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}
