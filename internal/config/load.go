package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "ATM"

// Default values applied before any file or environment source.
const (
	DefaultLogLevel          = "info"
	DefaultPinTimeoutSeconds = 10
	DefaultTickInterval      = "1s"
	DefaultQueueSize         = 64
	DefaultBaseURL           = "http://localhost:3000"
	DefaultRequestTimeout    = "10s"
	DefaultBlockedMarker     = "Kortti on estetty"
)

// DefaultWithdrawalPresets are the quick-withdrawal amounts shown to the holder.
var DefaultWithdrawalPresets = []string{"20", "40", "50", "100"}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFile behaves like Load but reads the given YAML file instead of
// searching the working directory. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("terminal.log_level", DefaultLogLevel)
	v.SetDefault("terminal.pin_timeout_seconds", DefaultPinTimeoutSeconds)
	v.SetDefault("terminal.tick_interval", DefaultTickInterval)
	v.SetDefault("terminal.queue_size", DefaultQueueSize)
	v.SetDefault("terminal.withdrawal_presets", DefaultWithdrawalPresets)
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.request_timeout", DefaultRequestTimeout)
	v.SetDefault("api.blocked_marker", DefaultBlockedMarker)
	v.SetDefault("reader.device", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// AutomaticEnv only covers keys viper already knows about; bind explicitly
	// so Unmarshal sees environment-only values.
	for _, key := range []string{
		"terminal.log_level",
		"terminal.pin_timeout_seconds",
		"terminal.tick_interval",
		"terminal.queue_size",
		"terminal.withdrawal_presets",
		"api.base_url",
		"api.request_timeout",
		"api.blocked_marker",
		"reader.device",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
