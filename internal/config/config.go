package config

import "time"

// Config holds all terminal configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Terminal TerminalConfig `mapstructure:"terminal" validate:"required"`
	API      APIConfig      `mapstructure:"api"      validate:"required"`
	Reader   ReaderConfig   `mapstructure:"reader"`
}

// TerminalConfig contains the session controller and logging settings.
type TerminalConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// PinTimeoutSeconds is the countdown budget of one PIN entry attempt.
	PinTimeoutSeconds int `mapstructure:"pin_timeout_seconds" validate:"required,gt=0"`

	// TickInterval is the length of one countdown unit.
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required,gt=0"`

	// QueueSize bounds the controller's event queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// WithdrawalPresets are the fixed withdrawal amounts offered before free-form entry.
	WithdrawalPresets []string `mapstructure:"withdrawal_presets" validate:"dive,numeric"`
}

// APIConfig contains the remote banking API settings.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"        validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0"`

	// BlockedMarker is the text whose presence in any error message signals a blocked card.
	BlockedMarker string `mapstructure:"blocked_marker" validate:"required"`
}

// ReaderConfig selects the card reader input.
type ReaderConfig struct {
	// Device is a path the reader writes one identifier per line to.
	// Empty means identifiers are typed on the console.
	Device string `mapstructure:"device"`
}
