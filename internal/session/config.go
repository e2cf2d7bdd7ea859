package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/atm-session/internal/config"
	"github.com/shopspring/decimal"
)

// Config holds the controller's tunables.
type Config struct {
	// PinTimeout is the PIN entry budget in countdown units.
	PinTimeout int

	// TickInterval is the length of one countdown unit.
	TickInterval time.Duration

	// WithdrawalPresets are the fixed withdrawal amounts, selected 1-based.
	WithdrawalPresets []decimal.Decimal
}

// ConfigFrom builds a Config from the terminal settings.
func ConfigFrom(cfg config.TerminalConfig) (Config, error) {
	presets := make([]decimal.Decimal, 0, len(cfg.WithdrawalPresets))
	for _, raw := range cfg.WithdrawalPresets {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid withdrawal preset %q: %w", raw, err)
		}
		if !amount.IsPositive() {
			return Config{}, fmt.Errorf("withdrawal preset %q must be positive", raw)
		}
		presets = append(presets, amount)
	}

	c := Config{
		PinTimeout:        cfg.PinTimeoutSeconds,
		TickInterval:      cfg.TickInterval,
		WithdrawalPresets: presets,
	}
	return c, c.validate()
}

func (c Config) validate() error {
	if c.PinTimeout <= 0 {
		return errors.New("pin timeout must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("tick interval must be positive")
	}
	return nil
}
