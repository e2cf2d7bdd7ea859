// Package main implements the entry point for the card terminal: it reads
// cards from a reader, captures PINs on a console keypad and runs account
// operations against the remote banking API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/atm-session/internal/config"
	"github.com/phrazzld/atm-session/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("Terminal failed: %v", err)
	}
}

// run loads configuration, sets up logging and runs the terminal until the
// console input ends or the process is signalled.
func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.Terminal)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Terminal configuration loaded",
		"log_level", cfg.Terminal.LogLevel,
		"api_base_url", cfg.API.BaseURL,
		"pin_timeout_seconds", cfg.Terminal.PinTimeoutSeconds,
		"reader_device", cfg.Reader.Device != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(cfg, l, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return app.Run(ctx, os.Stdin)
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
