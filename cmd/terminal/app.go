package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/atm-session/internal/config"
	"github.com/phrazzld/atm-session/internal/display"
	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/events"
	"github.com/phrazzld/atm-session/internal/operation"
	"github.com/phrazzld/atm-session/internal/reader"
	"github.com/phrazzld/atm-session/internal/remote"
	"github.com/phrazzld/atm-session/internal/service/auth"
	"github.com/phrazzld/atm-session/internal/service/transaction"
	"github.com/phrazzld/atm-session/internal/session"
)

// application holds the terminal's wired components and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	out    io.Writer

	queue      *events.Queue
	source     *reader.Source
	controller *session.Controller

	// cards is set when card identifiers are typed on the console.
	cards *reader.ManualDriver
	// device is the opened reader device, if one is configured.
	device io.Closer

	presets int
}

// newApplication wires every component from cfg. Display output goes to out.
func newApplication(cfg *config.Config, logger *slog.Logger, out io.Writer) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		out:     out,
		presets: len(cfg.Terminal.WithdrawalPresets),
	}

	transport, err := remote.NewHTTPTransport(cfg.API, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API transport: %w", err)
	}
	classifier := remote.NewClassifier(cfg.API.BlockedMarker)
	logger.Info("remote API client initialized",
		"base_url", cfg.API.BaseURL,
		"request_timeout", cfg.API.RequestTimeout.String())

	app.queue = events.NewQueue(cfg.Terminal.QueueSize, logger)

	driver, err := app.openReader()
	if err != nil {
		app.cleanup()
		return nil, err
	}
	app.source = reader.NewSource(driver, func(card domain.CardIdentifier) error {
		return app.queue.Post(events.CardPresented{Card: card})
	}, logger)

	sink := display.NewFanout(logger,
		display.NewConsoleSink(out, logger),
		display.NewLogSink(logger),
	)

	sessionCfg, err := session.ConfigFrom(cfg.Terminal)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("invalid terminal settings: %w", err)
	}

	app.controller, err = session.NewController(sessionCfg, session.Deps{
		Queue:    app.queue,
		Verifier: auth.NewService(transport, classifier),
		Executor: operation.NewExecutor(transaction.NewService(transport, classifier)),
		Terminal: display.NewTerminal(sink, logger),
		Cards:    app.source,
		Logger:   logger,
	})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create session controller: %w", err)
	}

	logger.Info("Terminal initialized successfully")
	return app, nil
}

// openReader returns the driver cards arrive on: the configured device, or
// the console when none is set.
func (app *application) openReader() (reader.Driver, error) {
	if app.config.Reader.Device == "" {
		app.cards = reader.NewManualDriver()
		app.logger.Info("card reader: console input")
		return app.cards, nil
	}

	f, err := os.Open(app.config.Reader.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to open card reader %s: %w", app.config.Reader.Device, err)
	}
	app.device = f
	app.logger.Info("card reader: device", "device", app.config.Reader.Device)
	return reader.NewLineDriver(f, app.logger), nil
}

// Run starts the card source and the console, then runs the controller until
// ctx is done or the console input ends.
func (app *application) Run(ctx context.Context, in io.Reader) error {
	defer app.cleanup()

	if err := app.source.Start(); err != nil {
		return fmt.Errorf("failed to start card reader: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keypad := newConsole(in, app.out, app.queue.Post, app.cards, app.presets, app.logger)
	go func() {
		defer cancel()
		if err := keypad.Run(ctx); err != nil {
			app.logger.Error("console input failed", "error", err)
		}
	}()

	err := app.controller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		app.logger.Info("terminal shutting down")
		return nil
	}
	return err
}

// cleanup releases the reader and closes the queue.
func (app *application) cleanup() {
	if app.source != nil {
		app.source.Stop()
	}
	if app.device != nil {
		if err := app.device.Close(); err != nil {
			app.logger.Error("Error closing card reader", "error", err)
		}
		app.device = nil
	}
	if app.queue != nil {
		app.queue.Close()
	}
}
