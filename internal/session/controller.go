// Package session implements the terminal's session controller: the state
// machine that takes a presented card through PIN entry, verification,
// operation selection, mandatory re-authentication and execution, and back
// to idle.
//
// The controller is single-threaded. Every input arrives as an event on one
// queue and is handled to completion before the next is read. The PIN
// countdown and the network exchanges run elsewhere and report back by
// posting events tagged with the token of the attempt that started them;
// completions whose token is no longer current are discarded.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/display"
	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/events"
	"github.com/phrazzld/atm-session/internal/operation"
	"github.com/phrazzld/atm-session/internal/pin"
	"github.com/phrazzld/atm-session/internal/service/auth"
)

// Verifier checks a card and PIN with the bank.
type Verifier interface {
	Verify(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode, purpose auth.Purpose) domain.AuthResult
}

// Executor runs one account operation.
type Executor interface {
	Execute(ctx context.Context, target operation.Target, op domain.Operation) operation.Result
}

// CardTracker is told when a session opens for a card and when it closes.
type CardTracker interface {
	Opened(card domain.CardIdentifier)
	Release(card domain.CardIdentifier)
}

// Deps are the collaborators a Controller needs.
type Deps struct {
	Queue    *events.Queue
	Verifier Verifier
	Executor Executor
	Terminal *display.Terminal

	// Cards is optional.
	Cards  CardTracker
	Logger *slog.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithTickerFactory replaces the countdown's ticker source.
func WithTickerFactory(f pin.TickerFactory) Option {
	return func(c *Controller) { c.tickers = f }
}

// WithAsync replaces how network exchanges are started. The default runs
// each in its own goroutine. A runner that calls f on the event loop itself
// needs a queue with room for the completion f posts.
func WithAsync(run func(func())) Option {
	return func(c *Controller) { c.async = run }
}

// Controller is the session state machine.
type Controller struct {
	cfg      Config
	queue    *events.Queue
	verifier Verifier
	executor Executor
	terminal *display.Terminal
	cards    CardTracker
	base     *slog.Logger
	logger   *slog.Logger
	tickers  pin.TickerFactory
	async    func(func())

	// Owned by the event loop.
	state     State
	session   *Session
	capture   *pin.Capture
	countdown *pin.Countdown
	pending   uuid.UUID
}

// NewController creates a controller in Idle.
func NewController(cfg Config, deps Deps, opts ...Option) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if deps.Queue == nil || deps.Verifier == nil || deps.Executor == nil || deps.Terminal == nil {
		return nil, errors.New("controller requires a queue, verifier, executor and terminal")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	c := &Controller{
		cfg:      cfg,
		queue:    deps.Queue,
		verifier: deps.Verifier,
		executor: deps.Executor,
		terminal: deps.Terminal,
		cards:    deps.Cards,
		base:     deps.Logger,
		logger:   deps.Logger.With("component", "session_controller"),
		tickers:  pin.RealTicker,
		async:    func(f func()) { go f() },
		state:    Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Post enqueues an input for the controller.
func (c *Controller) Post(p events.Payload) error {
	return c.queue.Post(p)
}

// Run processes events until ctx is done or the queue is closed. The active
// session, if any, is abandoned on exit.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("session controller started")
	c.terminal.ReturnToIdle()
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.queue.C():
			if !ok {
				return nil
			}
			c.handle(ctx, ev)
		}
	}
}

// Drain handles every event already queued, including events posted while
// draining, and returns how many were handled.
func (c *Controller) Drain(ctx context.Context) int {
	n := 0
	for {
		select {
		case ev, ok := <-c.queue.C():
			if !ok {
				return n
			}
			c.handle(ctx, ev)
			n++
		default:
			return n
		}
	}
}

// State returns the current state. Only meaningful from the goroutine
// running the event loop, or between Drain calls.
func (c *Controller) State() State {
	return c.state
}

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return c.session.snapshot(), true
}

// PinToken returns the token of the current PIN capture, or uuid.Nil.
func (c *Controller) PinToken() uuid.UUID {
	if c.capture == nil {
		return uuid.Nil
	}
	return c.capture.Token()
}

func (c *Controller) shutdown() {
	if c.state != Idle {
		c.logger.Info("abandoning active session on shutdown", "state", c.state.String())
		c.reset()
	}
	c.logger.Info("session controller stopped")
}
