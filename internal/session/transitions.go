package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/display"
	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/events"
	"github.com/phrazzld/atm-session/internal/operation"
	"github.com/phrazzld/atm-session/internal/pin"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/phrazzld/atm-session/internal/redact"
	"github.com/phrazzld/atm-session/internal/service/auth"
	"github.com/shopspring/decimal"
)

func (c *Controller) handle(ctx context.Context, ev events.Event) {
	c.logger.Debug("handling event",
		"event_id", ev.ID,
		"event_kind", ev.Kind(),
		"state", c.state.String())

	switch p := ev.Payload.(type) {
	case events.CardPresented:
		c.onCardPresented(p)
	case events.DigitEntered:
		c.onDigit(p)
	case events.PinCleared:
		c.onClear()
	case events.PinSubmitted:
		c.onSubmit(ctx)
	case events.TimerTick:
		c.onTick(p)
	case events.VerificationCompleted:
		c.onVerified(ctx, p)
	case events.OperationChosen:
		c.onOperationChosen(p)
	case events.OperationStarted:
		c.onOperationStarted()
	case events.ExecutionCompleted:
		c.onExecuted(p)
	case events.Cancelled:
		c.onCancelled(p)
	case events.ConfirmationAcknowledged:
		c.onAcknowledged()
	default:
		c.logger.Warn("unhandled event", "event_kind", ev.Kind())
	}
}

func (c *Controller) sink() display.Sink {
	return c.terminal.Sink()
}

func (c *Controller) transition(to State) {
	c.logger.Info("state transition", "from", c.state.String(), "to", to.String())
	c.state = to
}

func (c *Controller) onCardPresented(p events.CardPresented) {
	if c.state != Idle {
		c.logger.Info("ignoring card while a session is active",
			"card", redact.Card(p.Card.String()),
			"state", c.state.String())
		return
	}

	c.session = newSession(p.Card)
	if c.cards != nil {
		c.cards.Opened(p.Card)
	}
	c.logger.Info("session opened",
		"session_id", c.session.ID,
		"card", redact.Card(p.Card.String()))
	c.transition(PinEntry)
	c.startCapture(display.ViewPinEntry)
}

// startCapture opens a PIN capture for the session's card and its countdown.
func (c *Controller) startCapture(view display.View) {
	c.stopCountdown()
	c.capture = pin.NewCapture(c.session.Card, c.cfg.PinTimeout)
	c.terminal.Open(view)

	c.countdown = pin.StartCountdown(c.capture.Token(), c.cfg.TickInterval, c.tickers,
		func(token uuid.UUID) error {
			return c.queue.Post(events.TimerTick{Token: token})
		}, c.logger)

	c.showPin()
}

func (c *Controller) showPin() {
	c.sink().ShowPinEntry(c.capture.Remaining(), c.capture.Masked())
}

func (c *Controller) stopCountdown() {
	c.countdown.Stop()
	c.countdown = nil
}

func (c *Controller) capturing() bool {
	return (c.state == PinEntry || c.state == ReAuthenticating) &&
		c.capture != nil && c.capture.State() == pin.AwaitingDigits
}

func (c *Controller) onDigit(p events.DigitEntered) {
	if !c.capturing() {
		return
	}
	if c.capture.Append(p.Digit) {
		c.showPin()
	}
}

func (c *Controller) onClear() {
	if !c.capturing() {
		return
	}
	c.capture.Clear()
	c.showPin()
}

func (c *Controller) onSubmit(ctx context.Context) {
	if !c.capturing() {
		return
	}

	code, err := c.capture.Submit()
	if err != nil {
		c.logger.Debug("rejecting PIN submit", "error", err)
		c.sink().ShowError(err.Error())
		return
	}

	c.stopCountdown()
	c.session.Pin = code

	purpose := auth.PurposeLogin
	if c.state == ReAuthenticating {
		purpose = auth.PurposeStepUp
	}

	token := c.capture.Token()
	card := c.session.Card
	c.pending = token
	exchangeCtx := c.sessionContext(ctx)

	c.async(func() {
		result := c.verifier.Verify(exchangeCtx, card, code, purpose)
		if err := c.queue.PostWait(exchangeCtx, events.VerificationCompleted{Token: token, Result: result}); err != nil {
			logger.FromContext(exchangeCtx).Error("verification result not delivered", "error", err)
		}
	})
}

func (c *Controller) onTick(p events.TimerTick) {
	if c.capture == nil || p.Token != c.capture.Token() {
		return
	}
	if !c.capture.Tick() {
		if c.capture.State() == pin.AwaitingDigits {
			c.showPin()
		}
		return
	}

	c.logger.Info("PIN entry timed out", "state", c.state.String())
	c.stopCountdown()
	c.authFailed(domain.TimedOutResult())
}

func (c *Controller) onVerified(ctx context.Context, p events.VerificationCompleted) {
	if c.capture == nil || p.Token != c.capture.Token() || p.Token != c.pending ||
		c.capture.State() != pin.Submitted {
		c.logger.Info("discarding stale verification result", "status", p.Result.Status.String())
		return
	}
	c.pending = uuid.Nil

	if !p.Result.Succeeded() {
		c.capture.Fail()
		c.authFailed(p.Result)
		return
	}

	c.capture = nil
	c.session.Identity = p.Result.Identity

	switch c.state {
	case PinEntry:
		c.terminal.Close(display.ViewPinEntry)
		c.terminal.Open(display.ViewWelcome)
		c.transition(Authenticated)
		c.sink().ShowIdentity(c.session.Identity)
	case ReAuthenticating:
		c.terminal.Close(display.ViewReauthentication)
		c.transition(Executing)
		c.execute(ctx)
	}
}

// authFailed ends the session after a failed, timed-out or blocked verification.
func (c *Controller) authFailed(result domain.AuthResult) {
	c.logger.Info("verification failed",
		"status", result.Status.String(),
		"state", c.state.String())

	if result.Status == domain.AuthCardBlocked {
		c.cardBlocked(result.Message)
		return
	}
	c.sink().ShowError(result.Message)
	c.reset()
}

func (c *Controller) onOperationChosen(p events.OperationChosen) {
	if c.state != Authenticated && c.state != OperationSelected {
		return
	}

	op, err := c.resolveOperation(p)
	if err != nil {
		c.logger.Debug("rejecting operation choice", "error", err)
		c.sink().ShowError(err.Error())
		return
	}

	c.session.Operation = &op
	c.terminal.Open(display.ViewOperation)
	if c.state != OperationSelected {
		c.transition(OperationSelected)
	}
	c.sink().ShowOperationResult(describe(op))
}

func (c *Controller) resolveOperation(p events.OperationChosen) (domain.Operation, error) {
	amount := decimal.Zero
	if p.Operation.HasAmount() {
		var err error
		switch {
		case p.Operation == domain.OperationWithdrawal && p.Preset > 0:
			if p.Preset > len(c.cfg.WithdrawalPresets) {
				return domain.Operation{}, domain.ErrUnknownPreset
			}
			amount = c.cfg.WithdrawalPresets[p.Preset-1]
		default:
			amount, err = domain.ParseAmount(p.Amount)
			if err != nil {
				return domain.Operation{}, err
			}
		}
	}
	return domain.NewOperation(p.Operation, amount)
}

func describe(op domain.Operation) string {
	if op.Kind.HasAmount() {
		return fmt.Sprintf("Selected %s of %s. Enter your PIN to continue.", op.Kind, op.Amount.StringFixed(2))
	}
	return fmt.Sprintf("Selected %s. Enter your PIN to continue.", op.Kind)
}

func (c *Controller) onOperationStarted() {
	if c.state != OperationSelected {
		return
	}
	c.session.Pin = ""
	c.transition(ReAuthenticating)
	c.startCapture(display.ViewReauthentication)
}

// execute starts the chosen operation. It is only reached from a successful
// re-authentication of the session's card.
func (c *Controller) execute(ctx context.Context) {
	token := uuid.New()
	c.pending = token

	op := *c.session.Operation
	target := operation.Target{
		Card:      c.session.Card,
		Pin:       c.session.Pin,
		AccountID: c.session.Identity.AccountID,
	}
	exchangeCtx := c.sessionContext(ctx)

	c.async(func() {
		result := c.executor.Execute(exchangeCtx, target, op)
		if err := c.queue.PostWait(exchangeCtx, events.ExecutionCompleted{Token: token, Result: result}); err != nil {
			logger.FromContext(exchangeCtx).Error("operation result not delivered", "error", err)
		}
	})
}

func (c *Controller) onExecuted(p events.ExecutionCompleted) {
	if c.state != Executing || p.Token != c.pending {
		c.logger.Info("discarding stale operation result", "operation", p.Result.Operation.String())
		return
	}
	c.pending = uuid.Nil
	result := p.Result

	if result.Blocked() {
		c.cardBlocked(result.Text)
		return
	}

	if result.Failed() {
		c.sink().ShowError(result.Text)
		c.reset()
		return
	}

	c.sink().ShowOperationResult(result.Text)
	if result.Disposition == operation.Confirm {
		c.terminal.Close(display.ViewOperation)
		c.terminal.Open(display.ViewConfirmation)
		c.transition(Confirming)
		return
	}
	c.reset()
}

func (c *Controller) onAcknowledged() {
	if c.state != Confirming {
		return
	}
	c.reset()
}

func (c *Controller) onCancelled(p events.Cancelled) {
	if c.state == Idle {
		return
	}
	c.logger.Info("session cancelled", "state", c.state.String(), "reason", p.Reason)
	c.reset()
}

// cardBlocked force-closes every open view, ends the session and shows msg.
func (c *Controller) cardBlocked(msg string) {
	closed := c.terminal.Sweep()
	c.logger.Warn("card blocked, closing all session views",
		"state", c.state.String(),
		"closed_views", len(closed))
	c.reset()
	c.sink().ShowError(msg)
}

// reset destroys the session and returns to the idle screen.
func (c *Controller) reset() {
	c.stopCountdown()
	if c.capture != nil {
		c.capture.Cancel()
		c.capture = nil
	}
	c.pending = uuid.Nil

	if c.session != nil {
		card := c.session.Card
		c.logger.Info("session closed", "session_id", c.session.ID)
		c.session.Pin = ""
		c.session = nil
		if c.cards != nil {
			c.cards.Release(card)
		}
	}

	if c.state != Idle {
		c.transition(Idle)
	}
	c.terminal.ReturnToIdle()
}

// sessionContext tags ctx with a logger carrying the session ID.
func (c *Controller) sessionContext(ctx context.Context) context.Context {
	return logger.WithLogger(ctx, c.base.With("session_id", c.session.ID))
}
