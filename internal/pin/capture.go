// Package pin manages bounded-time PIN entry.
//
// A Capture buffers up to four digits for one attempt. It starts in
// AwaitingDigits and ends in exactly one of Submitted, TimedOut, Cancelled or
// Failed; after that it accepts nothing further. The Countdown delivers the
// ticks that drive the timeout as events on the controller's queue.
package pin

import (
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/domain"
)

// State is the lifecycle state of a Capture.
type State int

// Capture states.
const (
	AwaitingDigits State = iota
	Submitted
	TimedOut
	Cancelled
	// Failed is a submitted attempt whose verification did not succeed.
	Failed
)

// String returns a log-friendly name for the state.
func (s State) String() string {
	switch s {
	case AwaitingDigits:
		return "awaiting_digits"
	case Submitted:
		return "submitted"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool {
	return s == TimedOut || s == Cancelled || s == Failed
}

// Capture is one PIN entry attempt for one card. It is not safe for
// concurrent use; the controller owns it.
type Capture struct {
	token     uuid.UUID
	card      domain.CardIdentifier
	digits    []rune
	state     State
	remaining int
}

// NewCapture starts an attempt for card with a countdown of budget units.
func NewCapture(card domain.CardIdentifier, budget int) *Capture {
	return &Capture{
		token:     uuid.New(),
		card:      card,
		digits:    make([]rune, 0, domain.PinLength),
		state:     AwaitingDigits,
		remaining: budget,
	}
}

// Token identifies this attempt. Ticks and verification results carrying a
// different token belong to an earlier attempt.
func (c *Capture) Token() uuid.UUID { return c.token }

// Card returns the card the PIN is for.
func (c *Capture) Card() domain.CardIdentifier { return c.card }

// State returns the current state.
func (c *Capture) State() State { return c.state }

// Remaining returns the countdown units left.
func (c *Capture) Remaining() int { return c.remaining }

// Len returns the number of buffered digits.
func (c *Capture) Len() int { return len(c.digits) }

// Masked returns the buffer as asterisks padded with underscores, e.g. "**__".
func (c *Capture) Masked() string {
	return strings.Repeat("*", len(c.digits)) + strings.Repeat("_", domain.PinLength-len(c.digits))
}

// Append buffers digit. It reports whether the digit was accepted: non-digits,
// digits beyond the fourth and input outside AwaitingDigits are ignored.
func (c *Capture) Append(digit rune) bool {
	if c.state != AwaitingDigits || len(c.digits) >= domain.PinLength || !domain.IsDigit(digit) {
		return false
	}
	c.digits = append(c.digits, digit)
	return true
}

// Clear empties the buffer. State and countdown are unaffected.
func (c *Capture) Clear() {
	if c.state != AwaitingDigits {
		return
	}
	c.digits = c.digits[:0]
}

// Submit validates the buffer and moves to Submitted. With fewer than four
// digits it returns domain.ErrIncompletePin and stays in AwaitingDigits.
func (c *Capture) Submit() (domain.PinCode, error) {
	if c.state != AwaitingDigits {
		return "", ErrNotAwaiting
	}
	code := domain.PinCode(string(c.digits))
	if err := code.Validate(); err != nil {
		return "", err
	}
	c.state = Submitted
	return code, nil
}

// Tick consumes one countdown unit. It returns true exactly once, when the
// countdown reaches zero, moving the capture to TimedOut.
func (c *Capture) Tick() bool {
	if c.state != AwaitingDigits {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.teardown(TimedOut)
		return true
	}
	return false
}

// Cancel abandons the attempt.
func (c *Capture) Cancel() {
	if c.state.Terminal() {
		return
	}
	c.teardown(Cancelled)
}

// Fail marks a submitted attempt as rejected by verification.
func (c *Capture) Fail() {
	if c.state != Submitted {
		return
	}
	c.teardown(Failed)
}

func (c *Capture) teardown(state State) {
	for i := range c.digits {
		c.digits[i] = 0
	}
	c.digits = c.digits[:0]
	c.state = state
}
